package discharge

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/admissions/:admissionId/discharge-readiness", h.Predict)
	api.GET("/admissions/:admissionId/discharge-readiness", h.GetPrediction)
	api.POST("/admissions/:admissionId/barriers/:barrierId/resolve", h.ResolveBarrier)
	api.GET("/discharge/ready", h.ReadyPatients)
	api.GET("/discharge/metrics", h.Metrics)
}

func admissionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("admissionId"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid admission id")
	}
	return id, nil
}

func (h *Handler) Predict(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Predict(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPrediction(c echo.Context) error {
	id, err := admissionID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPrediction(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

type resolveBarrierRequest struct {
	ResolvedBy string `json:"resolved_by"`
}

func (h *Handler) ResolveBarrier(c echo.Context) error {
	admID, err := admissionID(c)
	if err != nil {
		return err
	}
	barrierID, err := uuid.Parse(c.Param("barrierId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid barrier id")
	}
	var req resolveBarrierRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.ResolveBarrier(c.Request().Context(), admID, barrierID, req.ResolvedBy)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ReadyPatients(c echo.Context) error {
	minScore, _ := strconv.ParseFloat(c.QueryParam("min_score"), 64)
	patients, err := h.svc.ReadyPatients(c.Request().Context(), minScore)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"patients": patients})
}

func (h *Handler) Metrics(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	m, err := h.svc.Metrics(c.Request().Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}
