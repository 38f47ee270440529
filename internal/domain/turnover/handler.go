package turnover

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
	api.PUT("/beds/:bedId/status", h.UpdateStatus)
	api.GET("/beds/cleaning-queue", h.CleaningQueue)
	api.GET("/turnover/metrics", h.Metrics)
}

type updateStatusRequest struct {
	Status           string  `json:"status"`
	CleaningStatus   *string `json:"cleaning_status,omitempty"`
	CleaningPriority *string `json:"cleaning_priority,omitempty"`
	ChangedBy        string  `json:"changed_by"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	bedID, err := uuid.Parse(c.Param("bedId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bed id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	bed, err := h.svc.UpdateBedStatus(c.Request().Context(), bedID, req.Status, req.CleaningStatus, req.CleaningPriority, req.ChangedBy)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bed)
}

func (h *Handler) CleaningQueue(c echo.Context) error {
	tasks, err := h.svc.PrioritizeCleaning(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"queue": tasks})
}

func (h *Handler) Metrics(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	m, err := h.svc.Metrics(c.Request().Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}
