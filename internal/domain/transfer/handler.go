package transfer

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
	api.GET("/transfers/priorities", h.Priorities)
	api.GET("/transfers/timing", h.Timing)
	api.GET("/transfers/availability/:unit", h.Availability)
	api.POST("/transfers/:admissionId/notify", h.Notify)
	api.GET("/transfers/metrics", h.Metrics)
}

func unitFilter(c echo.Context) *string {
	if unit := c.QueryParam("unit"); unit != "" {
		return &unit
	}
	return nil
}

func (h *Handler) Priorities(c echo.Context) error {
	priorities, err := h.svc.PrioritizeEDPatients(c.Request().Context(), unitFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"priorities": priorities})
}

func (h *Handler) Timing(c echo.Context) error {
	timings, err := h.svc.OptimizeTiming(c.Request().Context(), unitFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"transfers": timings})
}

func (h *Handler) Availability(c echo.Context) error {
	hours, _ := strconv.Atoi(c.QueryParam("hours"))
	fc, err := h.svc.PredictAvailability(c.Request().Context(), c.Param("unit"), hours)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fc)
}

type notifyRequest struct {
	Unit       string `json:"unit"`
	NotifiedBy string `json:"notified_by"`
}

func (h *Handler) Notify(c echo.Context) error {
	admissionID, err := uuid.Parse(c.Param("admissionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid admission id")
	}
	var req notifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.NotifyTransfer(c.Request().Context(), admissionID, req.Unit, req.NotifiedBy); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"admission_id": admissionID, "status": "transfer_in_progress"})
}

func (h *Handler) Metrics(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	m, err := h.svc.Metrics(c.Request().Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}
