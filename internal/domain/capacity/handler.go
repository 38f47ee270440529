package capacity

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/capacity/:unit/forecast", h.Forecast)
	api.GET("/capacity/seasonal", h.Seasonal)
	api.GET("/capacity/:unit/staffing", h.Staffing)
	api.GET("/capacity/:unit/surge", h.Surge)
}

func (h *Handler) Forecast(c echo.Context) error {
	horizon, _ := strconv.Atoi(c.QueryParam("horizon"))
	if horizon == 0 {
		horizon = 24
	}
	fc, err := h.svc.PredictCapacity(c.Request().Context(), c.Param("unit"), horizon)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fc)
}

func (h *Handler) Seasonal(c echo.Context) error {
	months, _ := strconv.Atoi(c.QueryParam("months"))
	analysis, err := h.svc.SeasonalPatterns(c.Request().Context(), months)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysis)
}

func (h *Handler) Staffing(c echo.Context) error {
	date := time.Now().AddDate(0, 0, 1)
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = parsed
	}
	plan, err := h.svc.StaffingRecommendations(c.Request().Context(), c.Param("unit"), date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) Surge(c echo.Context) error {
	assessment, err := h.svc.AssessSurge(c.Request().Context(), c.Param("unit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assessment)
}
