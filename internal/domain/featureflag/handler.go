package featureflag

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carestack/bedrock/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/features", h.ListFlags)
	api.GET("/features/:name", h.GetFlag)
	api.POST("/features/:name/enable", h.EnableFeature)
	api.POST("/features/:name/disable", h.DisableFeature)
	api.PUT("/features/:name/configuration", h.UpdateConfiguration)
	api.GET("/features/audit", h.AuditLog)
}

func (h *Handler) ListFlags(c echo.Context) error {
	flags, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"features": flags})
}

func (h *Handler) GetFlag(c echo.Context) error {
	flag, err := h.svc.Get(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, flag)
}

type mutateFlagRequest struct {
	PerformedBy   string                 `json:"performed_by"`
	Reason        string                 `json:"reason"`
	Configuration map[string]interface{} `json:"configuration"`
}

func (h *Handler) EnableFeature(c echo.Context) error {
	var req mutateFlagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Enable(c.Request().Context(), c.Param("name"), req.PerformedBy, req.Configuration); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"feature": c.Param("name"), "enabled": true})
}

func (h *Handler) DisableFeature(c echo.Context) error {
	var req mutateFlagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Disable(c.Request().Context(), c.Param("name"), req.PerformedBy, req.Reason); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"feature": c.Param("name"), "enabled": false})
}

func (h *Handler) UpdateConfiguration(c echo.Context) error {
	var req mutateFlagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateConfiguration(c.Request().Context(), c.Param("name"), req.PerformedBy, req.Configuration); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"feature": c.Param("name")})
}

func (h *Handler) AuditLog(c echo.Context) error {
	p := pagination.FromContext(c)
	entries, total, err := h.svc.AuditLog(c.Request().Context(), c.QueryParam("feature"), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, p))
}
