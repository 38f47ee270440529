package bedassign

import (
	"net/http"

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
	api.POST("/beds/recommend", h.RecommendBeds)
	api.POST("/beds/:bedId/assign", h.AssignBed)
}

func (h *Handler) RecommendBeds(c echo.Context) error {
	var req Requirements
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	recs, err := h.svc.RecommendBeds(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"recommendations": recs})
}

type assignBedRequest struct {
	PatientID  uuid.UUID `json:"patient_id"`
	AssignedBy string    `json:"assigned_by"`
	Reasoning  string    `json:"reasoning"`
}

func (h *Handler) AssignBed(c echo.Context) error {
	bedID, err := uuid.Parse(c.Param("bedId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bed id")
	}
	var req assignBedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	assignment, err := h.svc.AssignBed(c.Request().Context(), req.PatientID, bedID, req.AssignedBy, req.Reasoning)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, assignment)
}
