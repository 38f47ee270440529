package isolation

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
	api.POST("/patients/:id/isolation/check", h.CheckRequirements)
	api.POST("/patients/:id/isolation/clear", h.ClearIsolation)
	api.GET("/patients/:id/isolation/validate-bed/:bedId", h.ValidateBedAssignment)
	api.GET("/isolation/rooms", h.RoomAvailability)
}

func (h *Handler) CheckRequirements(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	result, err := h.svc.CheckRequirements(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

type clearIsolationRequest struct {
	ClearedBy string `json:"cleared_by"`
	Reason    string `json:"reason"`
}

func (h *Handler) ClearIsolation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req clearIsolationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ClearIsolation(c.Request().Context(), id, req.ClearedBy, req.Reason); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ValidateBedAssignment(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	bedID, err := uuid.Parse(c.Param("bedId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bed id")
	}
	if err := h.svc.ValidateBedAssignment(c.Request().Context(), patientID, bedID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"valid": true})
}

func (h *Handler) RoomAvailability(c echo.Context) error {
	rooms, err := h.svc.RoomAvailability(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rooms": rooms})
}
