package handlers

import (
	"net/http"

	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/Cl0v1s/mangane/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PushHandler handles device token registration for push delivery
type PushHandler struct {
	deviceTokenRepository repositories.DeviceTokenRepository
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(deviceTokenRepo repositories.DeviceTokenRepository) *PushHandler {
	return &PushHandler{deviceTokenRepository: deviceTokenRepo}
}

// RegisterPushRoutes registers push subscription routes
func (h *PushHandler) RegisterPushRoutes(g *echo.Group) {
	g.POST("/push/subscribe", h.Subscribe)
	g.DELETE("/push/subscribe", h.Unsubscribe)
}

// Subscribe registers an FCM device token for the user
func (h *PushHandler) Subscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterDeviceTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token := &models.DeviceToken{
		UserID:     currentUserID,
		Token:      req.Token,
		DeviceName: req.DeviceName,
	}
	if err := h.deviceTokenRepository.RegisterToken(token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": token})
}

// Unsubscribe removes an FCM device token owned by the user
func (h *PushHandler) Unsubscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UnregisterDeviceTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.deviceTokenRepository.UnregisterToken(currentUserID, req.Token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
