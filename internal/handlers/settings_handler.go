package handlers

import (
	"net/http"

	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/Cl0v1s/mangane/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SettingsHandler handles per-category notification setting updates
type SettingsHandler struct {
	userRepository repositories.UserRepository
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(userRepo repositories.UserRepository) *SettingsHandler {
	return &SettingsHandler{userRepository: userRepo}
}

// RegisterSettingsRoutes registers notification setting routes
func (h *SettingsHandler) RegisterSettingsRoutes(g *echo.Group) {
	g.GET("/notification-settings", h.GetNotificationSettings)
	g.PUT("/notification-settings", h.UpdateNotificationSettings)
}

// GetNotificationSettings returns the user's current toggles
func (h *SettingsHandler) GetNotificationSettings(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user.NotificationSettings})
}

// UpdateNotificationSettings applies a partial toggle update; omitted fields
// keep their stored value.
func (h *SettingsHandler) UpdateNotificationSettings(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateNotificationSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	settings := user.NotificationSettings
	if req.Followers != nil {
		settings.Followers = *req.Followers
	}
	if req.NonFollowers != nil {
		settings.NonFollowers = *req.NonFollowers
	}
	if req.Follows != nil {
		settings.Follows = *req.Follows
	}
	if req.NonFollows != nil {
		settings.NonFollows = *req.NonFollows
	}

	if err := h.userRepository.UpdateNotificationSettings(currentUserID, settings); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": settings})
}
