package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Cl0v1s/mangane/internal/notifications"
	"github.com/Cl0v1s/mangane/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// FanoutHandler exposes the fan-out engine to the activity ingestion
// pipeline. The route lives under /internal and is not part of the client
// API.
type FanoutHandler struct {
	activityRepository repositories.ActivityRepository
	service            *notifications.Service
}

// NewFanoutHandler creates a new FanoutHandler
func NewFanoutHandler(activityRepo repositories.ActivityRepository, service *notifications.Service) *FanoutHandler {
	return &FanoutHandler{
		activityRepository: activityRepo,
		service:            service,
	}
}

// RegisterFanoutRoutes registers the internal fan-out route
func (h *FanoutHandler) RegisterFanoutRoutes(g *echo.Group) {
	g.POST("/activities/:id/notifications", h.CreateNotifications)
}

// CreateNotifications fans a stored activity out to its recipients and
// returns the created notifications in order.
func (h *FanoutHandler) CreateNotifications(c echo.Context) error {
	activityID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid activity ID")
	}

	activity, err := h.activityRepository.GetActivityByID(uint(activityID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	created, err := h.service.CreateNotifications(c.Request().Context(), activity)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": created,
		},
	})
}
