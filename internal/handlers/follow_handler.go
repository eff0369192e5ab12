package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/Cl0v1s/mangane/internal/notifications"
	"github.com/Cl0v1s/mangane/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests for local users. A
// follow stores a Follow activity and runs it through the fan-out engine,
// the same path remote follows take through the ingestion pipeline.
type FollowHandler struct {
	followRepository   repositories.FollowRepository
	userRepository     repositories.UserRepository
	activityRepository repositories.ActivityRepository
	service            *notifications.Service
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, activityRepo repositories.ActivityRepository, service *notifications.Service) *FollowHandler {
	return &FollowHandler{
		followRepository:   followRepo,
		userRepository:     userRepo,
		activityRepository: activityRepo,
		service:            service,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if currentUserID == uint(targetID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	target, err := h.userRepository.GetUserByID(uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	// Check if already following
	isFollowing, err := h.followRepository.IsFollowing(currentUserID, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isFollowing {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{
		FollowerID:  currentUserID,
		FollowingID: uint(targetID),
	}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Store the Follow activity and fan it out; the engine's skip rules
	// decide whether the target actually gets notified.
	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err == nil {
		activity := &models.Activity{
			Type:       models.ActivityFollow,
			ActorID:    actor.ID,
			Actor:      actor,
			Recipients: []string{target.APID},
		}
		if err := h.activityRepository.CreateActivity(activity); err == nil {
			if _, err := h.service.CreateNotifications(c.Request().Context(), activity); err != nil {
				log.Printf("follow fan-out failed for user %d: %v", targetID, err)
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.followRepository.DeleteFollow(currentUserID, uint(targetID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}
