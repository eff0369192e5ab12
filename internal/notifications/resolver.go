package notifications

import (
	"context"

	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/Cl0v1s/mangane/internal/repositories"
)

// notifiableTypes is the allow-list of activity types that fan out to
// notifications; anything else resolves to nobody.
var notifiableTypes = map[string]bool{
	models.ActivityCreate:   true,
	models.ActivityLike:     true,
	models.ActivityAnnounce: true,
	models.ActivityFollow:   true,
}

// Resolver computes the candidate recipients of an activity: addressed local
// users, mentioned local users, and thread subscribers, deduplicated.
type Resolver struct {
	userRepository   repositories.UserRepository
	objectRepository repositories.ObjectRepository
}

// NewResolver creates a new Resolver
func NewResolver(userRepo repositories.UserRepository, objectRepo repositories.ObjectRepository) *Resolver {
	return &Resolver{
		userRepository:   userRepo,
		objectRepository: objectRepo,
	}
}

// Resolve returns the deduplicated candidate set for an activity. Malformed
// activities and unsupported types resolve to the empty set; only storage
// failures surface as errors.
func (r *Resolver) Resolve(ctx context.Context, activity *models.Activity) ([]models.User, error) {
	if activity == nil || activity.ActorID == 0 || !notifiableTypes[activity.Type] {
		return nil, nil
	}

	// Poll answers never notify.
	if activity.Type == models.ActivityCreate && activity.ObjectAPID != "" {
		if object, err := r.objectRepository.GetObjectByAPID(ctx, activity.ObjectAPID); err == nil && object.Type == models.ObjectAnswer {
			return nil, nil
		}
	}

	addressed, err := r.userRepository.GetLocalUsersByAPIDs(activity.Recipients)
	if err != nil {
		return nil, err
	}
	mentioned, err := r.userRepository.GetLocalUsersByAPIDs(activity.Mentions)
	if err != nil {
		return nil, err
	}
	subscribers, err := r.userRepository.GetThreadSubscribers(activity.Context)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	var recipients []models.User
	for _, group := range [][]models.User{addressed, mentioned, subscribers} {
		for _, user := range group {
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true
			recipients = append(recipients, user)
		}
	}
	return recipients, nil
}
