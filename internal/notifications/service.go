package notifications

import (
	"context"
	"log"

	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/Cl0v1s/mangane/internal/repositories"
)

// Service runs the notification fan-out: resolve candidates, filter each
// one, create the surviving records transactionally, and hand every
// committed record to the dispatcher once.
type Service struct {
	resolver               *Resolver
	filter                 *Filter
	notificationRepository repositories.NotificationRepository
	dispatcher             Dispatcher
}

// NewService creates a new fan-out Service
func NewService(resolver *Resolver, filter *Filter, notificationRepo repositories.NotificationRepository, dispatcher Dispatcher) *Service {
	return &Service{
		resolver:               resolver,
		filter:                 filter,
		notificationRepository: notificationRepo,
		dispatcher:             dispatcher,
	}
}

// CreateNotifications fans an activity out to every qualifying recipient.
// Each recipient's notification is created in its own transaction, so a
// failure mid-fan-out leaves earlier recipients notified and later ones
// not; the error is returned alongside whatever was created.
func (s *Service) CreateNotifications(ctx context.Context, activity *models.Activity) ([]models.Notification, error) {
	recipients, err := s.resolver.Resolve(ctx, activity)
	if err != nil {
		return nil, err
	}

	var created []models.Notification
	for i := range recipients {
		notification, err := s.createFor(activity, &recipients[i])
		if err != nil {
			return created, err
		}
		if notification != nil {
			created = append(created, *notification)
		}
	}
	return created, nil
}

// createFor creates one recipient's notification, or nothing when a skip
// predicate matches. The dispatcher runs only after the commit succeeded.
func (s *Service) createFor(activity *models.Activity, candidate *models.User) (*models.Notification, error) {
	skip, reason, err := s.filter.ShouldSkip(activity, candidate)
	if err != nil {
		return nil, err
	}
	if skip {
		log.Printf("notification for user %d suppressed: %s", candidate.ID, reason)
		return nil, nil
	}

	notification, err := s.notificationRepository.Create(candidate.ID, activity.ID)
	if err != nil {
		return nil, err
	}
	notification.Activity = activity
	s.dispatcher.Dispatch(notification)
	return notification, nil
}
