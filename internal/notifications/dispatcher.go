package notifications

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"firebase.google.com/go/v4/messaging"
	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/Cl0v1s/mangane/internal/repositories"
)

// Dispatcher receives a notification exactly once, after it has been
// durably committed, for real-time and push delivery.
type Dispatcher interface {
	Dispatch(notification *models.Notification)
}

// LogDispatcher logs dispatched notifications; used when no push transport
// is configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(notification *models.Notification) {
	log.Printf("notification %d dispatched to user %d", notification.ID, notification.UserID)
}

// MultiDispatcher fans a notification out to several delivery channels
type MultiDispatcher []Dispatcher

func (m MultiDispatcher) Dispatch(notification *models.Notification) {
	for _, dispatcher := range m {
		dispatcher.Dispatch(notification)
	}
}

// PushDispatcher delivers notifications to the recipient's registered
// devices over FCM. Delivery failures are logged, never propagated: the
// notification is already committed.
type PushDispatcher struct {
	client                *messaging.Client
	deviceTokenRepository repositories.DeviceTokenRepository
}

// NewPushDispatcher creates a new PushDispatcher
func NewPushDispatcher(client *messaging.Client, deviceTokenRepo repositories.DeviceTokenRepository) *PushDispatcher {
	return &PushDispatcher{
		client:                client,
		deviceTokenRepository: deviceTokenRepo,
	}
}

func (d *PushDispatcher) Dispatch(notification *models.Notification) {
	tokens, err := d.deviceTokenRepository.GetTokensByUserID(notification.UserID)
	if err != nil {
		log.Printf("push: failed to load device tokens for user %d: %v", notification.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title, body := pushContent(notification.Activity)
	for _, token := range tokens {
		message := &messaging.Message{
			Token: token.Token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: map[string]string{
				"notification_id": strconv.FormatUint(uint64(notification.ID), 10),
			},
		}
		if _, err := d.client.Send(context.Background(), message); err != nil {
			log.Printf("push: failed to send to token %d: %v", token.ID, err)
		}
	}
}

// pushContent builds a human-readable title/body from the activity
func pushContent(activity *models.Activity) (string, string) {
	actor := "Someone"
	if activity != nil && activity.Actor != nil && activity.Actor.Nickname != "" {
		actor = activity.Actor.Nickname
	}
	if activity == nil {
		return "New notification", ""
	}
	switch activity.Type {
	case models.ActivityFollow:
		return "New follower", fmt.Sprintf("%s started following you", actor)
	case models.ActivityLike:
		return "New favorite", fmt.Sprintf("%s favorited your post", actor)
	case models.ActivityAnnounce:
		return "New repost", fmt.Sprintf("%s reposted your post", actor)
	default:
		return "New mention", fmt.Sprintf("%s mentioned you", actor)
	}
}
