package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a local or remote account known to this instance.
// Remote actors get a row too so activities can reference them relationally.
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	APID          string    `json:"ap_id" gorm:"column:ap_id;uniqueIndex"` // ActivityPub actor identifier
	Nickname      string    `json:"nickname"`
	Local         bool      `json:"local" gorm:"index"`
	Deactivated   bool      `json:"deactivated" gorm:"default:false"`
	FollowersAPID string    `json:"followers_ap_id" gorm:"column:followers_ap_id"` // actor's followers collection address
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Federation-side suppression state, serialized as JSON columns.
	Blocks             []string `json:"blocks" gorm:"serializer:json"`              // blocked actor AP IDs
	DomainBlocks       []string `json:"domain_blocks" gorm:"serializer:json"`       // blocked instance hosts
	MutedNotifications []string `json:"muted_notifications" gorm:"serializer:json"` // actor AP IDs muted for notifications

	NotificationSettings NotificationSettings `json:"notification_settings" gorm:"serializer:json"`
}

// NotificationSettings holds the per-category notification toggles. A
// category set to false suppresses notifications from that class of actor.
type NotificationSettings struct {
	Followers    bool `json:"followers"`
	NonFollowers bool `json:"non_followers"`
	Follows      bool `json:"follows"`
	NonFollows   bool `json:"non_follows"`
}

// DefaultNotificationSettings enables every category.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Followers:    true,
		NonFollowers: true,
		Follows:      true,
		NonFollows:   true,
	}
}

// BlocksActor reports whether the user blocks the given actor, either by
// exact AP ID or by the actor's host being domain-blocked.
func (u *User) BlocksActor(actor *User) bool {
	for _, blocked := range u.Blocks {
		if blocked == actor.APID {
			return true
		}
	}
	host := HostFromAPID(actor.APID)
	if host == "" {
		return false
	}
	for _, domain := range u.DomainBlocks {
		if domain == host {
			return true
		}
	}
	return false
}

// MutesActor reports whether the user muted notifications from the actor.
func (u *User) MutesActor(actor *User) bool {
	for _, muted := range u.MutedNotifications {
		if muted == actor.APID {
			return true
		}
	}
	return false
}

// UpdateNotificationSettingsRequest carries partial toggle updates; nil
// fields keep the stored value.
type UpdateNotificationSettingsRequest struct {
	Followers    *bool `json:"followers"`
	NonFollowers *bool `json:"non_followers"`
	Follows      *bool `json:"follows"`
	NonFollows   *bool `json:"non_follows"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
