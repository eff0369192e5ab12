package models

import (
	"net/url"
	"time"
)

// Activity type tags eligible for notification fan-out
const (
	ActivityCreate   = "Create"
	ActivityLike     = "Like"
	ActivityAnnounce = "Announce"
	ActivityFollow   = "Follow"
)

// Visibility labels computed from ActivityPub addressing
const (
	VisibilityDirect   = "direct"
	VisibilityUnlisted = "unlisted"
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
)

// PublicAddress is the ActivityStreams public collection identifier.
const PublicAddress = "https://www.w3.org/ns/activitystreams#Public"

// Activity is the relational index of a stored federated activity. The raw
// payload document lives in MongoDB (see Object); this row carries only what
// recipient resolution and query filtering need.
type Activity struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Type       string    `json:"type" gorm:"size:30;index"` // Create, Like, Announce, Follow, ...
	ActorID    uint      `json:"actor_id" gorm:"index"`
	Actor      *User     `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
	Recipients []string  `json:"recipients" gorm:"serializer:json"` // addressed "to" AP IDs
	CC         []string  `json:"cc" gorm:"serializer:json"`
	Mentions   []string  `json:"mentions" gorm:"serializer:json"` // AP IDs tagged in the content
	ObjectAPID string    `json:"object_ap_id" gorm:"column:object_ap_id;index"`
	Context    string    `json:"context" gorm:"index"` // conversation thread identifier
	Visibility string    `json:"visibility" gorm:"size:10;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// ValidVisibility reports whether the label belongs to the fixed enumeration.
func ValidVisibility(visibility string) bool {
	switch visibility {
	case VisibilityDirect, VisibilityUnlisted, VisibilityPublic, VisibilityPrivate:
		return true
	}
	return false
}

// ComputeVisibility derives the access-scope label from ActivityPub
// addressing: public collection in "to" means public, in "cc" unlisted, the
// actor's followers collection in "to" private, anything else direct.
func ComputeVisibility(actor *User, recipients, cc []string) string {
	for _, recipient := range recipients {
		if recipient == PublicAddress {
			return VisibilityPublic
		}
	}
	for _, recipient := range cc {
		if recipient == PublicAddress {
			return VisibilityUnlisted
		}
	}
	if actor != nil && actor.FollowersAPID != "" {
		for _, recipient := range recipients {
			if recipient == actor.FollowersAPID {
				return VisibilityPrivate
			}
		}
	}
	return VisibilityDirect
}

// HostFromAPID extracts the instance host from an ActivityPub identifier.
// Returns "" for identifiers that do not parse as URLs.
func HostFromAPID(apID string) string {
	u, err := url.Parse(apID)
	if err != nil {
		return ""
	}
	return u.Host
}
