package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Object type tags
const (
	ObjectNote     = "Note"
	ObjectQuestion = "Question"
	ObjectAnswer   = "Answer" // poll answers never notify
)

// Object is the raw federated object document (MongoDB). The relational
// Activity row references it by AP ID.
type Object struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	APID      string             `json:"ap_id" bson:"ap_id"`
	Type      string             `json:"type" bson:"type"`
	ActorAPID string             `json:"actor_ap_id" bson:"actor_ap_id"`
	Context   string             `json:"context" bson:"context"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
