package models

import "time"

// Notification represents a durable per-(user, activity) notification record
type Notification struct {
	ID         uint      `json:"id" gorm:"primaryKey"` // auto-increment, time-sortable
	UserID     uint      `json:"user_id" gorm:"index"`
	ActivityID uint      `json:"activity_id" gorm:"index"`
	Activity   *Activity `json:"activity,omitempty" gorm:"foreignKey:ActivityID"`
	Seen       bool      `json:"seen" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type MarkReadUpToRequest struct {
	MaxID uint `json:"max_id" validate:"required"`
}

type DestroyMultipleRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}
