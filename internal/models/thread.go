package models

import "time"

// ThreadMute suppresses notifications from one conversation at query time
type ThreadMute struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_thread_mute_user_context"`
	Context   string    `json:"context" gorm:"uniqueIndex:idx_thread_mute_user_context"`
	CreatedAt time.Time `json:"created_at"`
}

// ThreadSubscription opts a local user into updates on a conversation
type ThreadSubscription struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_thread_sub_user_context"`
	Context   string    `json:"context" gorm:"index;uniqueIndex:idx_thread_sub_user_context"`
	CreatedAt time.Time `json:"created_at"`
}
