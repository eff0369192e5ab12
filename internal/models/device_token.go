package models

import "time"

// DeviceToken is an FCM registration token for push delivery
type DeviceToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index"`
	Token      string    `json:"token" gorm:"uniqueIndex"`
	DeviceName string    `json:"device_name" gorm:"size:100"`
	CreatedAt  time.Time `json:"created_at"`
}

type RegisterDeviceTokenRequest struct {
	Token      string `json:"token" validate:"required"`
	DeviceName string `json:"device_name" validate:"omitempty,max=100"`
}

type UnregisterDeviceTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
