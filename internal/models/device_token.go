package models

import (
	"time"
)

type DevicePlatform string

const (
	PlatformIOS     DevicePlatform = "ios"
	PlatformAndroid DevicePlatform = "android"
	PlatformWeb     DevicePlatform = "web"
)

// DeviceToken is an Expo push token registered by a client device.
type DeviceToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   uint           `gorm:"index;not null" json:"user_id"`
	Token    string         `gorm:"uniqueIndex;not null" json:"token"`
	Platform DevicePlatform `gorm:"type:varchar(20);not null" json:"platform"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
