package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `gorm:"size:100" json:"display_name"`

	Avatar            string     `json:"avatar"`
	AvatarKey         string     `gorm:"size:255" json:"-"`
	AvatarContentType string     `gorm:"size:64" json:"-"`
	AvatarSizeBytes   int64      `json:"-"`
	AvatarUpdatedAt   *time.Time `json:"-"`
	AvatarETag        string     `gorm:"size:64" json:"-"`
}

type UserResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}
