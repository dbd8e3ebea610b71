package repository

import (
	"github.com/jakeunsted/pub/internal/models"
	"gorm.io/gorm"
)

type DeviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Register upserts a token. A token can move between users when a device is
// signed into a different account.
func (r *DeviceTokenRepository) Register(userID uint, token string, platform models.DevicePlatform) error {
	return r.db.Exec(`
		INSERT INTO device_tokens (user_id, token, platform, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, updated_at = NOW()
	`, userID, token, platform).Error
}

func (r *DeviceTokenRepository) Unregister(userID uint, token string) error {
	return r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&models.DeviceToken{}).Error
}

func (r *DeviceTokenRepository) FindByUserIDs(userIDs []uint) ([]models.DeviceToken, error) {
	if len(userIDs) == 0 {
		return []models.DeviceToken{}, nil
	}
	var tokens []models.DeviceToken
	err := r.db.Where("user_id IN ?", userIDs).Find(&tokens).Error
	return tokens, err
}
