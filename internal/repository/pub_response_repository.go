package repository

import (
	"time"

	"github.com/jakeunsted/pub/internal/models"
	"gorm.io/gorm"
)

type PubResponseRepository struct {
	db *gorm.DB
}

func NewPubResponseRepository(db *gorm.DB) *PubResponseRepository {
	return &PubResponseRepository{db: db}
}

// Upsert records or overwrites a member's answer. The unique index on
// (request_id, user_id) guarantees at most one row per pair even under
// concurrent double-submits.
func (r *PubResponseRepository) Upsert(requestID, userID uint, accepted bool, respondedAt time.Time) error {
	return r.db.Exec(`
		INSERT INTO pub_responses (request_id, user_id, accepted, responded_at, created_at)
		VALUES (?, ?, ?, ?, NOW())
		ON CONFLICT (request_id, user_id) DO UPDATE
		SET accepted = EXCLUDED.accepted, responded_at = EXCLUDED.responded_at
	`, requestID, userID, accepted, respondedAt).Error
}

func (r *PubResponseRepository) FindByRequest(requestID uint) ([]models.PubResponse, error) {
	var responses []models.PubResponse
	err := r.db.Where("request_id = ?", requestID).Find(&responses).Error
	return responses, err
}
