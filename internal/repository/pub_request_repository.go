package repository

import (
	"errors"
	"time"

	"github.com/jakeunsted/pub/internal/models"
	"gorm.io/gorm"
)

// ErrActiveRequestExists is returned by CreateExclusive when the group already
// has a request with expires_at in the future.
var ErrActiveRequestExists = errors.New("group already has an active pub request")

type PubRequestRepository struct {
	db *gorm.DB
}

func NewPubRequestRepository(db *gorm.DB) *PubRequestRepository {
	return &PubRequestRepository{db: db}
}

// CreateExclusive inserts a request only if the group has no active one.
// A partial unique index on (group_id) WHERE expires_at > now() is not
// expressible in Postgres, so the check-then-insert runs under a per-group
// advisory lock to serialize concurrent creators.
func (r *PubRequestRepository) CreateExclusive(req *models.PubRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(req.GroupID)).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.PubRequest{}).
			Where("group_id = ? AND expires_at > ?", req.GroupID, time.Now()).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrActiveRequestExists
		}

		return tx.Create(req).Error
	})
}

func (r *PubRequestRepository) FindByID(id uint) (*models.PubRequest, error) {
	var req models.PubRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindActiveByGroup returns the group's open requests, newest first.
func (r *PubRequestRepository) FindActiveByGroup(groupID uint, now time.Time) ([]models.PubRequest, error) {
	var requests []models.PubRequest
	err := r.db.Where("group_id = ? AND expires_at > ?", groupID, now).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// CountPendingForUser counts active requests in the user's groups that were
// requested by someone else and that the user has not responded to. A deny
// counts as responded.
func (r *PubRequestRepository) CountPendingForUser(userID uint, now time.Time) (int, error) {
	var count int64
	err := r.db.Model(&models.PubRequest{}).
		Joins("JOIN group_members gm ON gm.group_id = pub_requests.group_id AND gm.user_id = ?", userID).
		Joins("LEFT JOIN pub_responses resp ON resp.request_id = pub_requests.id AND resp.user_id = ?", userID).
		Where("pub_requests.expires_at > ? AND pub_requests.requested_by <> ? AND resp.id IS NULL", now, userID).
		Count(&count).Error
	return int(count), err
}
