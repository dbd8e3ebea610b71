package repository

import (
	"time"

	"github.com/jakeunsted/pub/internal/models"
	"gorm.io/gorm"
)

type GroupInviteRepository struct {
	db *gorm.DB
}

func NewGroupInviteRepository(db *gorm.DB) *GroupInviteRepository {
	return &GroupInviteRepository{db: db}
}

func (r *GroupInviteRepository) Create(invite *models.GroupInvite) error {
	return r.db.Create(invite).Error
}

func (r *GroupInviteRepository) FindByToken(token string) (*models.GroupInvite, error) {
	var invite models.GroupInvite
	if err := r.db.Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *GroupInviteRepository) FindByID(id uint) (*models.GroupInvite, error) {
	var invite models.GroupInvite
	if err := r.db.First(&invite, id).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// MarkAccepted consumes the invite. The accepted_at IS NULL guard makes
// consumption single-shot; the returned count tells the caller whether this
// call actually consumed it.
func (r *GroupInviteRepository) MarkAccepted(token string, userID uint, acceptedAt time.Time) (int64, error) {
	res := r.db.Model(&models.GroupInvite{}).
		Where("token = ? AND accepted_at IS NULL", token).
		Updates(map[string]interface{}{
			"accepted_at": acceptedAt,
			"accepted_by": userID,
		})
	return res.RowsAffected, res.Error
}

func (r *GroupInviteRepository) ListPendingByGroup(groupID uint) ([]models.GroupInvite, error) {
	var invites []models.GroupInvite
	err := r.db.Where("group_id = ? AND accepted_at IS NULL", groupID).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

// DeletePending hard-deletes an invite but never a consumed one, preserving
// the record of who joined via whom.
func (r *GroupInviteRepository) DeletePending(id uint) (int64, error) {
	res := r.db.Where("id = ? AND accepted_at IS NULL", id).
		Delete(&models.GroupInvite{})
	return res.RowsAffected, res.Error
}
