package repository

import (
	"time"

	"github.com/jakeunsted/pub/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	FindByIDs(ids []uint) ([]models.User, error)
	Update(user *models.User) error
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	FindByID(id uint) (*models.Group, error)
	AddMember(groupID, userID uint) error
	RemoveMember(groupID, userID uint) error
	GetMembers(groupID uint) ([]models.User, error)
	GetMemberIDs(groupID uint) ([]uint, error)
	IsMember(groupID, userID uint) (bool, error)
	GetUserGroups(userID uint) ([]models.Group, error)
	GetUserGroupIDs(userID uint) ([]uint, error)
}

// PubRequestRepositoryInterface defines the contract for pub request storage
type PubRequestRepositoryInterface interface {
	CreateExclusive(req *models.PubRequest) error
	FindByID(id uint) (*models.PubRequest, error)
	FindActiveByGroup(groupID uint, now time.Time) ([]models.PubRequest, error)
	CountPendingForUser(userID uint, now time.Time) (int, error)
}

// PubResponseRepositoryInterface defines the contract for pub response storage
type PubResponseRepositoryInterface interface {
	Upsert(requestID, userID uint, accepted bool, respondedAt time.Time) error
	FindByRequest(requestID uint) ([]models.PubResponse, error)
}

// GroupInviteRepositoryInterface defines the contract for group invite operations
type GroupInviteRepositoryInterface interface {
	Create(invite *models.GroupInvite) error
	FindByToken(token string) (*models.GroupInvite, error)
	FindByID(id uint) (*models.GroupInvite, error)
	MarkAccepted(token string, userID uint, acceptedAt time.Time) (int64, error)
	ListPendingByGroup(groupID uint) ([]models.GroupInvite, error)
	DeletePending(id uint) (int64, error)
}

// DeviceTokenRepositoryInterface defines the contract for push token storage
type DeviceTokenRepositoryInterface interface {
	Register(userID uint, token string, platform models.DevicePlatform) error
	Unregister(userID uint, token string) error
	FindByUserIDs(userIDs []uint) ([]models.DeviceToken, error)
}

// RefreshTokenRepositoryInterface defines the contract for refresh token repository operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	FindValidByHash(tokenHash string) (*models.RefreshToken, error)
	RevokeByHash(tokenHash string) error
}
