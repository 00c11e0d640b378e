package repositories

import (
	"context"
	"errors"

	"fiber-erp/models"

	"gorm.io/gorm"
)

// DirectoryRepository implements workflow.Directory and
// workflow.CapabilityEvaluator over the branch/user/role tables.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) BranchExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Branch{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DirectoryRepository) ActorExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DirectoryRepository) ActorBranchIDs(ctx context.Context, actorID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Table("user_branches").
		Where("user_id = ?", actorID).
		Pluck("branch_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// HasCapability walks the user's roles and their capabilities.
func (r *DirectoryRepository) HasCapability(ctx context.Context, actorID uint, code string) (bool, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles.Capabilities").
		First(&user, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, role := range user.Roles {
		for _, capability := range role.Capabilities {
			if capability.Code == code {
				return true, nil
			}
		}
	}
	return false, nil
}
