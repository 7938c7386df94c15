package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"artlink_backend/internal/models"
)

type SocialRepository struct {
	DB *gorm.DB
}

func NewSocialRepository(db *gorm.DB) *SocialRepository {
	return &SocialRepository{DB: db}
}

// GetOrCreateFollowEdge returns the edge for the pair, creating an inactive
// one if none exists. Creation is race-safe: the unique (follower, followee)
// index plus insert-ignore means two concurrent callers converge on one row,
// and the loser of the insert refetches the winner's row.
func (r *SocialRepository) GetOrCreateFollowEdge(followerID, followeeID string) (*models.FollowEdge, error) {
	edge := &models.FollowEdge{
		FollowerID: followerID,
		FolloweeID: followeeID,
		IsActive:   false,
	}
	edge.ID = uuid.New().String()

	if err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error; err != nil {
		return nil, err
	}

	var existing models.FollowEdge
	err := r.DB.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *SocialRepository) SetFollowActive(edgeID string, active bool) error {
	return r.DB.Model(&models.FollowEdge{}).
		Where("id = ?", edgeID).
		Update("is_active", active).Error
}

// FollowerCount counts active inbound edges; derived at read time so no-op
// toggles can never drift a denormalized counter.
func (r *SocialRepository) FollowerCount(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.FollowEdge{}).
		Where("followee_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *SocialRepository) FollowingCount(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.FollowEdge{}).
		Where("follower_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *SocialRepository) IsFollowing(followerID, followeeID string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.FollowEdge{}).
		Where("follower_id = ? AND followee_id = ? AND is_active = ?", followerID, followeeID, true).
		Count(&count).Error
	return count > 0, err
}

// GetOrCreateLike mirrors GetOrCreateFollowEdge for like rows.
func (r *SocialRepository) GetOrCreateLike(userID, targetType, targetID string) (*models.Like, error) {
	like := &models.Like{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
		IsActive:   false,
	}
	like.ID = uuid.New().String()

	if err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
		return nil, err
	}

	var existing models.Like
	err := r.DB.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *SocialRepository) SetLikeActive(likeID string, active bool) error {
	return r.DB.Model(&models.Like{}).
		Where("id = ?", likeID).
		Update("is_active", active).Error
}

func (r *SocialRepository) LikeCount(targetType, targetID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Like{}).
		Where("target_type = ? AND target_id = ? AND is_active = ?", targetType, targetID, true).
		Count(&count).Error
	return count, err
}
