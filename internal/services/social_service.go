package services

import (
	"context"
	"fmt"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/models"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/repositories"
	"artlink_backend/internal/services/dto"
)

// SocialService owns the follow/like graph. Both toggles are idempotent:
// repeating the same request converges on the same state and response, and
// side effects fire exactly once, on the call that actually flipped the edge.
type SocialService interface {
	SetFollow(ctx context.Context, followerID, targetID string, desired bool) (*dto.ToggleResult, error)
	SetLike(ctx context.Context, userID, targetType, targetID, ownerID string, desired bool) (*dto.ToggleResult, error)
	IsFollowing(followerID, targetID string) (bool, error)
	FollowerCount(userID string) (int64, error)
	FollowingCount(userID string) (int64, error)
	LikeCount(targetType, targetID string) (int64, error)
}

type socialService struct {
	socialRepo *repositories.SocialRepository
	fanout     *FanoutService
}

func NewSocialService(socialRepo *repositories.SocialRepository, fanout *FanoutService) SocialService {
	return &socialService{
		socialRepo: socialRepo,
		fanout:     fanout,
	}
}

func (s *socialService) SetFollow(ctx context.Context, followerID, targetID string, desired bool) (*dto.ToggleResult, error) {
	if followerID == targetID {
		return nil, appErrors.ErrSelfFollow
	}
	if followerID == "" || targetID == "" {
		return nil, appErrors.ErrValidationFailed
	}

	edge, err := s.socialRepo.GetOrCreateFollowEdge(followerID, targetID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	previous := edge.IsActive
	if previous == desired {
		// Already at the desired state; report it without touching anything.
		return &dto.ToggleResult{
			IsActive:      previous,
			StateChanged:  false,
			PreviousState: previous,
		}, nil
	}

	if err := s.socialRepo.SetFollowActive(edge.ID, desired); err != nil {
		return nil, appErrors.InternalError(err)
	}

	// Side effects only on a real transition, never on a repeat.
	if desired {
		s.fanout.Publish(ctx, Event{
			Recipients: []string{targetID},
			Type:       models.NotificationNewFollower,
			LiveType:   realtime.EventFollowNotif,
			ActorID:    &followerID,
			Title:      "New follower",
			Body:       "You have a new follower",
			Data:       map[string]interface{}{"follower_id": followerID},
		})
	}

	return &dto.ToggleResult{
		IsActive:      desired,
		StateChanged:  true,
		PreviousState: previous,
	}, nil
}

func (s *socialService) SetLike(ctx context.Context, userID, targetType, targetID, ownerID string, desired bool) (*dto.ToggleResult, error) {
	if !models.ValidLikeTarget(targetType) {
		return nil, appErrors.ErrValidationFailed.WithDetails(fmt.Sprintf("unknown target type %q", targetType))
	}
	if userID == "" || targetID == "" {
		return nil, appErrors.ErrValidationFailed
	}
	if ownerID != "" && ownerID == userID {
		return nil, appErrors.ErrSelfLike
	}

	like, err := s.socialRepo.GetOrCreateLike(userID, targetType, targetID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	previous := like.IsActive
	if previous == desired {
		return &dto.ToggleResult{
			IsActive:      previous,
			StateChanged:  false,
			PreviousState: previous,
		}, nil
	}

	if err := s.socialRepo.SetLikeActive(like.ID, desired); err != nil {
		return nil, appErrors.InternalError(err)
	}

	if desired && ownerID != "" {
		s.fanout.Publish(ctx, Event{
			Recipients: []string{ownerID},
			Type:       models.NotificationReaction,
			ActorID:    &userID,
			Title:      "New like",
			Body:       fmt.Sprintf("Someone liked your %s", targetType),
			Data:       map[string]interface{}{"target_type": targetType, "target_id": targetID},
			TargetType: &targetType,
			TargetID:   &targetID,
		})
	}

	return &dto.ToggleResult{
		IsActive:      desired,
		StateChanged:  true,
		PreviousState: previous,
	}, nil
}

func (s *socialService) IsFollowing(followerID, targetID string) (bool, error) {
	return s.socialRepo.IsFollowing(followerID, targetID)
}

func (s *socialService) FollowerCount(userID string) (int64, error) {
	return s.socialRepo.FollowerCount(userID)
}

func (s *socialService) FollowingCount(userID string) (int64, error) {
	return s.socialRepo.FollowingCount(userID)
}

func (s *socialService) LikeCount(targetType, targetID string) (int64, error) {
	if !models.ValidLikeTarget(targetType) {
		return 0, appErrors.ErrValidationFailed
	}
	return s.socialRepo.LikeCount(targetType, targetID)
}
