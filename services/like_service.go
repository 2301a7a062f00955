package services

import (
	"context"
	"fmt"

	"pinboard/repositories"
)

type LikeService interface {
	ToggleLike(ctx context.Context, pinID, userID uint) (*LikeResult, error)
}

// LikeResult reports the caller's like state after a toggle and the pin's new total.
type LikeResult struct {
	Removed bool  `json:"removed"`
	Liked   bool  `json:"liked"`
	Likes   int64 `json:"likes"`
}

type likeService struct {
	likes repositories.LikeRepository
	pins  repositories.PinRepository
}

var _ LikeService = (*likeService)(nil)

func NewLikeService(likes repositories.LikeRepository, pins repositories.PinRepository) LikeService {
	return &likeService{likes: likes, pins: pins}
}

// ToggleLike likes the pin for userID, or unlikes it when already liked.
func (s *likeService) ToggleLike(ctx context.Context, pinID, userID uint) (*LikeResult, error) {
	if _, err := s.pins.FindByID(ctx, pinID); err != nil {
		return nil, lookupError("Pin", err)
	}

	liked, err := s.likes.Toggle(ctx, userID, pinID)
	if err != nil {
		return nil, fmt.Errorf("toggling like: %w", err)
	}
	count, err := s.likes.CountByPin(ctx, pinID)
	if err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}
	return &LikeResult{Removed: !liked, Liked: liked, Likes: count}, nil
}
