package services

import (
	"context"
	"fmt"
	"strings"

	"pinboard/models"
	"pinboard/repositories"
)

type CommentService interface {
	CreateComment(ctx context.Context, pinID, authorID uint, input *CreateCommentInput) (*models.Comment, error)
	ListComments(ctx context.Context, pinID uint) ([]models.Comment, error)
}

type CreateCommentInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

type commentService struct {
	comments repositories.CommentRepository
	pins     repositories.PinRepository
}

var _ CommentService = (*commentService)(nil)

func NewCommentService(comments repositories.CommentRepository, pins repositories.PinRepository) CommentService {
	return &commentService{comments: comments, pins: pins}
}

// CreateComment attaches text to any existing pin under the caller's identity.
func (s *commentService) CreateComment(ctx context.Context, pinID, authorID uint, input *CreateCommentInput) (*models.Comment, error) {
	input.Text = strings.TrimSpace(input.Text)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if _, err := s.pins.FindByID(ctx, pinID); err != nil {
		return nil, lookupError("Pin", err)
	}

	comment := models.Comment{Text: input.Text, PinID: pinID, AuthorID: authorID}
	if err := s.comments.Create(ctx, &comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &comment, nil
}

func (s *commentService) ListComments(ctx context.Context, pinID uint) ([]models.Comment, error) {
	if _, err := s.pins.FindByID(ctx, pinID); err != nil {
		return nil, lookupError("Pin", err)
	}
	comments, err := s.comments.FindByPin(ctx, pinID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}
