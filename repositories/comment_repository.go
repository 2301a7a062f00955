package repositories

import (
	"context"

	"pinboard/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByPin(ctx context.Context, pinID uint) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and loads its author.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Scopes(authorSummary).First(&comment.Author, comment.AuthorID).Error
}

// FindByPin lists a pin's comments oldest first.
func (r *commentRepository) FindByPin(ctx context.Context, pinID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author", authorSummary).
		Where("pin_id = ?", pinID).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}
