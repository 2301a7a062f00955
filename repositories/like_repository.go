package repositories

import (
	"context"
	"errors"

	"pinboard/models"

	"gorm.io/gorm"
)

type LikeRepository interface {
	Toggle(ctx context.Context, userID, pinID uint) (liked bool, err error)
	CountByPin(ctx context.Context, pinID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the user's like on the pin if one exists and creates it otherwise.
// It reports whether the pin is liked by the user afterwards. The (user, pin) unique
// index settles concurrent toggles: an insert that loses the race means the pin is
// already liked.
func (r *likeRepository) Toggle(ctx context.Context, userID, pinID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var like models.Like
		err := tx.Where("user_id = ? AND pin_id = ?", userID, pinID).Take(&like).Error
		switch {
		case err == nil:
			liked = false
			return tx.Delete(&like).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.Like{UserID: userID, PinID: pinID}).Error
		default:
			return err
		}
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return liked, nil
}

func (r *likeRepository) CountByPin(ctx context.Context, pinID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("pin_id = ?", pinID).Count(&count).Error
	return count, err
}
