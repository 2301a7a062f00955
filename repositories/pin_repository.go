package repositories

import (
	"context"

	"pinboard/models"

	"gorm.io/gorm"
)

// PinRepository interface defines Pin-related database operations
type PinRepository interface {
	Create(ctx context.Context, pin *models.Pin) error
	FindByID(ctx context.Context, id uint) (*models.Pin, error)
	FindDetail(ctx context.Context, id uint) (*models.Pin, error)
	FindAll(ctx context.Context) ([]models.Pin, error)
	Update(ctx context.Context, pin *models.Pin, fields map[string]any) error
	Delete(ctx context.Context, pin *models.Pin) error
}

type pinRepository struct {
	db *gorm.DB
}

func NewPinRepository(db *gorm.DB) PinRepository {
	return &pinRepository{db: db}
}

// authorSummary limits a preloaded author to the public fields.
func authorSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

func (r *pinRepository) Create(ctx context.Context, pin *models.Pin) error {
	if err := r.db.WithContext(ctx).Create(pin).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Scopes(authorSummary).First(&pin.Author, pin.AuthorID).Error
}

// FindByID loads a pin and its author, without comments.
func (r *pinRepository) FindByID(ctx context.Context, id uint) (*models.Pin, error) {
	var pin models.Pin
	err := r.db.WithContext(ctx).Preload("Author", authorSummary).First(&pin, id).Error
	if err != nil {
		return nil, err
	}
	if err := fillLikeCounts(ctx, r.db, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// FindDetail loads a pin with its author, its comments (oldest first, each with
// its author) and its like count.
func (r *pinRepository) FindDetail(ctx context.Context, id uint) (*models.Pin, error) {
	var pin models.Pin
	err := r.db.WithContext(ctx).
		Preload("Author", authorSummary).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.id ASC") }).
		Preload("Comments.Author", authorSummary).
		First(&pin, id).Error
	if err != nil {
		return nil, err
	}
	if err := fillLikeCounts(ctx, r.db, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// FindAll returns every pin, newest (highest id) first.
func (r *pinRepository) FindAll(ctx context.Context) ([]models.Pin, error) {
	var pins []models.Pin
	err := r.db.WithContext(ctx).Preload("Author", authorSummary).Order("pins.id DESC").Find(&pins).Error
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.Pin, len(pins))
	for i := range pins {
		ptrs[i] = &pins[i]
	}
	if err := fillLikeCounts(ctx, r.db, ptrs...); err != nil {
		return nil, err
	}
	return pins, nil
}

func (r *pinRepository) Update(ctx context.Context, pin *models.Pin, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(pin).Updates(fields).Error
}

// Delete removes the pin together with its likes, comments and board memberships.
func (r *pinRepository) Delete(ctx context.Context, pin *models.Pin) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pin_id = ?", pin.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("pin_id = ?", pin.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM board_pins WHERE pin_id = ?", pin.ID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(pin).Error
	})
}

// fillLikeCounts sets LikeCount on each pin with one grouped query.
func fillLikeCounts(ctx context.Context, db *gorm.DB, pins ...*models.Pin) error {
	if len(pins) == 0 {
		return nil
	}
	ids := make([]uint, len(pins))
	for i, p := range pins {
		ids[i] = p.ID
	}

	var rows []struct {
		PinID uint
		Count int64
	}
	err := db.WithContext(ctx).Model(&models.Like{}).
		Select("pin_id, COUNT(*) AS count").
		Where("pin_id IN ?", ids).
		Group("pin_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.PinID] = row.Count
	}
	for _, p := range pins {
		p.LikeCount = counts[p.ID]
	}
	return nil
}
