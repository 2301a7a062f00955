package repositories

import (
	"context"

	"pinboard/models"

	"gorm.io/gorm"
)

type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	FindByID(ctx context.Context, id uint) (*models.Board, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]models.Board, error)
	AddPin(ctx context.Context, board *models.Board, pin *models.Pin) error
}

type boardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func boardPins(db *gorm.DB) *gorm.DB {
	return db.Order("pins.id DESC")
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

// FindByID loads a board with its pins, newest first.
func (r *boardRepository) FindByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	err := r.db.WithContext(ctx).Preload("Pins", boardPins).First(&board, id).Error
	if err != nil {
		return nil, err
	}
	if err := r.fillBoardLikes(ctx, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) FindByOwner(ctx context.Context, ownerID uint) ([]models.Board, error) {
	var boards []models.Board
	err := r.db.WithContext(ctx).
		Preload("Pins", boardPins).
		Where("owner_id = ?", ownerID).
		Order("id DESC").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.Board, len(boards))
	for i := range boards {
		ptrs[i] = &boards[i]
	}
	if err := r.fillBoardLikes(ctx, ptrs...); err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *boardRepository) fillBoardLikes(ctx context.Context, boards ...*models.Board) error {
	var pins []*models.Pin
	for _, board := range boards {
		for i := range board.Pins {
			pins = append(pins, &board.Pins[i])
		}
	}
	return fillLikeCounts(ctx, r.db, pins...)
}

// AddPin attaches the pin to the board; attaching a pin twice is a no-op.
func (r *boardRepository) AddPin(ctx context.Context, board *models.Board, pin *models.Pin) error {
	return r.db.WithContext(ctx).Model(board).Omit("Pins.*").Association("Pins").Append(pin)
}
