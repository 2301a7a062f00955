package services

import (
	"context"
	"fmt"
	"strings"

	"pinboard/models"
	"pinboard/repositories"
)

type BoardService interface {
	CreateBoard(ctx context.Context, ownerID uint, input *CreateBoardInput) (*models.Board, error)
	ListBoards(ctx context.Context, ownerID uint) ([]models.Board, error)
	GetBoard(ctx context.Context, boardID uint) (*models.Board, error)
	AddPinToBoard(ctx context.Context, boardID, requestingUserID uint, input *AddPinInput) (*models.Board, error)
}

type CreateBoardInput struct {
	Name string `json:"name" validate:"required,max=50"`
}

type AddPinInput struct {
	PinID uint `json:"pinId" validate:"gt=0"`
}

type boardService struct {
	boards repositories.BoardRepository
	pins   repositories.PinRepository
}

var _ BoardService = (*boardService)(nil)

func NewBoardService(boards repositories.BoardRepository, pins repositories.PinRepository) BoardService {
	return &boardService{boards: boards, pins: pins}
}

func (s *boardService) CreateBoard(ctx context.Context, ownerID uint, input *CreateBoardInput) (*models.Board, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	board := models.Board{Name: input.Name, OwnerID: ownerID, Pins: []models.Pin{}}
	if err := s.boards.Create(ctx, &board); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return &board, nil
}

// ListBoards returns the boards owned by ownerID, newest first.
func (s *boardService) ListBoards(ctx context.Context, ownerID uint) ([]models.Board, error) {
	boards, err := s.boards.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	return boards, nil
}

func (s *boardService) GetBoard(ctx context.Context, boardID uint) (*models.Board, error) {
	board, err := s.boards.FindByID(ctx, boardID)
	if err != nil {
		return nil, lookupError("Board", err)
	}
	return board, nil
}

// AddPinToBoard checks, in order, that the board exists, that the caller owns it and
// that the pin exists, then attaches the pin.
func (s *boardService) AddPinToBoard(ctx context.Context, boardID, requestingUserID uint, input *AddPinInput) (*models.Board, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	board, err := s.boards.FindByID(ctx, boardID)
	if err != nil {
		return nil, lookupError("Board", err)
	}
	if board.OwnerID != requestingUserID {
		return nil, fmt.Errorf("Forbidden: only the owner can add pins to this board: %w", ErrForbidden)
	}

	pin, err := s.pins.FindByID(ctx, input.PinID)
	if err != nil {
		return nil, lookupError("Pin", err)
	}
	if err := s.boards.AddPin(ctx, board, pin); err != nil {
		return nil, fmt.Errorf("failed to add pin to board: %w", err)
	}

	updated, err := s.boards.FindByID(ctx, boardID)
	if err != nil {
		return nil, lookupError("Board", err)
	}
	return updated, nil
}
