package controllers

import (
	"time"

	"pinboard/models"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthorResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type PinResponse struct {
	ID           uint           `json:"id"`
	Title        string         `json:"title"`
	Image        string         `json:"image"`
	ExternalLink string         `json:"externallink"`
	AuthorID     uint           `json:"authorId"`
	Author       AuthorResponse `json:"author"`
	Likes        int64          `json:"likes"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// PinDetailResponse is a pin with its comments, oldest first.
type PinDetailResponse struct {
	PinResponse
	Comments []CommentResponse `json:"comments"`
}

type CommentResponse struct {
	ID        uint           `json:"id"`
	Text      string         `json:"text"`
	PinID     uint           `json:"pinId"`
	AuthorID  uint           `json:"authorId"`
	Author    AuthorResponse `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
}

type BoardResponse struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	OwnerID   uint          `json:"ownerId"`
	Pins      []PinResponse `json:"pins"`
	CreatedAt time.Time     `json:"createdAt"`
}

type SignupResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type SigninResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// MessageResponse is the body of every error and of bodiless successes.
type MessageResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// --- Helpers to map models to responses ---

func mapUser(user *models.User) UserResponse {
	return UserResponse{ID: user.ID, Email: user.Email, Name: user.Name}
}

func mapAuthor(user *models.User) AuthorResponse {
	return AuthorResponse{ID: user.ID, Name: user.Name}
}

func mapPin(pin *models.Pin) PinResponse {
	resp := PinResponse{
		ID:           pin.ID,
		Title:        pin.Title,
		Image:        pin.Image,
		ExternalLink: pin.ExternalLink,
		AuthorID:     pin.AuthorID,
		Author:       mapAuthor(&pin.Author),
		Likes:        pin.LikeCount,
		CreatedAt:    pin.CreatedAt,
		UpdatedAt:    pin.UpdatedAt,
	}
	return resp
}

func mapPinDetail(pin *models.Pin) PinDetailResponse {
	return PinDetailResponse{PinResponse: mapPin(pin), Comments: mapComments(pin.Comments)}
}

func mapPins(pins []models.Pin) []PinResponse {
	out := make([]PinResponse, len(pins))
	for i := range pins {
		out[i] = mapPin(&pins[i])
	}
	return out
}

func mapComment(comment *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Text:      comment.Text,
		PinID:     comment.PinID,
		AuthorID:  comment.AuthorID,
		Author:    mapAuthor(&comment.Author),
		CreatedAt: comment.CreatedAt,
	}
}

func mapComments(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = mapComment(&comments[i])
	}
	return out
}

func mapBoard(board *models.Board) BoardResponse {
	pins := make([]PinResponse, len(board.Pins))
	for i := range board.Pins {
		pins[i] = mapPin(&board.Pins[i])
		// board listings carry pin cards only
		pins[i].Author = AuthorResponse{ID: board.Pins[i].AuthorID}
	}
	return BoardResponse{
		ID:        board.ID,
		Name:      board.Name,
		OwnerID:   board.OwnerID,
		Pins:      pins,
		CreatedAt: board.CreatedAt,
	}
}

func mapBoards(boards []models.Board) []BoardResponse {
	out := make([]BoardResponse, len(boards))
	for i := range boards {
		out[i] = mapBoard(&boards[i])
	}
	return out
}
