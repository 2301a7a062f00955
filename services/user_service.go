package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pinboard/auth"
	"pinboard/models"
	"pinboard/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// The UserService interface covers account creation and sign-in
type UserService interface {
	Signup(ctx context.Context, input *SignupInput) (*models.User, error)
	Signin(ctx context.Context, input *SigninInput) (string, *models.User, error)
}

// --- Structs for Input ---
type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"` // bcrypt ignores bytes past 72
}

type SigninInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var errInvalidCredentials = fmt.Errorf("Invalid credentials: %w", ErrUnauthorized)

type userService struct {
	repo       repositories.UserRepository
	bcryptCost int
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(repo repositories.UserRepository, bcryptCost int) UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{repo: repo, bcryptCost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account. The email is unique: the pre-check and the unique
// index both surface as ErrConflict.
func (s *userService) Signup(ctx context.Context, input *SignupInput) (*models.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, fmt.Errorf("An account with this email %w", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := models.User{
		Email:    input.Email,
		Password: string(hashedPassword),
		Name:     input.Name,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("An account with this email %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Signin checks the credentials and issues a bearer token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *userService) Signin(ctx context.Context, input *SigninInput) (string, *models.User, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errInvalidCredentials
		}
		return "", nil, fmt.Errorf("loading user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return "", nil, errInvalidCredentials
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
