package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pinboard/models"
	"pinboard/repositories"
	"pinboard/storage"

	"go.uber.org/zap"
)

type PinService interface {
	CreatePin(ctx context.Context, authorID uint, input *CreatePinInput) (*models.Pin, error)
	ListPins(ctx context.Context) ([]models.Pin, error)
	GetPin(ctx context.Context, pinID uint) (*models.Pin, error)
	UpdatePin(ctx context.Context, pinID, requestingUserID uint, input *UpdatePinInput) (*models.Pin, error)
	DeletePin(ctx context.Context, pinID, requestingUserID uint) error
}

// ImageUpload is the image part of a pin creation form.
type ImageUpload struct {
	File     io.ReadSeeker
	Size     int64
	Filename string
}

type CreatePinInput struct {
	Title        string       `json:"title" validate:"required,max=100"`
	ExternalLink string       `json:"externallink" validate:"required,http_url,max=2048"`
	Image        *ImageUpload `json:"-"`
}

// UpdatePinInput applies only the fields that are present.
type UpdatePinInput struct {
	Title        *string `json:"title,omitempty" validate:"omitnil,min=1,max=100"`
	ExternalLink *string `json:"externallink,omitempty" validate:"omitnil,http_url,max=2048"`
}

// UploadPolicy bounds the images accepted for new pins.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedTypes []string
}

type pinService struct {
	repo   repositories.PinRepository
	store  storage.ImageStore
	policy UploadPolicy
	logger *zap.Logger
}

var _ PinService = (*pinService)(nil)

func NewPinService(repo repositories.PinRepository, store storage.ImageStore, policy UploadPolicy, logger *zap.Logger) PinService {
	return &pinService{repo: repo, store: store, policy: policy, logger: logger.Named("pins")}
}

// checkImage validates size and sniffed type, returning the content type and file
// extension to store the image under.
func (s *pinService) checkImage(img *ImageUpload) (string, string, error) {
	if img == nil || img.File == nil || img.Size == 0 {
		return "", "", fieldError("image", "is required")
	}
	if s.policy.MaxBytes > 0 && img.Size > s.policy.MaxBytes {
		return "", "", fieldError("image", fmt.Sprintf("must be at most %d bytes", s.policy.MaxBytes))
	}
	contentType, ext, err := storage.Sniff(img.File, s.policy.AllowedTypes)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", "", fieldError("image", "must be one of "+strings.Join(s.policy.AllowedTypes, ", "))
		}
		return "", "", err
	}
	return contentType, ext, nil
}

// CreatePin stores the image and persists the pin owned by authorID. Nothing is
// persisted or stored when validation fails.
func (s *pinService) CreatePin(ctx context.Context, authorID uint, input *CreatePinInput) (*models.Pin, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.ExternalLink = strings.TrimSpace(input.ExternalLink)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	contentType, ext, err := s.checkImage(input.Image)
	if err != nil {
		return nil, err
	}

	key := storage.NewKey(ext)
	url, err := s.store.Save(ctx, key, contentType, input.Image.File)
	if err != nil {
		return nil, fmt.Errorf("saving image: %w", err)
	}

	pin := models.Pin{
		Title:        input.Title,
		Image:        url,
		ImageKey:     key,
		ExternalLink: input.ExternalLink,
		AuthorID:     authorID,
	}
	if err := s.repo.Create(ctx, &pin); err != nil {
		s.removeImage(ctx, key)
		return nil, fmt.Errorf("failed to create pin: %w", err)
	}
	return &pin, nil
}

func (s *pinService) ListPins(ctx context.Context) ([]models.Pin, error) {
	pins, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pins: %w", err)
	}
	return pins, nil
}

// GetPin returns the pin with its author, comments and like count.
func (s *pinService) GetPin(ctx context.Context, pinID uint) (*models.Pin, error) {
	pin, err := s.repo.FindDetail(ctx, pinID)
	if err != nil {
		return nil, lookupError("Pin", err)
	}
	return pin, nil
}

// ownedPin loads the pin and checks that requestingUserID authored it.
func (s *pinService) ownedPin(ctx context.Context, pinID, requestingUserID uint) (*models.Pin, error) {
	pin, err := s.repo.FindByID(ctx, pinID)
	if err != nil {
		return nil, lookupError("Pin", err)
	}
	if pin.AuthorID != requestingUserID {
		return nil, fmt.Errorf("Forbidden: only the author can modify this pin: %w", ErrForbidden)
	}
	return pin, nil
}

func (s *pinService) UpdatePin(ctx context.Context, pinID, requestingUserID uint, input *UpdatePinInput) (*models.Pin, error) {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}
	if input.ExternalLink != nil {
		link := strings.TrimSpace(*input.ExternalLink)
		input.ExternalLink = &link
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	pin, err := s.ownedPin(ctx, pinID, requestingUserID)
	if err != nil {
		return nil, err
	}

	// --- Update Fields ---
	fields := map[string]any{}
	if input.Title != nil && *input.Title != pin.Title {
		fields["title"] = *input.Title
	}
	if input.ExternalLink != nil && *input.ExternalLink != pin.ExternalLink {
		fields["external_link"] = *input.ExternalLink
	}
	if err := s.repo.Update(ctx, pin, fields); err != nil {
		return nil, fmt.Errorf("failed to save pin updates: %w", err)
	}

	updated, err := s.repo.FindByID(ctx, pin.ID)
	if err != nil {
		return nil, lookupError("Pin", err)
	}
	return updated, nil
}

// DeletePin removes the pin with its comments, likes and board memberships, then
// its stored image.
func (s *pinService) DeletePin(ctx context.Context, pinID, requestingUserID uint) error {
	pin, err := s.ownedPin(ctx, pinID, requestingUserID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, pin); err != nil {
		return fmt.Errorf("failed to delete pin: %w", err)
	}
	s.removeImage(ctx, pin.ImageKey)
	return nil
}

// removeImage deletes a stored image on a best-effort basis; an orphaned file is
// logged rather than failing the request.
func (s *pinService) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to remove pin image", zap.String("key", key), zap.Error(err))
	}
}
