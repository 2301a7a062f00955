// Package storage keeps uploaded pin images on local disk or in a Google Cloud
// Storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"pinboard/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported image type")

// ImageStore persists image bytes under a key and returns the URL clients load them from.
type ImageStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.UploadsConfig) (ImageStore, error) {
	switch cfg.Backend {
	case "disk", "":
		return NewDiskStore(cfg.Dir, cfg.URLPrefix)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown uploads backend %q", cfg.Backend)
	}
}

// NewKey returns a unique object key with the given extension (including the dot).
func NewKey(ext string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

// Sniff detects the content type of r from its leading bytes and rewinds it. It fails
// with ErrUnsupportedType unless the type is one of allowed.
func Sniff(r io.ReadSeeker, allowed []string) (contentType, ext string, err error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", fmt.Errorf("detecting image type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewinding image: %w", err)
	}

	for _, a := range allowed {
		if mtype.Is(a) {
			return a, mtype.Extension(), nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
}
