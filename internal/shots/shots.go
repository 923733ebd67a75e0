package shots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"migrator/bot/internal/roster"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured size limit.
	ErrTooLarge = errors.New("shots: file too large")
	// ErrBadType is returned when an upload is not a supported image format.
	ErrBadType = errors.New("shots: unsupported content type")
)

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage persists screenshot bytes and returns a URL they can be fetched from.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// RosterStore is the subset of the roster store the upload service needs.
type RosterStore interface {
	GetPlayer(ctx context.Context, id string) (roster.Player, error)
	AddScreenshot(ctx context.Context, shot roster.Screenshot) error
}

// Service validates screenshot uploads, stores the bytes, and records
// the screenshot against the player's roster entry.
type Service struct {
	storage Storage
	store   RosterStore
	maxSize int64
}

func NewService(storage Storage, store RosterStore, maxSize int64) *Service {
	return &Service{storage: storage, store: store, maxSize: maxSize}
}

// Upload describes one incoming screenshot.
type Upload struct {
	PlayerID     string
	OriginalName string
	ContentType  string
	Size         int64
	Description  string
	Body         io.Reader
}

// Save validates the upload, writes it to storage under a fresh id, and
// records it in the roster. The player must already exist.
func (s *Service) Save(ctx context.Context, up Upload) (roster.Screenshot, error) {
	ext, ok := allowedTypes[strings.ToLower(up.ContentType)]
	if !ok {
		return roster.Screenshot{}, ErrBadType
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return roster.Screenshot{}, ErrTooLarge
	}

	if _, err := s.store.GetPlayer(ctx, up.PlayerID); err != nil {
		return roster.Screenshot{}, err
	}

	filename := uuid.NewString() + ext
	key := filepath.ToSlash(filepath.Join(up.PlayerID, filename))

	url, err := s.storage.Put(ctx, key, up.Body, up.Size, up.ContentType)
	if err != nil {
		return roster.Screenshot{}, fmt.Errorf("store screenshot: %w", err)
	}

	shot := roster.Screenshot{
		ID:           uuid.NewString(),
		PlayerID:     up.PlayerID,
		Filename:     filename,
		OriginalName: up.OriginalName,
		URL:          url,
		Description:  up.Description,
		ContentType:  up.ContentType,
		Size:         up.Size,
	}
	if err := s.store.AddScreenshot(ctx, shot); err != nil {
		return roster.Screenshot{}, err
	}
	return shot, nil
}
