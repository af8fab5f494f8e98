// Package upload stages uploaded survey files between web form requests.
//
// The form uploads a JSON document once and then re-renders it many times
// while the user changes options. Uploads are kept under a random ID with an
// expiry; this is request staging, not persistence. Implementations exist for
// different deployments:
//   - memory: bounded LRU for a single server process
//   - file: JSON files in a directory, surviving restarts
//   - redis: shared staging for several server instances
//
// # Usage
//
//	store, err := upload.NewMemoryStore(upload.DefaultCapacity)
//	if err != nil {
//	    return err
//	}
//
//	u := upload.New("survey.json", data, upload.DefaultTTL)
//	if err := store.Set(ctx, u); err != nil {
//	    return err
//	}
//
//	u, err = store.Get(ctx, id)
//	if errors.Is(err, upload.ErrNotFound) {
//	    // Upload missing or expired
//	}
package upload

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/surveyplot/pkg/dataset"
	surveyio "github.com/matzehuels/surveyplot/pkg/io"
)

// Sentinel errors for upload operations.
var (
	// ErrNotFound is returned when an upload does not exist or has expired.
	ErrNotFound = errors.New("upload not found")

	// ErrInvalidID is returned for IDs that were not issued by New.
	ErrInvalidID = errors.New("invalid upload id")
)

// Default settings.
const (
	// DefaultTTL is how long an upload stays available.
	DefaultTTL = time.Hour

	// DefaultCapacity is the number of uploads kept by the memory store.
	DefaultCapacity = 128
)

// Upload is one staged survey file.
type Upload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New creates an upload with a fresh random ID.
func New(name string, data []byte, ttl time.Duration) *Upload {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Upload{
		ID:        uuid.NewString(),
		Name:      name,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the upload has expired.
func (u *Upload) IsExpired() bool {
	return time.Now().After(u.ExpiresAt)
}

// TTL returns the remaining lifetime, or zero once expired.
func (u *Upload) TTL() time.Duration {
	if d := time.Until(u.ExpiresAt); d > 0 {
		return d
	}
	return 0
}

// Document decodes the staged JSON.
func (u *Upload) Document() (*dataset.Document, error) {
	return surveyio.ReadJSON(bytes.NewReader(u.Data))
}

// Store is the interface for upload staging backends.
type Store interface {
	// Get retrieves an upload by ID.
	// Returns ErrNotFound if the upload doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Upload, error)

	// Set stores an upload until its ExpiresAt.
	Set(ctx context.Context, u *Upload) error

	// Delete removes an upload. Deleting a missing upload is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired uploads (may be a no-op where the backend
	// expires entries itself).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ValidateID checks that id has the form issued by New.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
