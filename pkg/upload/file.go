package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/surveyplot/pkg/observability"
)

const backendFile = "file"

// FileStore is a file-based upload store. Uploads are stored as JSON files
// named after their ID.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based upload store.
// If baseDir is empty, defaults to the user cache directory
// (~/.cache/surveyplot/uploads on Linux).
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
		baseDir = filepath.Join(dir, "surveyplot", "uploads")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) uploadPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*Upload, error) {
	if err := ValidateID(id); err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	u, err := s.read(s.uploadPath(id))
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if u == nil || u.IsExpired() {
		if u != nil {
			_ = s.Delete(ctx, id)
		}
		observability.Upload().OnUploadMiss(ctx, backendFile)
		return nil, ErrNotFound
	}
	observability.Upload().OnUploadHit(ctx, backendFile)
	return u, nil
}

// read returns nil, nil for a missing file.
func (s *FileStore) read(path string) (*Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read upload file: %w", err)
	}

	var u Upload
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("parse upload: %w", err)
	}
	return &u, nil
}

func (s *FileStore) Set(ctx context.Context, u *Upload) error {
	if err := ValidateID(u.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal upload: %w", err)
	}

	if err := writeFile(s.uploadPath(u.ID), data); err != nil {
		return fmt.Errorf("write upload file: %w", err)
	}
	observability.Upload().OnUploadStore(ctx, backendFile, len(u.Data))
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.uploadPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read upload dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		switch filepath.Ext(entry.Name()) {
		case tmpExt:
			// Left behind by an interrupted Set; Set holds the lock, so
			// none is in flight.
			os.Remove(path)
			continue
		case ".json":
		default:
			continue
		}
		u, err := s.read(path)
		if err != nil {
			// Unreadable entries are dropped with the expired ones.
			os.Remove(path)
			continue
		}
		if u != nil && u.IsExpired() {
			os.Remove(path)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

const tmpExt = ".tmp"

// writeFile writes data to a temporary file in the same directory and
// renames it over path. Readers see either the old upload or the new one.
func writeFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+tmpExt)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Path returns the base directory for upload files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
