package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"github.com/qalakaar/gigboard/internal/domain"
)

// filePermissions applies to slot files and their temp files.
const filePermissions = 0o600

// validKey restricts slot keys to names that are safe as file names.
var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// fileSlot stores each key as <dir>/<key>.json.
type fileSlot struct {
	dir string
}

// NewFileSlot constructs a Slot that keeps one JSON file per key under dir.
// The directory is created on first write if it does not exist.
func NewFileSlot(dir string) Slot {
	return &fileSlot{dir: dir}
}

func (s *fileSlot) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid slot key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get reads the file for key.
func (s *fileSlot) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, fmt.Errorf("repo.fileSlot.Get: %w", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("repo.fileSlot.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.fileSlot.Get: %w", err)
	}
	return data, nil
}

// Put writes value to a uniquely named temp file in the same directory and
// renames it over the target, so a crash mid-write leaves the old value intact.
func (s *fileSlot) Put(_ context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("repo.fileSlot.Put: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("repo.fileSlot.Put: mkdir: %w", err)
	}

	tmp := p + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, value, filePermissions); err != nil {
		return fmt.Errorf("repo.fileSlot.Put: write: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("repo.fileSlot.Put: rename: %w", err)
	}
	return nil
}
