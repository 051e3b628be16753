// Package storage holds uploaded profile images. The filesystem is
// abstracted behind afero: the server mounts a base-path OS filesystem,
// tests use an in-memory one.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// allowedExtensions limits avatar uploads to common image formats.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// AvatarStore saves and serves student profile images.
type AvatarStore struct {
	fs afero.Fs
}

// NewAvatarStore creates a store over the given filesystem.
func NewAvatarStore(fs afero.Fs) *AvatarStore {
	return &AvatarStore{fs: fs}
}

// NewOSAvatarStore creates a store rooted at dir on the real filesystem.
func NewOSAvatarStore(dir string) *AvatarStore {
	return NewAvatarStore(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// Save writes an uploaded image and returns the generated filename. The
// original name only contributes its extension; the stored name is random to
// avoid collisions and traversal tricks.
func (s *AvatarStore) Save(_ context.Context, originalName string, reader io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := uuid.NewString() + ext
	f, err := s.fs.Create(name)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	return name, nil
}

// Get opens a stored image for reading.
func (s *AvatarStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	return s.fs.OpenFile(filepath.Base(name), os.O_RDONLY, 0)
}

// Delete removes a stored image. Missing files are not an error; the record
// may carry an emoji instead of a filename.
func (s *AvatarStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(filepath.Base(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
