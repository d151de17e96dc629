package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxFileSize = 10 * 1024 * 1024 // 10 MB
	URLBase     = "/uploads"
)

var (
	ErrInvalidMediaType = errors.New("file extension is not allowed")
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
)

// allowedExtensions is the fixed image allow-list, matched case-insensitively.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Store writes uploaded images to a single flat directory and serves them
// under URLBase. Filenames are generated, never derived from user input.
type Store struct {
	dir string
}

// NewStore creates the upload root eagerly if missing.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save stores the upload and returns its public path ("/uploads/<name>").
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size == 0 {
		return "", ErrEmptyFile
	}
	if fh.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", ErrInvalidMediaType
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	filename := uuid.New().String() + ext
	absPath := filepath.Join(s.dir, filename)

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return URLBase + "/" + filename, nil
}

// Delete removes the file backing a public path. Absence is not an error.
func (s *Store) Delete(path string) error {
	if path == "" {
		return nil
	}
	absPath := s.FilePath(path)
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FilePath resolves a public path to its location under the upload root.
// Only the basename is used, so stored paths cannot escape the directory.
func (s *Store) FilePath(path string) string {
	return filepath.Join(s.dir, filepath.Base(path))
}
