package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Field identifies an upload slot with its own allow-list and size ceiling.
type Field string

const (
	FieldImage Field = "image"
	FieldProof Field = "proof"
)

type fieldPolicy struct {
	extensions map[string]bool
	maxBytes   int64
	subdir     string
}

// LocalStore writes uploads to a directory tree on local disk and hands back
// stable relative paths for persistence.
type LocalStore struct {
	root     string
	policies map[Field]fieldPolicy
}

// NewLocalStore creates the upload directories under root.
func NewLocalStore(root string, maxImageBytes, maxProofBytes int64) (*LocalStore, error) {
	s := &LocalStore{
		root: root,
		policies: map[Field]fieldPolicy{
			FieldImage: {
				extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true},
				maxBytes:   maxImageBytes,
				subdir:     "images",
			},
			FieldProof: {
				extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".pdf": true},
				maxBytes:   maxProofBytes,
				subdir:     "proofs",
			},
		},
	}

	for _, p := range s.policies {
		if err := os.MkdirAll(filepath.Join(root, p.subdir), 0o755); err != nil {
			return nil, fmt.Errorf("creating upload directory: %w", err)
		}
	}
	return s, nil
}

// Root returns the storage root directory.
func (s *LocalStore) Root() string { return s.root }

// Save validates and writes one multipart file, returning its relative path.
func (s *LocalStore) Save(field Field, file *multipart.FileHeader) (string, error) {
	policy, ok := s.policies[field]
	if !ok {
		return "", fmt.Errorf("unknown upload field %q", field)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !policy.extensions[ext] {
		return "", &InvalidFileError{Field: string(field), Extension: ext}
	}
	if file.Size > policy.maxBytes {
		return "", &FileTooLargeError{Field: string(field), MaxBytes: policy.maxBytes}
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	relPath := filepath.ToSlash(filepath.Join(policy.subdir, uuid.NewString()+ext))
	dst, err := os.Create(filepath.Join(s.root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return relPath, nil
}

// Remove deletes a previously saved file. Callers use it to roll back writes
// when the surrounding request fails validation after the file landed.
func (s *LocalStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("refusing to remove path outside storage root: %s", relPath)
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// InvalidFileError reports a disallowed extension for an upload field.
type InvalidFileError struct {
	Field     string
	Extension string
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("file type %q is not allowed for field %q", e.Extension, e.Field)
}

// FileTooLargeError reports an upload over the field's size ceiling.
type FileTooLargeError struct {
	Field    string
	MaxBytes int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file exceeds the %d MB limit for field %q", e.MaxBytes>>20, e.Field)
}
