package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Valid upload categories (logical buckets, one directory each).
var validCategories = map[string]bool{
	"vehicles":  true,
	"documents": true,
	"penalties": true,
	"expenses":  true,
}

// Store is a local-filesystem blob store. Files are named by a fresh UUID
// (original name only contributes the extension) and grouped under one
// directory per category. Writes go to a temp file first and are renamed
// into place so a partially-written blob is never observable.
type Store struct {
	Root string
}

// NewStore creates the root directory if needed.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("blob: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}
	return &Store{Root: root}, nil
}

// ValidCategory reports whether category is a known bucket name.
func ValidCategory(category string) bool {
	return validCategories[category]
}

// Save writes content and returns the stable relative path
// ("<category>/<uuid><ext>") to persist on the owning entity.
func (s *Store) Save(content []byte, category, originalName string) (string, error) {
	if !ValidCategory(category) {
		return "", fmt.Errorf("blob: unknown category %q", category)
	}
	dir := filepath.Join(s.Root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("blob: create category dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext
	rel := filepath.ToSlash(filepath.Join(category, name))
	final := filepath.Join(dir, name)
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return "", fmt.Errorf("blob: write temp: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("blob: rename: %w", err)
	}
	return rel, nil
}

// Delete removes a stored blob. Missing files are not an error.
func (s *Store) Delete(path string) error {
	abs, err := s.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob: delete: %w", err)
	}
	return nil
}

// Exists reports whether a stored blob is present.
func (s *Store) Exists(path string) (bool, error) {
	abs, err := s.abs(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Open returns the absolute path for serving a stored blob.
func (s *Store) Open(path string) (string, error) {
	return s.abs(path)
}

// abs resolves a stored path and rejects traversal outside the root.
func (s *Store) abs(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("blob: invalid path %q", path)
	}
	return filepath.Join(s.Root, clean), nil
}
