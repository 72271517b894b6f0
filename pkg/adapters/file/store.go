package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

const ext = ".json"

// Store implements ports.DocumentStore using the local filesystem.
// It stores each page as a JSON file in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".arbor/pages".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".arbor", "pages")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(pageID string) (string, error) {
	if pageID == "" {
		return "", fmt.Errorf("%w: page id cannot be empty", domain.ErrInvalidPageID)
	}
	if filepath.Base(pageID) != pageID || strings.HasPrefix(pageID, ".") {
		return "", fmt.Errorf("%w: %q cannot be used as a file name", domain.ErrInvalidPageID, pageID)
	}
	return filepath.Join(s.BasePath, pageID+ext), nil
}

// Save persists the page document to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, pageID string, doc *domain.Document) error {
	destPath, err := s.path(pageID)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure page directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	// 1. Create Temp File in the same directory (atomic rename needs the same filesystem)
	tmpFile, err := os.CreateTemp(s.BasePath, "."+pageID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	// 2. Write Data
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	// 3. Fsync to ensure durability
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// 4. Close File (cannot rename open file on Windows)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// 5. Rename. On Windows os.Rename fails if dest exists, so remove it first.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing page file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to page file: %w", err)
	}
	return nil
}

// Load retrieves the page document from its JSON file.
func (s *Store) Load(ctx context.Context, pageID string) (*domain.Document, error) {
	filePath, err := s.path(pageID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read page file: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page document: %w", err)
	}
	return &doc, nil
}

// Delete removes the page file.
func (s *Store) Delete(ctx context.Context, pageID string) error {
	filePath, err := s.path(pageID)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete page file: %w", err)
	}
	return nil
}

// List returns all stored page IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	pages := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ext {
			continue
		}
		pages = append(pages, strings.TrimSuffix(name, ext))
	}
	sort.Strings(pages)
	return pages, nil
}
