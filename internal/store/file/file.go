// Package file implements the default store backend: a single JSON file on
// disk, the server-side analog of the browser's localStorage entry.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/storefront-go/storefront/internal/domain"
)

// Store persists the product list as a JSON array in a single file.
// Saves are atomic: the list is written to a temp file and renamed over the
// target, so a crashed write never leaves a half-written list behind.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a file-backed store at the given path. The parent directory is
// created if it does not exist.
func New(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

// Load reads the persisted product list. A missing file or unparseable
// content degrades to an empty list with a logged warning.
func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Product{}, nil
		}
		s.logger.WarnContext(ctx, "product store unreadable, treating as empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		s.logger.WarnContext(ctx, "product store corrupt, treating as empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return []domain.Product{}, nil
	}

	return products, nil
}

// Save overwrites the persisted product list in full.
func (s *Store) Save(ctx context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write product store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace product store: %w", err)
	}

	return nil
}
