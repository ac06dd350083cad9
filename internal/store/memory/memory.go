// Package memory implements an in-process store backend, used by tests and
// by ephemeral mode where wishlist flags do not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/storefront-go/storefront/internal/domain"
)

// Store holds the product list in memory behind a mutex.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{products: []domain.Product{}}
}

// Load returns a copy of the stored product list.
func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// Save overwrites the stored product list with a copy of the given one.
func (s *Store) Save(ctx context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make([]domain.Product, len(products))
	copy(s.products, products)
	return nil
}
