// Package store defines the local persistence store for the merged product
// list. It is the durable source of wishlist flags: the synchronizer writes
// the full merged list after every fetch and the toggle operation rewrites it
// after every flag change.
package store

import (
	"context"

	"github.com/storefront-go/storefront/internal/domain"
)

// Store is a key-value style byte store holding the last-known merged product
// list under a single logical "products" key.
//
// Load degrades gracefully: an absent or unparseable value yields an empty
// list and a nil error, never a failure the caller has to handle. Corruption
// is logged by the implementation and the store behaves as if empty.
type Store interface {
	// Load returns the persisted product list, or an empty list if nothing
	// usable is persisted.
	Load(ctx context.Context) ([]domain.Product, error)

	// Save overwrites the persisted product list in full.
	Save(ctx context.Context, products []domain.Product) error
}
