// Package redis implements an optional shared store backend, for running the
// storefront state behind a Redis instance instead of a local file.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/storefront-go/storefront/internal/domain"
)

const productsKey = "storefront:products"

// Store persists the product list as a JSON blob under a single Redis key.
type Store struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a Redis-backed store.
func New(client *redis.Client, logger *slog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// Load reads the persisted product list. A missing key or unparseable blob
// degrades to an empty list with a logged warning; transport errors are
// returned to the caller.
func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	data, err := s.client.Get(ctx, productsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []domain.Product{}, nil
		}
		return nil, fmt.Errorf("redis get products: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		s.logger.WarnContext(ctx, "product store corrupt, treating as empty",
			slog.String("key", productsKey),
			slog.String("error", err.Error()),
		)
		return []domain.Product{}, nil
	}

	return products, nil
}

// Save overwrites the persisted product list in full. No TTL: wishlist flags
// are durable until the next overwrite.
func (s *Store) Save(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}

	if err := s.client.Set(ctx, productsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set products: %w", err)
	}

	return nil
}
