package products

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/domain"
	"github.com/storefront-go/storefront/internal/notify"
	"github.com/storefront-go/storefront/internal/store"
	apperrors "github.com/storefront-go/storefront/pkg/errors"
)

// CatalogLister fetches the full product list from the remote catalog.
type CatalogLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// State is the published view of the synchronizer: the current merged product
// list plus loading/error flags, mirroring what a product listing consumer
// needs to render.
type State struct {
	Products []domain.Product `json:"products"`
	Loading  bool             `json:"loading"`
	Err      string           `json:"error,omitempty"`
}

// Synchronizer produces the authoritative, wishlist-annotated product list.
// It merges fresh catalog data with persisted wishlist flags on every Sync,
// writes the merge back to the store, and re-runs whenever the wishlist
// notifier signals a change.
//
// Concurrent Sync calls are not sequenced: the last fetch to complete wins on
// both the store and the published state.
type Synchronizer struct {
	catalog  CatalogLister
	store    store.Store
	notifier *notify.Broadcaster
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewSynchronizer creates a synchronizer. The published state starts in
// loading mode until the first Sync completes.
func NewSynchronizer(cat CatalogLister, st store.Store, notifier *notify.Broadcaster, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		catalog:  cat,
		store:    st,
		notifier: notifier,
		logger:   logger,
		state:    State{Products: []domain.Product{}, Loading: true},
	}
}

// Snapshot returns a copy of the current published state.
func (s *Synchronizer) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	out.Products = make([]domain.Product, len(s.state.Products))
	copy(out.Products, s.state.Products)
	return out
}

// Sync fetches the catalog, merges persisted wishlist flags onto the fresh
// list, persists the merge in full, and publishes it. On fetch failure the
// error state is published instead and no partial list is written anywhere.
func (s *Synchronizer) Sync(ctx context.Context) ([]domain.Product, error) {
	fresh, err := s.catalog.List(ctx)
	if err != nil {
		syncTotal.WithLabelValues("products", "failure").Inc()
		s.logger.ErrorContext(ctx, "catalog fetch failed",
			slog.String("error", err.Error()),
		)
		s.publish(State{Products: []domain.Product{}, Loading: false, Err: userMessage(err)})
		return nil, err
	}

	saved, err := s.store.Load(ctx)
	if err != nil {
		// Unreadable persisted state degrades to "no wishlisted items".
		s.logger.WarnContext(ctx, "product store unreadable, merging against empty list",
			slog.String("error", err.Error()),
		)
		saved = []domain.Product{}
	}

	merged := domain.MergeWishlist(fresh, saved)

	// Overwrite the store in full so subsequent toggles and re-merges see a
	// consistent baseline. Persisting is best-effort: the merged list is
	// still published if the write fails.
	if err := s.store.Save(ctx, merged); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist merged products",
			slog.String("error", err.Error()),
		)
	}

	s.publish(State{Products: merged, Loading: false})
	syncTotal.WithLabelValues("products", "success").Inc()

	s.logger.InfoContext(ctx, "products synchronized",
		slog.Int("count", len(merged)),
	)

	return merged, nil
}

// ToggleWishlist flips one product's wishlist flag and propagates the change.
// This is the sole mutation path for the flag: it rewrites the persisted list,
// updates the published state optimistically, and notifies subscribers exactly
// once. An unknown id is a no-op with a logged warning.
func (s *Synchronizer) ToggleWishlist(ctx context.Context, productID int64) error {
	saved, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "product store unreadable during toggle",
			slog.String("error", err.Error()),
		)
		saved = []domain.Product{}
	}

	idx := -1
	for i := range saved {
		if saved[i].ID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.logger.WarnContext(ctx, "wishlist toggle for unknown product",
			slog.Int64("product_id", productID),
		)
		return nil
	}

	saved[idx].IsWishlisted = !saved[idx].IsWishlisted
	flag := saved[idx].IsWishlisted

	// Commit locally first so consumers see the change without waiting for a
	// re-fetch, then persist best-effort.
	s.mu.Lock()
	for i := range s.state.Products {
		if s.state.Products[i].ID == productID {
			s.state.Products[i].IsWishlisted = flag
			break
		}
	}
	s.mu.Unlock()

	if err := s.store.Save(ctx, saved); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist wishlist toggle",
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	version := s.notifier.Notify()
	wishlistToggles.Inc()

	s.logger.InfoContext(ctx, "wishlist toggled",
		slog.Int64("product_id", productID),
		slog.Bool("wishlisted", flag),
		slog.Uint64("version", version),
	)

	return nil
}

// Run re-synchronizes whenever the notifier's version advances past the
// last-seen one. It blocks until the context is canceled.
func (s *Synchronizer) Run(ctx context.Context) error {
	sub := s.notifier.Subscribe()
	defer sub.Close()

	lastSeen := s.notifier.Version()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v := <-sub.C():
			if v <= lastSeen {
				continue
			}
			lastSeen = v
			if _, err := s.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "re-sync after wishlist change failed",
					slog.Uint64("version", v),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// publish replaces the published state.
func (s *Synchronizer) publish(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// userMessage extracts the user-facing message from a catalog error.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return catalog.FetchErrorMessage
}
