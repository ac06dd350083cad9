package products

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/storefront-go/storefront/internal/domain"
	"github.com/storefront-go/storefront/internal/notify"
	"github.com/storefront-go/storefront/internal/store"
)

// BestSellersErrorMessage is the fixed user-facing message published when the
// best-sellers view cannot load.
const BestSellersErrorMessage = "Failed to load best sellers."

// DefaultBestSellerLimit is how many products the best-sellers view shows.
const DefaultBestSellerLimit = 3

// CatalogLimitLister fetches a bounded product list from the remote catalog.
type CatalogLimitLister interface {
	ListLimit(ctx context.Context, n int) ([]domain.Product, error)
}

// BestSellers is the home-page view of the top catalog products. It shares
// the catalog client and persistence store with the synchronizer but publishes
// its own state and its own fixed error message. Wishlist flags are merged
// from the store on every Refresh; the view itself never writes the store,
// that stays the synchronizer's job.
type BestSellers struct {
	catalog  CatalogLimitLister
	store    store.Store
	notifier *notify.Broadcaster
	limit    int
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewBestSellers creates the best-sellers view with the given item limit.
func NewBestSellers(cat CatalogLimitLister, st store.Store, notifier *notify.Broadcaster, limit int, logger *slog.Logger) *BestSellers {
	if limit <= 0 {
		limit = DefaultBestSellerLimit
	}
	return &BestSellers{
		catalog:  cat,
		store:    st,
		notifier: notifier,
		limit:    limit,
		logger:   logger,
		state:    State{Products: []domain.Product{}, Loading: true},
	}
}

// Snapshot returns a copy of the current published state.
func (b *BestSellers) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.state
	out.Products = make([]domain.Product, len(b.state.Products))
	copy(out.Products, b.state.Products)
	return out
}

// Refresh fetches the top products, merges persisted wishlist flags onto them,
// and publishes the result. On fetch failure the fixed error message is
// published and the list is cleared.
func (b *BestSellers) Refresh(ctx context.Context) error {
	fresh, err := b.catalog.ListLimit(ctx, b.limit)
	if err != nil {
		syncTotal.WithLabelValues("best_sellers", "failure").Inc()
		b.logger.ErrorContext(ctx, "best sellers fetch failed",
			slog.String("error", err.Error()),
		)
		b.mu.Lock()
		b.state = State{Products: []domain.Product{}, Loading: false, Err: BestSellersErrorMessage}
		b.mu.Unlock()
		return err
	}

	saved, err := b.store.Load(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "product store unreadable, merging against empty list",
			slog.String("error", err.Error()),
		)
		saved = []domain.Product{}
	}

	b.mu.Lock()
	b.state = State{Products: domain.MergeWishlist(fresh, saved), Loading: false}
	b.mu.Unlock()
	syncTotal.WithLabelValues("best_sellers", "success").Inc()

	return nil
}

// Run re-refreshes whenever the notifier's version advances past the last-seen
// one, so toggled wishlist flags show up on the home page without a reload.
// It blocks until the context is canceled.
func (b *BestSellers) Run(ctx context.Context) error {
	sub := b.notifier.Subscribe()
	defer sub.Close()

	lastSeen := b.notifier.Version()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v := <-sub.C():
			if v <= lastSeen {
				continue
			}
			lastSeen = v
			if err := b.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
				b.logger.WarnContext(ctx, "best sellers refresh after wishlist change failed",
					slog.Uint64("version", v),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
