// Package cart implements the in-memory cart aggregator. Cart state lives
// only for the lifetime of the owning process and is never persisted.
package cart

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storefront-go/storefront/internal/domain"
	"github.com/storefront-go/storefront/internal/notify"
)

var cartOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Total number of cart operations",
	},
	[]string{"op"},
)

// Aggregator maintains the set of products the user intends to purchase,
// with per-product quantities. Entries are keyed uniquely by product id;
// the aggregator never holds two entries for the same id.
type Aggregator struct {
	logger  *slog.Logger
	changes *notify.Broadcaster

	mu      sync.Mutex
	entries []domain.CartEntry
}

// New creates an empty cart aggregator.
func New(logger *slog.Logger) *Aggregator {
	return &Aggregator{
		logger:  logger,
		changes: notify.New(),
		entries: []domain.CartEntry{},
	}
}

// Add inserts the product with quantity 1, or increments the existing
// entry's quantity by 1. It always succeeds.
func (a *Aggregator) Add(product domain.Product) {
	a.mu.Lock()
	if i := domain.FindCartIndex(a.entries, product.ID); i >= 0 {
		a.entries[i].Quantity++
	} else {
		a.entries = append(a.entries, domain.CartEntry{Product: product, Quantity: 1})
	}
	a.mu.Unlock()

	cartOperations.WithLabelValues("add").Inc()
	a.changes.Notify()

	a.logger.Debug("item added to cart",
		slog.Int64("product_id", product.ID),
	)
}

// Remove deletes the entry with the given product id. Absent ids are a no-op.
func (a *Aggregator) Remove(productID int64) {
	a.mu.Lock()
	if i := domain.FindCartIndex(a.entries, productID); i >= 0 {
		a.entries = append(a.entries[:i], a.entries[i+1:]...)
	}
	a.mu.Unlock()

	cartOperations.WithLabelValues("remove").Inc()
	a.changes.Notify()
}

// UpdateQuantity sets the entry's quantity. A quantity below 1 behaves
// identically to Remove. Absent ids are a no-op; no entry is created.
func (a *Aggregator) UpdateQuantity(productID int64, quantity int) {
	if quantity < 1 {
		a.Remove(productID)
		return
	}

	a.mu.Lock()
	if i := domain.FindCartIndex(a.entries, productID); i >= 0 {
		a.entries[i].Quantity = quantity
	}
	a.mu.Unlock()

	cartOperations.WithLabelValues("update_quantity").Inc()
	a.changes.Notify()
}

// Clear removes all entries.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	a.entries = []domain.CartEntry{}
	a.mu.Unlock()

	cartOperations.WithLabelValues("clear").Inc()
	a.changes.Notify()
}

// Items returns a snapshot copy of the current entries.
func (a *Aggregator) Items() []domain.CartEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.CartEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Total returns the sum of price*quantity over all entries. Plain
// floating-point accumulation; display rounding happens at the boundary.
func (a *Aggregator) Total() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return domain.CartTotal(a.entries)
}

// ItemCount returns the total number of units in the cart.
func (a *Aggregator) ItemCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return domain.CartItemCount(a.entries)
}

// Subscribe registers for change notifications on this aggregator instance.
// Every state-changing operation advances the returned subscription's version.
func (a *Aggregator) Subscribe() *notify.Subscription {
	return a.changes.Subscribe()
}
