package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/storefront-go/storefront/internal/domain"
	"github.com/storefront-go/storefront/internal/products"
	apperrors "github.com/storefront-go/storefront/pkg/errors"
	"github.com/storefront-go/storefront/pkg/httputil"
)

// ProductsHandler serves the synchronized product list, the best-sellers
// view, and the wishlist toggle.
type ProductsHandler struct {
	sync        *products.Synchronizer
	bestSellers *products.BestSellers
	logger      *slog.Logger
}

// NewProductsHandler creates a new products HTTP handler.
func NewProductsHandler(sync *products.Synchronizer, bestSellers *products.BestSellers, logger *slog.Logger) *ProductsHandler {
	return &ProductsHandler{
		sync:        sync,
		bestSellers: bestSellers,
		logger:      logger,
	}
}

// List handles GET /api/v1/products
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.productsSnapshot(r)})
}

// BestSellers handles GET /api/v1/products/best-sellers
func (h *ProductsHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	snap := h.bestSellers.Snapshot()
	if snap.Loading {
		// First access: load the view before answering.
		_ = h.bestSellers.Refresh(r.Context())
		snap = h.bestSellers.Snapshot()
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// Wishlist handles GET /api/v1/wishlist
func (h *ProductsHandler) Wishlist(w http.ResponseWriter, r *http.Request) {
	snap := h.productsSnapshot(r)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: domain.Wishlisted(snap.Products),
	})
}

// productsSnapshot returns the synchronized state, running the first sync
// lazily when nothing has populated it yet (e.g. sync-on-start disabled).
func (h *ProductsHandler) productsSnapshot(r *http.Request) products.State {
	snap := h.sync.Snapshot()
	if snap.Loading {
		_, _ = h.sync.Sync(r.Context())
		snap = h.sync.Snapshot()
	}
	return snap
}

// ToggleWishlist handles POST /api/v1/products/{productID}/wishlist
func (h *ProductsHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("productID must be an integer"), h.logger)
		return
	}

	if err := h.sync.ToggleWishlist(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
