package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/domain"
	"github.com/storefront-go/storefront/internal/notify"
	"github.com/storefront-go/storefront/internal/products"
	"github.com/storefront-go/storefront/internal/store/memory"
)

// stubCatalog serves a fixed product list for both the full listing and the
// limited best-sellers fetch.
type stubCatalog struct {
	products []domain.Product
	err      error
}

func (s *stubCatalog) List(ctx context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalog) ListLimit(ctx context.Context, n int) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if n > len(s.products) {
		n = len(s.products)
	}
	return s.products[:n], nil
}

func testProduct(id int64, price float64) domain.Product {
	return domain.Product{ID: id, Title: "Product", Price: price}
}

func newProductsRouter(t *testing.T, cat *stubCatalog) (http.Handler, *products.Synchronizer) {
	t.Helper()

	st := memory.New()
	notifier := notify.New()
	sync := products.NewSynchronizer(cat, st, notifier, newTestLogger())
	bestSellers := products.NewBestSellers(cat, st, notifier, 3, newTestLogger())
	h := NewProductsHandler(sync, bestSellers, newTestLogger())

	r := chi.NewRouter()
	r.Get("/api/v1/products", h.List)
	r.Get("/api/v1/products/best-sellers", h.BestSellers)
	r.Post("/api/v1/products/{productID}/wishlist", h.ToggleWishlist)
	r.Get("/api/v1/wishlist", h.Wishlist)
	return r, sync
}

func decodeState(t *testing.T, data []byte) products.State {
	t.Helper()
	var envelope struct {
		Data products.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))
	return envelope.Data
}

func TestListProducts(t *testing.T) {
	cat := &stubCatalog{products: []domain.Product{testProduct(1, 10), testProduct(2, 20)}}
	router, sync := newProductsRouter(t, cat)

	_, err := sync.Sync(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec.Body.Bytes())
	assert.False(t, state.Loading)
	assert.Len(t, state.Products, 2)
}

func TestListProducts_FirstAccessTriggersSync(t *testing.T) {
	cat := &stubCatalog{products: []domain.Product{testProduct(1, 10)}}
	router, _ := newProductsRouter(t, cat)

	// No explicit Sync; the first request must populate the snapshot itself.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec.Body.Bytes())
	assert.False(t, state.Loading)
	assert.Len(t, state.Products, 1)
}

func TestBestSellersEndpoint(t *testing.T) {
	cat := &stubCatalog{products: []domain.Product{
		testProduct(1, 10), testProduct(2, 20), testProduct(3, 30), testProduct(4, 40),
	}}
	router, _ := newProductsRouter(t, cat)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/best-sellers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec.Body.Bytes())
	assert.False(t, state.Loading)
	assert.Len(t, state.Products, 3)
}

func TestToggleWishlist(t *testing.T) {
	cat := &stubCatalog{products: []domain.Product{testProduct(1, 10)}}
	router, sync := newProductsRouter(t, cat)

	_, err := sync.Sync(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products/1/wishlist", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []domain.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, int64(1), envelope.Data[0].ID)
	assert.True(t, envelope.Data[0].IsWishlisted)
}

func TestToggleWishlist_BadID(t *testing.T) {
	router, _ := newProductsRouter(t, &stubCatalog{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products/abc/wishlist", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlist_EmptyWhenNothingToggled(t *testing.T) {
	cat := &stubCatalog{products: []domain.Product{testProduct(1, 10)}}
	router, sync := newProductsRouter(t, cat)

	_, err := sync.Sync(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []domain.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
}
