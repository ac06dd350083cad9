package products

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/domain"
	"github.com/storefront-go/storefront/internal/notify"
	"github.com/storefront-go/storefront/internal/store/memory"
	apperrors "github.com/storefront-go/storefront/pkg/errors"
)

// --- Mock catalog ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

// --- Test helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func catalogProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Backpack", Price: 109.95, Category: "men's clothing", Image: "https://example.com/1.jpg"},
		{ID: 2, Title: "T-Shirt", Price: 22.3, Category: "men's clothing", Image: "https://example.com/2.jpg"},
		{ID: 3, Title: "Jacket", Price: 55.99, Category: "men's clothing", Image: "https://example.com/3.jpg"},
	}
}

func newTestSynchronizer(cat *mockCatalog) (*Synchronizer, *memory.Store, *notify.Broadcaster) {
	st := memory.New()
	notifier := notify.New()
	return NewSynchronizer(cat, st, notifier, newTestLogger()), st, notifier
}

// --- Tests ---

func TestSync_EmptyStoreDefaultsFlagsToFalse(t *testing.T) {
	cat := new(mockCatalog)
	s, _, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	cat.On("List", ctx).Return(catalogProducts(), nil)

	merged, err := s.Sync(ctx)

	require.NoError(t, err)
	require.Len(t, merged, 3)
	for _, p := range merged {
		assert.False(t, p.IsWishlisted)
	}

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
	assert.Equal(t, merged, snap.Products)

	cat.AssertExpectations(t)
}

func TestSync_CarriesPersistedFlags(t *testing.T) {
	cat := new(mockCatalog)
	s, st, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	saved := catalogProducts()
	saved[0].IsWishlisted = true
	require.NoError(t, st.Save(ctx, saved))

	cat.On("List", ctx).Return(catalogProducts(), nil)

	merged, err := s.Sync(ctx)

	require.NoError(t, err)
	assert.True(t, merged[0].IsWishlisted)
	assert.False(t, merged[1].IsWishlisted)
	assert.False(t, merged[2].IsWishlisted)
}

func TestSync_WritesMergeBackToStore(t *testing.T) {
	cat := new(mockCatalog)
	s, st, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, []domain.Product{{ID: 2, IsWishlisted: true}}))

	cat.On("List", ctx).Return(catalogProducts(), nil)

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	persisted, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 3)
	assert.Equal(t, "T-Shirt", persisted[1].Title)
	assert.True(t, persisted[1].IsWishlisted)
}

func TestSync_Idempotent(t *testing.T) {
	cat := new(mockCatalog)
	s, st, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, []domain.Product{{ID: 1, IsWishlisted: true}}))

	cat.On("List", ctx).Return(catalogProducts(), nil)

	first, err := s.Sync(ctx)
	require.NoError(t, err)
	second, err := s.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSync_FetchFailurePublishesErrorState(t *testing.T) {
	cat := new(mockCatalog)
	s, _, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	cat.On("List", ctx).Return(nil, apperrors.Unavailable(catalog.FetchErrorMessage, assert.AnError))

	merged, err := s.Sync(ctx)

	require.Error(t, err)
	assert.Nil(t, merged)

	snap := s.Snapshot()
	assert.Equal(t, "Failed to fetch products", snap.Err)
	assert.Empty(t, snap.Products)
	assert.False(t, snap.Loading)
}

func TestSync_FetchFailureLeavesStoreUntouched(t *testing.T) {
	cat := new(mockCatalog)
	s, st, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, []domain.Product{{ID: 1, IsWishlisted: true}}))

	cat.On("List", ctx).Return(nil, apperrors.Unavailable(catalog.FetchErrorMessage, assert.AnError))

	_, err := s.Sync(ctx)
	require.Error(t, err)

	persisted, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.True(t, persisted[0].IsWishlisted)
}

func TestToggleWishlist_RoundTrip(t *testing.T) {
	cat := new(mockCatalog)
	s, _, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	cat.On("List", ctx).Return(catalogProducts(), nil)

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ToggleWishlist(ctx, 1))

	// Optimistic in-memory update is visible immediately.
	snap := s.Snapshot()
	assert.True(t, snap.Products[0].IsWishlisted)

	// Re-synchronizing converges to the same flag value.
	merged, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, merged[0].IsWishlisted)
	assert.False(t, merged[1].IsWishlisted)
	assert.False(t, merged[2].IsWishlisted)
}

func TestToggleWishlist_TwiceRestoresOriginal(t *testing.T) {
	cat := new(mockCatalog)
	s, _, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	cat.On("List", ctx).Return(catalogProducts(), nil)

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ToggleWishlist(ctx, 2))
	require.NoError(t, s.ToggleWishlist(ctx, 2))

	merged, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, merged[1].IsWishlisted)
}

func TestToggleWishlist_NotifiesExactlyOnce(t *testing.T) {
	cat := new(mockCatalog)
	s, _, notifier := newTestSynchronizer(cat)
	ctx := context.Background()

	cat.On("List", ctx).Return(catalogProducts(), nil)

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	before := notifier.Version()
	require.NoError(t, s.ToggleWishlist(ctx, 1))

	assert.Equal(t, before+1, notifier.Version())
}

func TestToggleWishlist_UnknownIDIsNoOp(t *testing.T) {
	cat := new(mockCatalog)
	s, st, notifier := newTestSynchronizer(cat)
	ctx := context.Background()

	cat.On("List", ctx).Return(catalogProducts(), nil)

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	before := notifier.Version()
	require.NoError(t, s.ToggleWishlist(ctx, 999))

	// Nothing changed, nothing signaled.
	assert.Equal(t, before, notifier.Version())
	persisted, err := st.Load(ctx)
	require.NoError(t, err)
	for _, p := range persisted {
		assert.False(t, p.IsWishlisted)
	}
}

func TestRun_ResyncsOnNotify(t *testing.T) {
	cat := new(mockCatalog)
	s, _, notifier := newTestSynchronizer(cat)

	cat.On("List", mock.Anything).Return(catalogProducts(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	notifier.Notify()

	// Wait for the loop to pick up the change and publish a fresh state.
	assert.Eventually(t, func() bool {
		snap := s.Snapshot()
		return !snap.Loading && len(snap.Products) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestSnapshot_ReturnsACopy(t *testing.T) {
	cat := new(mockCatalog)
	s, _, _ := newTestSynchronizer(cat)
	ctx := context.Background()

	cat.On("List", ctx).Return(catalogProducts(), nil)

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Products[0].Title = "mutated"

	assert.Equal(t, "Backpack", s.Snapshot().Products[0].Title)
}
