package file

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	s, err := New(path, newTestLogger())
	require.NoError(t, err)
	return s, path
}

func TestLoad_MissingFileIsEmptyList(t *testing.T) {
	s, _ := newTestStore(t)

	products, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	in := []domain.Product{
		{ID: 1, Title: "Backpack", Price: 109.95, IsWishlisted: true},
		{ID: 2, Title: "T-Shirt", Price: 22.3},
	}

	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSave_OverwritesInFull(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []domain.Product{{ID: 1}, {ID: 2}, {ID: 3}}))
	require.NoError(t, s.Save(ctx, []domain.Product{{ID: 7}}))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(7), out[0].ID)
}

func TestLoad_CorruptFileIsEmptyList(t *testing.T) {
	s, path := newTestStore(t)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	products, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	s, path := newTestStore(t)

	require.NoError(t, s.Save(context.Background(), []domain.Product{{ID: 1}}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
