package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisight/plantmap-cli/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := openTestCache(t)

	records := []model.PlantRecord{
		{ImageName: "a.jpg", ImageURL: "https://cdn/a.jpg", Latitude: 12.9, Longitude: 77.6, Timestamp: "2026-08-30T10:00:00Z"},
		{ImageName: "b.jpg", ImageURL: "https://cdn/b.jpg", Latitude: -33.86, Longitude: 151.2},
		{ImageName: "c.jpg", ImageURL: "https://cdn/c.jpg", Latitude: 0, Longitude: 0},
	}
	require.NoError(t, c.SaveSnapshot(ctx, records))

	got := c.LoadSnapshot(ctx)
	assert.Equal(t, records, got)
}

func TestCache_SnapshotReplacedWholesale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := openTestCache(t)

	require.NoError(t, c.SaveSnapshot(ctx, []model.PlantRecord{{ImageName: "old.jpg", Latitude: 1, Longitude: 2}}))
	require.NoError(t, c.SaveSnapshot(ctx, []model.PlantRecord{{ImageName: "new.jpg", Latitude: 3, Longitude: 4}}))

	got := c.LoadSnapshot(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "new.jpg", got[0].ImageName)
}

func TestCache_MissingSnapshot(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)
	assert.Empty(t, c.LoadSnapshot(context.Background()))
}

func TestCache_CorruptSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := openTestCache(t)

	// Write garbage under the snapshot key directly.
	require.NoError(t, c.set(ctx, cacheKeyPlants, `{definitely not json`))
	assert.Empty(t, c.LoadSnapshot(ctx))
}

func TestCache_EmptySnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := openTestCache(t)

	require.NoError(t, c.SaveSnapshot(ctx, nil))
	assert.Empty(t, c.LoadSnapshot(ctx))
}

func TestCache_Theme(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := openTestCache(t)

	assert.Equal(t, "", c.Theme(ctx))

	require.NoError(t, c.SetTheme(ctx, "dark"))
	assert.Equal(t, "dark", c.Theme(ctx))

	require.NoError(t, c.SetTheme(ctx, "light"))
	assert.Equal(t, "light", c.Theme(ctx))
}
