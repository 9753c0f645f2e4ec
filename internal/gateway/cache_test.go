package gateway

import (
	"context"
	"testing"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingCatalog struct {
	showtimes []entity.Showtime
	calls     map[string]int
}

func (c *countingCatalog) ListShowtimes(ctx context.Context, filter ShowtimeFilter) ([]entity.Showtime, error) {
	c.calls["showtimes"]++
	return c.showtimes, nil
}

func (c *countingCatalog) ListCinemas(ctx context.Context) ([]entity.CinemaSummary, error) {
	c.calls["cinemas"]++
	return []entity.CinemaSummary{{ID: "c1", Name: "Galaxy"}}, nil
}

func (c *countingCatalog) ListCombos(ctx context.Context) ([]entity.Combo, error) {
	c.calls["combos"]++
	return nil, ErrBackendUnavailable
}

func newCachedCatalog(t *testing.T) (*CachedCatalog, *countingCatalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	inner := &countingCatalog{
		showtimes: []entity.Showtime{{
			ID:        "s1",
			Movie:     &entity.MovieSummary{ID: "m1", Title: "Mai"},
			Cinema:    &entity.CinemaSummary{ID: "c1", Name: "Galaxy"},
			StartTime: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
			Status:    entity.ShowtimeStatusScheduled,
			IsActive:  true,
		}},
		calls: map[string]int{},
	}
	return NewCachedCatalog(inner, rdb, time.Minute, zap.NewNop()), inner, mr
}

func TestCachedCatalog_ReadThrough(t *testing.T) {
	cache, inner, mr := newCachedCatalog(t)
	ctx := context.Background()
	filter := ShowtimeFilter{MovieID: "m1"}

	first, err := cache.ListShowtimes(ctx, filter)
	require.NoError(t, err)
	second, err := cache.ListShowtimes(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls["showtimes"])
	assert.Equal(t, first, second)

	_, err = cache.ListShowtimes(ctx, ShowtimeFilter{MovieID: "m2"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls["showtimes"], "different filter is a different entry")

	mr.FastForward(2 * time.Minute)
	_, err = cache.ListShowtimes(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls["showtimes"], "expired entry is reloaded")
}

func TestCachedCatalog_ScopedByToken(t *testing.T) {
	cache, inner, _ := newCachedCatalog(t)

	_, err := cache.ListCinemas(utils.SetTokenContext(context.Background(), "staff-a"))
	require.NoError(t, err)
	_, err = cache.ListCinemas(utils.SetTokenContext(context.Background(), "staff-b"))
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls["cinemas"])
}

func TestCachedCatalog_ErrorsAreNotCached(t *testing.T) {
	cache, inner, _ := newCachedCatalog(t)

	for range 2 {
		_, err := cache.ListCombos(context.Background())
		require.ErrorIs(t, err, ErrBackendUnavailable)
	}
	assert.Equal(t, 2, inner.calls["combos"])
}

func TestCachedCatalog_RedisDownFallsThrough(t *testing.T) {
	cache, inner, mr := newCachedCatalog(t)
	mr.Close()

	got, err := cache.ListCinemas(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, inner.calls["cinemas"])
}
