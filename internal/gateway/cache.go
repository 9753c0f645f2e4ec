package gateway

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedCatalog is a read-through Redis cache in front of a Catalog. A Redis
// failure never fails a read; the call falls through to the backend.
type CachedCatalog struct {
	next   Catalog
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

func NewCachedCatalog(next Catalog, rdb redis.UniversalClient, ttl time.Duration, log *zap.Logger) *CachedCatalog {
	return &CachedCatalog{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		prefix: "catalog",
		log:    log.With(zap.String("gateway", "cache")),
	}
}

func (c *CachedCatalog) ListShowtimes(ctx context.Context, filter ShowtimeFilter) ([]entity.Showtime, error) {
	date := ""
	if !filter.Date.IsZero() {
		date = filter.Date.Format("2006-01-02")
	}
	key := c.key(ctx, "showtimes", "movie", filter.MovieID, "cinema", filter.CinemaID, "date", date)
	return readThrough(ctx, c, key, func() ([]entity.Showtime, error) {
		return c.next.ListShowtimes(ctx, filter)
	})
}

func (c *CachedCatalog) ListCinemas(ctx context.Context) ([]entity.CinemaSummary, error) {
	return readThrough(ctx, c, c.key(ctx, "cinemas"), func() ([]entity.CinemaSummary, error) {
		return c.next.ListCinemas(ctx)
	})
}

func (c *CachedCatalog) ListCombos(ctx context.Context) ([]entity.Combo, error) {
	return readThrough(ctx, c, c.key(ctx, "combos"), func() ([]entity.Combo, error) {
		return c.next.ListCombos(ctx)
	})
}

// key scopes entries to the caller's token, since the backend may answer
// differently per staff member.
func (c *CachedCatalog) key(ctx context.Context, parts ...string) string {
	token, _ := utils.GetTokenFromContext(ctx)
	sum := sha1.Sum([]byte(token + "|" + strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%s:%x", c.prefix, parts[0], sum[:])
}

func readThrough[T any](ctx context.Context, c *CachedCatalog, key string, load func() ([]T, error)) ([]T, error) {
	bs, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []T
		if err := json.Unmarshal(bs, &items); err == nil {
			return items, nil
		}
		c.log.Warn("Dropping undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	items, err := load()
	if err != nil {
		return nil, err
	}

	if bs, err := json.Marshal(items); err == nil {
		if err := c.rdb.Set(ctx, key, bs, c.ttl).Err(); err != nil {
			c.log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}
