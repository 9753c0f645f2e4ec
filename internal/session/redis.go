package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxUpdateAttempts = 5

// releaseScript deletes the lock only if it still holds our token, so a
// release after the lock expired cannot free someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps sessions as JSON documents with a sliding TTL so several
// server instances can share them.
type RedisStore struct {
	rdb     redis.UniversalClient
	ttl     time.Duration
	lockTTL time.Duration
	prefix  string
	now     func() time.Time
	log     *zap.Logger
}

// NewRedisStore creates a store whose sessions expire after ttl without
// activity. lockTTL bounds how long an abandoned in-flight mark survives.
func NewRedisStore(rdb redis.UniversalClient, ttl, lockTTL time.Duration, log *zap.Logger) *RedisStore {
	return &RedisStore{
		rdb:     rdb,
		ttl:     ttl,
		lockTTL: lockTTL,
		prefix:  "counter:session",
		now:     time.Now,
		log:     log.With(zap.String("store", "redis")),
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + ":" + id
}

func (r *RedisStore) Create(ctx context.Context, s Session) error {
	now := r.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := r.rdb.Set(ctx, r.key(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	data, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session %s: %w", id, err)
	}
	return decodeSession(id, data)
}

// Update runs fn inside WATCH/MULTI and retries when another writer changed
// the session in between.
func (r *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (Session, error) {
	key := r.key(id)
	var stored Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load session %s: %w", id, err)
		}

		cur, err := decodeSession(id, data)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		next.ID = cur.ID
		next.UpdatedAt = r.now()

		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = next
		return nil
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			r.log.Debug("Session update lost a race, retrying",
				zap.String("session_id", id),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return Session{}, err
		}
		return stored, nil
	}
	return Session{}, fmt.Errorf("update session %s: %w", id, ErrContended)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Acquire(ctx context.Context, id, op string) (func(), error) {
	key := r.key(lockKey(id, op)) + ":lock"
	token := uuid.NewString()

	ok, err := r.rdb.SetNX(ctx, key, token, r.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s lock for session %s: %w", op, id, err)
	}
	if !ok {
		return nil, ErrBusy
	}

	return func() {
		// The request context may already be cancelled by the time we release.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.rdb, []string{key}, token).Err(); err != nil {
			r.log.Warn("Failed to release session lock",
				zap.String("session_id", id),
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}, nil
}

func decodeSession(id string, data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}
