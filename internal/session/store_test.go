package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cinema-ticketing/internal/booking"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storeFactory func(t *testing.T) Store

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(time.Hour)
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { rdb.Close() })
			return NewRedisStore(rdb, time.Hour, time.Minute, zap.NewNop())
		},
	}
}

func sampleDraft() booking.Draft {
	d := booking.NewDraft()
	d.Generation = 3
	d.Step = booking.StepSelectCombos
	d.CustomerPhone = "0901234567"
	d.WalkIn = true
	d.Seats = []booking.SeatSelection{{Row: "A", Number: 1, Type: "standard", Price: 80000}}
	d.Combos = map[string]booking.ComboSelection{
		"k1": {ComboID: "k1", Name: "Bắp nước", Price: 65000, Quantity: 2},
	}
	return d
}

func TestStore_CreateGetDelete(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.Create(ctx, Session{ID: "sess-1", StaffID: "staff-1", Draft: sampleDraft()}))

			got, err := s.Get(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, "staff-1", got.StaffID)
			assert.Equal(t, sampleDraft(), got.Draft)
			assert.False(t, got.CreatedAt.IsZero())

			require.NoError(t, s.Delete(ctx, "sess-1"))
			_, err = s.Get(ctx, "sess-1")
			require.ErrorIs(t, err, ErrNotFound)
			require.ErrorIs(t, s.Delete(ctx, "sess-1"), ErrNotFound)
		})
	}
}

func TestStore_Update(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			require.NoError(t, s.Create(ctx, Session{ID: "sess-1", Draft: booking.NewDraft()}))

			updated, err := s.Update(ctx, "sess-1", func(cur Session) (Session, error) {
				cur.Draft = cur.Draft.Reset()
				return cur, nil
			})
			require.NoError(t, err)
			assert.Equal(t, uint64(1), updated.Draft.Generation)

			boom := errors.New("boom")
			_, err = s.Update(ctx, "sess-1", func(cur Session) (Session, error) {
				cur.Draft.Generation = 99
				return cur, boom
			})
			require.ErrorIs(t, err, boom)

			got, err := s.Get(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, uint64(1), got.Draft.Generation, "failed update must not be stored")

			_, err = s.Update(ctx, "missing", func(cur Session) (Session, error) { return cur, nil })
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_ConcurrentUpdatesAreNotLost(t *testing.T) {
	const writers = 5

	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			require.NoError(t, s.Create(ctx, Session{ID: "sess-1", Draft: booking.NewDraft()}))

			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for range writers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.Update(ctx, "sess-1", func(cur Session) (Session, error) {
						cur.Draft = cur.Draft.Reset()
						return cur, nil
					})
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			got, err := s.Get(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, uint64(writers), got.Draft.Generation)
		})
	}
}

func TestStore_Acquire(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			release, err := s.Acquire(ctx, "sess-1", "lookup")
			require.NoError(t, err)

			_, err = s.Acquire(ctx, "sess-1", "lookup")
			require.ErrorIs(t, err, ErrBusy)

			otherOp, err := s.Acquire(ctx, "sess-1", "submit")
			require.NoError(t, err, "different operations do not block each other")
			otherOp()

			otherSession, err := s.Acquire(ctx, "sess-2", "lookup")
			require.NoError(t, err)
			otherSession()

			release()
			release()

			again, err := s.Acquire(ctx, "sess-1", "lookup")
			require.NoError(t, err)
			again()
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(30 * time.Minute)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Create(ctx, Session{ID: "sess-1", Draft: booking.NewDraft()}))

	now = now.Add(20 * time.Minute)
	_, err := s.Update(ctx, "sess-1", func(cur Session) (Session, error) { return cur, nil })
	require.NoError(t, err, "activity slides the expiry")

	now = now.Add(20 * time.Minute)
	_, err = s.Get(ctx, "sess-1")
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = s.Get(ctx, "sess-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DropsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := range 1000 {
		require.NoError(t, s.Create(ctx, Session{ID: fmt.Sprintf("old-%d", i), Draft: booking.NewDraft()}))
	}

	now = now.Add(time.Hour)
	for i := range 10 {
		id := fmt.Sprintf("new-%d", i)
		require.NoError(t, s.Create(ctx, Session{ID: id, Draft: booking.NewDraft()}))
		_, err := s.Get(ctx, id)
		require.NoError(t, err)
	}

	s.mu.Lock()
	held := len(s.sessions)
	s.mu.Unlock()
	assert.Equal(t, 10, held, "expired sessions are swept without being read again")
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	s := NewRedisStore(rdb, 30*time.Minute, time.Minute, zap.NewNop())

	require.NoError(t, s.Create(ctx, Session{ID: "sess-1", Draft: booking.NewDraft()}))
	assert.Equal(t, 30*time.Minute, mr.TTL("counter:session:sess-1"))

	mr.FastForward(31 * time.Minute)
	_, err := s.Get(ctx, "sess-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_LockExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	s := NewRedisStore(rdb, time.Hour, time.Minute, zap.NewNop())

	stale, err := s.Acquire(ctx, "sess-1", "submit")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	fresh, err := s.Acquire(ctx, "sess-1", "submit")
	require.NoError(t, err, "abandoned lock expires")

	stale()
	_, err = s.Acquire(ctx, "sess-1", "submit")
	require.ErrorIs(t, err, ErrBusy, "late release must not free the new holder's lock")
	fresh()
}
