package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowcart/internal/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type backend struct {
	name    string
	open    func(t *testing.T) store.Store
	advance func(d time.Duration)
}

func backends(t *testing.T) []backend {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	var mr *miniredis.Miniredis
	return []backend{
		{
			name: "sqlite",
			open: func(t *testing.T) store.Store {
				s, err := store.OpenSQL(context.Background(), ":memory:")
				require.NoError(t, err)
				t.Cleanup(func() { _ = s.Close() })
				return s.WithClock(clock.Now)
			},
			advance: clock.Advance,
		},
		{
			name: "redis",
			open: func(t *testing.T) store.Store {
				mr = miniredis.RunT(t)
				s, err := store.OpenRedis(context.Background(), "redis://"+mr.Addr())
				require.NoError(t, err)
				t.Cleanup(func() { _ = s.Close() })
				return s
			},
			advance: func(d time.Duration) { mr.FastForward(d) },
		},
	}
}

func TestStoreValues(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)

			_, err := s.Get(ctx, "order:NOPE")
			assert.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, s.Set(ctx, "order:A", `{"id":"A"}`))
			require.NoError(t, s.Set(ctx, "order:B", `{"id":"B"}`))
			require.NoError(t, s.Set(ctx, "order:B", `{"id":"B2"}`))

			v, err := s.Get(ctx, "order:B")
			require.NoError(t, err)
			assert.Equal(t, `{"id":"B2"}`, v)

			vals, err := s.MGet(ctx, "order:A", "order:missing", "order:B")
			require.NoError(t, err)
			assert.Equal(t, []string{`{"id":"A"}`, "", `{"id":"B2"}`}, vals)

			require.NoError(t, s.Del(ctx, "order:A"))
			_, err = s.Get(ctx, "order:A")
			assert.ErrorIs(t, err, store.ErrNotFound)

			vals, err = s.MGet(ctx)
			require.NoError(t, err)
			assert.Empty(t, vals)
		})
	}
}

func TestMGetBeyondBindLimit(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQL(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	keys := make([]string, 33000)
	for i := range keys {
		keys[i] = fmt.Sprintf("order:%05d", i)
	}
	require.NoError(t, s.Set(ctx, keys[0], "first"))
	require.NoError(t, s.Set(ctx, keys[32999], "last"))

	vals, err := s.MGet(ctx, keys...)
	require.NoError(t, err)
	require.Len(t, vals, len(keys))
	assert.Equal(t, "first", vals[0])
	assert.Equal(t, "last", vals[32999])
	assert.Empty(t, vals[16000])
}

func TestStoreCounterWindow(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)

			for want := int64(1); want <= 3; want++ {
				n, err := s.Incr(ctx, "rl:1.2.3.4")
				require.NoError(t, err)
				assert.Equal(t, want, n)
				if n == 1 {
					require.NoError(t, s.Expire(ctx, "rl:1.2.3.4", time.Minute))
				}
			}

			b.advance(59 * time.Second)
			n, err := s.Incr(ctx, "rl:1.2.3.4")
			require.NoError(t, err)
			assert.Equal(t, int64(4), n, "still inside the window")

			b.advance(2 * time.Second)
			n, err = s.Incr(ctx, "rl:1.2.3.4")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n, "window elapsed, counter starts over")
		})
	}
}

func TestStoreSetClearsExpiry(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)

			_, err := s.Incr(ctx, "k")
			require.NoError(t, err)
			require.NoError(t, s.Expire(ctx, "k", time.Second))
			require.NoError(t, s.Set(ctx, "k", "v"))

			b.advance(5 * time.Second)
			v, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", v)
		})
	}
}

func TestStoreLists(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)

			got, err := s.LRange(ctx, "orders")
			require.NoError(t, err)
			assert.Empty(t, got)

			for _, id := range []string{"A", "B", "C", "B"} {
				require.NoError(t, s.LPush(ctx, "orders", id))
			}
			got, err = s.LRange(ctx, "orders")
			require.NoError(t, err)
			assert.Equal(t, []string{"B", "C", "B", "A"}, got)

			n, err := s.LRem(ctx, "orders", "B")
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			got, err = s.LRange(ctx, "orders")
			require.NoError(t, err)
			assert.Equal(t, []string{"C", "A"}, got)

			require.NoError(t, s.Del(ctx, "orders"))
			got, err = s.LRange(ctx, "orders")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestOpenPicksBackend(t *testing.T) {
	ctx := context.Background()

	s, err := store.Open(ctx, ":memory:", "")
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &store.SQLStore{}, s)

	mr := miniredis.RunT(t)
	r, err := store.Open(ctx, "", "redis://"+mr.Addr())
	require.NoError(t, err)
	defer r.Close()
	assert.IsType(t, &store.RedisStore{}, r)
	require.NoError(t, r.Ping(ctx))
}
