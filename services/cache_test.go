package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/The-Policy-Posse/Network-Graph-1/models"
	"github.com/The-Policy-Posse/Network-Graph-1/storage"
)

type countingReader struct {
	calls atomic.Int32
	data  atomic.Value
	err   error
	gate  chan struct{}
}

func newCountingReader(data string) *countingReader {
	r := &countingReader{}
	r.data.Store(data)
	return r
}

func (r *countingReader) Latest(ctx context.Context) (*models.NetworkData, error) {
	r.calls.Add(1)
	if r.gate != nil {
		<-r.gate
	}
	if r.err != nil {
		return nil, r.err
	}
	return &models.NetworkData{Data: []byte(r.data.Load().(string))}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSnapshotCache(t *testing.T) {
	ctx := context.Background()

	t.Run("should serve from cache until the ttl expires", func(t *testing.T) {
		reader := newCountingReader(`{"v":1}`)
		clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		cache := NewSnapshotCache(reader, 2*time.Hour)
		cache.now = clock.Now
		hits := testutil.ToFloat64(cacheRequests.WithLabelValues("hit"))

		for i := 0; i < 3; i++ {
			data, err := cache.Get(ctx)
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":1}`, string(data))
		}
		assert.Equal(t, int32(1), reader.calls.Load())
		assert.Equal(t, hits+2, testutil.ToFloat64(cacheRequests.WithLabelValues("hit")))

		reader.data.Store(`{"v":2}`)
		clock.Advance(2*time.Hour - time.Second)
		data, _ := cache.Get(ctx)
		assert.JSONEq(t, `{"v":1}`, string(data))

		clock.Advance(time.Second)
		data, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(data))
		assert.Equal(t, int32(2), reader.calls.Load())
	})

	t.Run("should not cache errors", func(t *testing.T) {
		reader := newCountingReader("")
		reader.err = storage.ErrNoSnapshot
		cache := NewSnapshotCache(reader, time.Hour)

		_, err := cache.Get(ctx)
		assert.ErrorIs(t, err, storage.ErrNoSnapshot)
		_, err = cache.Get(ctx)
		assert.ErrorIs(t, err, storage.ErrNoSnapshot)
		assert.Equal(t, int32(2), reader.calls.Load())
	})

	t.Run("should reload after invalidation", func(t *testing.T) {
		reader := newCountingReader(`{"v":1}`)
		cache := NewSnapshotCache(reader, time.Hour)

		_, err := cache.Get(ctx)
		require.NoError(t, err)
		reader.data.Store(`{"v":2}`)
		cache.Invalidate()

		data, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(data))
	})

	t.Run("should collapse concurrent misses into one read", func(t *testing.T) {
		reader := newCountingReader(`{"v":1}`)
		reader.gate = make(chan struct{})
		cache := NewSnapshotCache(reader, time.Hour)

		const readers = 16
		var wg sync.WaitGroup
		results := make(chan []byte, readers)
		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				data, err := cache.Get(ctx)
				if err == nil {
					results <- data
				}
			}()
		}
		require.Eventually(t, func() bool { return reader.calls.Load() >= 1 }, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(reader.gate)
		wg.Wait()
		close(results)

		n := 0
		for data := range results {
			assert.JSONEq(t, `{"v":1}`, string(data))
			n++
		}
		assert.Equal(t, readers, n)
		assert.LessOrEqual(t, reader.calls.Load(), int32(readers))
		assert.Less(t, reader.calls.Load(), int32(readers), "misses must share a read")
	})

	t.Run("should keep a stale load from overwriting an invalidation", func(t *testing.T) {
		reader := newCountingReader(`{"v":1}`)
		reader.gate = make(chan struct{})
		cache := NewSnapshotCache(reader, time.Hour)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = cache.Get(ctx)
		}()
		require.Eventually(t, func() bool { return reader.calls.Load() == 1 }, time.Second, time.Millisecond)
		cache.Invalidate()
		close(reader.gate)
		<-done

		reader.data.Store(`{"v":2}`)
		data, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(data))
	})

	t.Run("should pass through unexpected errors", func(t *testing.T) {
		reader := newCountingReader("")
		reader.err = errors.New("connection refused")
		cache := NewSnapshotCache(reader, time.Hour)

		_, err := cache.Get(ctx)
		assert.ErrorIs(t, err, reader.err)
	})
}
