package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLimiter_AcquireRelease(t *testing.T) {
	l := NewFetchLimiter(2, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, FetchLimiterStatus{Active: 2, Available: 0, MaxConcurrent: 2}, l.Status())

	l.Release()
	assert.Equal(t, FetchLimiterStatus{Active: 1, Available: 1, MaxConcurrent: 2}, l.Status())
	l.Release()
	assert.Equal(t, 0, l.Status().Active)
}

func TestFetchLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewFetchLimiter(1, 50*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, l.Acquire(ctx))
	defer l.Release()

	start := time.Now()
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrTooManyFetches)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestFetchLimiter_ContextCancelled(t *testing.T) {
	l := NewFetchLimiter(1, time.Minute)
	require.NoError(t, l.Acquire(context.Background()))
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestFetchLimiter_Defaults(t *testing.T) {
	l := NewFetchLimiter(0, 0)
	assert.Equal(t, DefaultMaxConcurrentFetches, l.Status().MaxConcurrent)
}

func TestFetchLimiter_NeverExceedsMax(t *testing.T) {
	const max = 3
	l := NewFetchLimiter(max, time.Second)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		peak int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				return
			}
			mu.Lock()
			if a := l.Status().Active; a > peak {
				peak = a
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			l.Release()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, max)
	assert.Equal(t, 0, l.Status().Active)
}

func TestFetchLimiter_WaitForDrain(t *testing.T) {
	l := NewFetchLimiter(1, time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	go func() {
		time.Sleep(30 * time.Millisecond)
		l.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, l.WaitForDrain(ctx))
}
