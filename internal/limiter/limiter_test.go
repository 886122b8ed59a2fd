package limiter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoercesSize(t *testing.T) {
	assert.Equal(t, 1, New(0).Size())
	assert.Equal(t, 1, New(-4).Size())
	assert.Equal(t, 3, New(3).Size())
}

func TestDoNeverExceedsBound(t *testing.T) {
	const (
		bound = 3
		tasks = 40
	)
	l := New(bound)

	var current, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), func(context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(bound))
	assert.Positive(t, peak.Load())
	assert.Equal(t, 0, l.InFlight())
}

func TestAcquireIsFIFO(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Acquire(context.Background()))

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if !assert.NoError(t, l.Acquire(context.Background())) {
				return
			}
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			l.Release()
		}(i)
		// let each waiter queue before starting the next
		time.Sleep(20 * time.Millisecond)
	}

	l.Release()
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestAcquireHonoursContext(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, l.InFlight())

	l.Release()
	assert.Equal(t, 0, l.InFlight())
}

func TestDoReleasesOnError(t *testing.T) {
	l := New(1)
	boom := errors.New("boom")

	err := l.Do(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, l.InFlight())
}

func TestDoReleasesOnPanic(t *testing.T) {
	l := New(1)

	func() {
		defer func() {
			assert.NotNil(t, recover())
		}()
		_ = l.Do(context.Background(), func(context.Context) error { panic("page exploded") })
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Acquire(ctx))
	l.Release()
}
