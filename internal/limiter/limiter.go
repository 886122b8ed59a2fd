// Package limiter bounds the number of operations that may run at once.
package limiter

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultSize is the bound used by the extraction pipeline when none is configured.
const DefaultSize = 10

// Limiter admits at most Size holders at a time. Waiters are admitted in the
// order they called Acquire.
type Limiter struct {
	sem      *semaphore.Weighted
	size     int
	inFlight atomic.Int64
}

// New returns a Limiter admitting n holders. n below 1 is treated as 1.
func New(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{
		sem:  semaphore.NewWeighted(int64(n)),
		size: n,
	}
}

// Size returns the fixed admission bound.
func (l *Limiter) Size() int {
	return l.size
}

// Acquire blocks until a slot is free or ctx ends. No slot is held when an
// error is returned.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	l.inFlight.Add(1)
	return nil
}

// Release returns a slot, handing it to the longest waiting caller if any.
// Calling Release without a matching Acquire panics.
func (l *Limiter) Release() {
	l.inFlight.Add(-1)
	l.sem.Release(1)
}

// Do runs fn while holding a slot. The slot is released on every exit path,
// including a panic in fn.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}

// InFlight reports how many holders are currently admitted.
func (l *Limiter) InFlight() int {
	return int(l.inFlight.Load())
}
