package core

// load_limiter.go bounds how many uploads are parsed at once.
//
// Parsing holds the whole file and its Dataset in memory, so the server
// admits a fixed number of parses and makes the rest wait up to maxWait
// before failing with ErrTooManyUploads. WaitForDrain lets shutdown finish
// in-flight parses.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyUploads is returned when no parse slot frees up within the wait
// timeout. Clients should retry after a short delay.
var ErrTooManyUploads = errors.New("too many uploads in progress, please try again later")

// Load limiter defaults.
const (
	DefaultMaxConcurrentLoads = 5
	DefaultMaxLoadWait        = 30 * time.Second
)

// LoadLimiter is a counting semaphore over file parses.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewLoadLimiter allows at most maxConcurrent parses at once. Callers that
// cannot get a slot within maxWait receive ErrTooManyUploads.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxLoadWait
	}
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must call Release exactly once after a
// nil return.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyUploads
	}
}

// TryAcquire takes a slot without waiting.
func (l *LoadLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *LoadLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Load parses data under a slot.
func (l *LoadLimiter) Load(ctx context.Context, data []byte, filename string) (*Dataset, error) {
	if err := l.Acquire(ctx); err != nil {
		return nil, err
	}
	defer l.Release()
	return Load(data, filename)
}

// Active returns the number of parses in progress.
func (l *LoadLimiter) Active() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *LoadLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no parse is in progress or ctx is done.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LoadLimiterStatus is a point-in-time view of the limiter.
type LoadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current usage for the status endpoint.
func (l *LoadLimiter) Status() LoadLimiterStatus {
	return LoadLimiterStatus{
		Active:        l.Active(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
