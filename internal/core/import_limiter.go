package core

// import_limiter.go bounds how many bulk imports run at once.
//
// An import checks for an existing email and then creates the account.
// Those two steps are not atomic, so two batches running side by side
// could both pass the check for the same address. The default of one
// slot serializes batches across the whole process; a batch that finds
// every slot taken is queued for up to maxWait before ErrTooManyImports.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/useradmin/internal/logging"
)

// ErrTooManyImports is returned when no import slot frees up within the
// wait timeout. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// DefaultMaxConcurrentImports is the default limit for parallel import batches.
const DefaultMaxConcurrentImports = 1

// DefaultMaxWaitTime is how long a queued batch waits for a slot.
const DefaultMaxWaitTime = 30 * time.Second

// ImportLimiter hands out import slots. Each running batch holds one.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	queued  atomic.Int32
}

// NewImportLimiter creates a limiter that allows at most maxConcurrent
// simultaneous imports. Non-positive arguments select the defaults.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes an import slot, queueing behind running batches when
// none is free. It returns ErrTooManyImports after maxWait, or the
// context error if ctx ends first. Call Release when the batch is done.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}

	l.queued.Add(1)
	defer l.queued.Add(-1)

	logging.FromContext(ctx).Info("import queued behind running batch",
		"active", l.ActiveCount(),
		"max_concurrent", l.MaxConcurrent(),
		"max_wait", l.maxWait.String(),
	)

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrTooManyImports
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *ImportLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ImportLimiter) Release() {
	<-l.slots
}

// Serial reports whether batches run one at a time, which rules out two
// batches racing the duplicate check.
func (l *ImportLimiter) Serial() bool {
	return cap(l.slots) == 1
}

// ActiveCount returns the number of slots in use.
func (l *ImportLimiter) ActiveCount() int {
	return len(l.slots)
}

// QueuedCount returns the number of batches waiting for a slot.
func (l *ImportLimiter) QueuedCount() int {
	return int(l.queued.Load())
}

// MaxConcurrent returns the maximum allowed concurrent imports.
func (l *ImportLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *ImportLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until every running batch has released its slot,
// or ctx ends. It does so by taking each slot in turn and handing them
// all back once it holds the full set.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	held := 0
	defer func() {
		for ; held > 0; held-- {
			<-l.slots
		}
	}()

	for held < cap(l.slots) {
		select {
		case l.slots <- struct{}{}:
			held++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// ImportLimiterStatus is a snapshot of the limiter's state.
type ImportLimiterStatus struct {
	Active        int  `json:"active"`
	Queued        int  `json:"queued"`
	Available     int  `json:"available"`
	MaxConcurrent int  `json:"max_concurrent"`
	Serial        bool `json:"serial"`
}

// Status returns the current limiter state for health reporting.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	return ImportLimiterStatus{
		Active:        l.ActiveCount(),
		Queued:        l.QueuedCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
		Serial:        l.Serial(),
	}
}
