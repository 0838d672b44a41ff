// Package cleanup registers process-lifetime hooks: periodic background
// work (Repeat) and at-exit teardown (AtExit), the latter used by the
// Context test fixture to drop a test database unless keep_test_data was
// requested.
package cleanup

import (
	"context"
	"sync"
	"time"
)

var (
	mu       sync.Mutex
	cancels  []context.CancelFunc
	atExits  []func()
)

// Repeat calls tick every interval, passing a context cancelled when
// Cleanup is called, until Cleanup runs cleanupFn exactly once.
func Repeat(interval time.Duration, tick func(ctx context.Context), cleanupFn func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(interval)

	mu.Lock()
	cancels = append(cancels, cancel)
	if cleanupFn != nil {
		atExits = append(atExits, cleanupFn)
	}
	mu.Unlock()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick(ctx)
			}
		}
	}()
}

// AtExit registers fn to run the next time Cleanup is called.
func AtExit(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	atExits = append(atExits, fn)
}

// Cleanup cancels every Repeat loop and runs every registered AtExit hook,
// in registration order.
func Cleanup() {
	mu.Lock()
	toCancel := cancels
	toRun := atExits
	cancels = nil
	atExits = nil
	mu.Unlock()

	for _, cancel := range toCancel {
		cancel()
	}
	for _, fn := range toRun {
		fn()
	}
}

// reset clears all registered hooks without running them; used by tests
// that want a clean slate between cases.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	cancels = nil
	atExits = nil
}
