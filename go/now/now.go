// Package now provides a context-scoped source of the current time, so
// that code paths that need "the current instant" (the temporal id
// generator, revision-time evaluation, cache TTLs) can be driven by a
// fake clock in tests instead of the wall clock.
package now

import (
	"context"
	"time"
)

type contextKeyType string

// ContextKey is the context.Value key under which a time.Time or a
// NowProvider is stored.
const ContextKey contextKeyType = "now.Now"

// NowProvider is a function that returns the current time; storing one
// under ContextKey allows a caller to supply a moving fake clock instead
// of a fixed instant.
type NowProvider func() time.Time

// Now returns the real wall-clock time unless ctx carries a value under
// ContextKey, in which case that value is used instead. The stored value
// must be a time.Time or a NowProvider; anything else panics, since a
// caller that stashed a bad value under this key has a bug worth
// surfacing immediately rather than silently falling back to the wall
// clock.
func Now(ctx context.Context) time.Time {
	v := ctx.Value(ContextKey)
	if v == nil {
		return time.Now()
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case NowProvider:
		return t()
	default:
		panic("now: ContextKey holds a value that is neither time.Time nor NowProvider")
	}
}

// timeTravelingContext is a context.Context whose Now() value can be
// changed after construction, for tests that need to advance time in
// discrete steps.
type timeTravelingContext struct {
	context.Context
	current *time.Time
}

// TimeTravelingContext constructs a context rooted at context.Background()
// whose Now() starts at t and can be moved with SetTime.
func TimeTravelingContext(t time.Time) *timeTravelingContext {
	c := t
	return &timeTravelingContext{
		Context: context.Background(),
		current: &c,
	}
}

// SetTime moves the context's notion of "now" forward or backward.
func (c *timeTravelingContext) SetTime(t time.Time) {
	*c.current = t
}

// WithContext returns a timeTravelingContext that delegates all
// non-Now() context.Context behavior (values, deadlines, cancellation)
// to base, while keeping this context's movable clock.
func (c *timeTravelingContext) WithContext(base context.Context) *timeTravelingContext {
	return &timeTravelingContext{
		Context: base,
		current: c.current,
	}
}

// Value intercepts lookups of ContextKey to return the movable clock;
// everything else is delegated to the wrapped context.
func (c *timeTravelingContext) Value(key interface{}) interface{} {
	if k, ok := key.(contextKeyType); ok && k == ContextKey {
		return *c.current
	}
	return c.Context.Value(key)
}
