package clock

import (
	"context"
	"time"
)

type ctxClockKey struct{}

// Clock returns the current time. Tests inject a fixed one through With.
type Clock func() time.Time

func Now(ctx context.Context) time.Time {
	clock, ok := ctx.Value(ctxClockKey{}).(Clock)
	if !ok {
		return time.Now()
	}
	return clock()
}

func Since(ctx context.Context, t time.Time) time.Duration {
	return Now(ctx).Sub(t)
}

func With(ctx context.Context, clock Clock) context.Context {
	return context.WithValue(ctx, ctxClockKey{}, clock)
}
