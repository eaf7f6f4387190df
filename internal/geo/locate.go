package geo

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPermissionDenied occurs when the device refuses to expose its position.
	ErrPermissionDenied = errors.New("geo: location permission denied")

	// ErrPositionUnavailable occurs when the device cannot produce a fix.
	ErrPositionUnavailable = errors.New("geo: position unavailable")

	// ErrTimeout occurs when acquisition exceeds the configured bound.
	ErrTimeout = errors.New("geo: location acquisition timed out")
)

// Position is a fix reported by a location provider.
type Position struct {
	Point          Point
	AccuracyMeters float64
	ObservedAt     time.Time
}

// Options tune a single acquisition attempt.
type Options struct {
	Timeout      time.Duration
	HighAccuracy bool
	// AllowCached accepts a recent fix instead of forcing a fresh one.
	AllowCached bool
	MaxAge      time.Duration
}

// Provider abstracts the platform geolocation capability.
type Provider interface {
	Locate(ctx context.Context, opts Options) (Position, error)
}

const defaultAcquireTimeout = 10 * time.Second

// AcquireLocation requests a fix from the provider, bounded by opts.Timeout.
// Abandoning ctx abandons the acquisition; there is no other cancellation
// path. Errors are always one of ErrPermissionDenied, ErrPositionUnavailable
// or ErrTimeout.
func AcquireLocation(ctx context.Context, provider Provider, opts Options) (Position, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultAcquireTimeout
	}
	if opts.AllowCached && opts.MaxAge <= 0 {
		opts.MaxAge = time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := provider.Locate(ctx, opts)
	if err != nil {
		switch {
		case errors.Is(err, ErrPermissionDenied):
			return Position{}, ErrPermissionDenied
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
			return Position{}, ErrTimeout
		case errors.Is(err, context.Canceled):
			return Position{}, ErrTimeout
		default:
			return Position{}, ErrPositionUnavailable
		}
	}
	if !pos.Point.Valid() {
		return Position{}, ErrPositionUnavailable
	}
	return pos, nil
}

// StaticProvider returns a fixed position, useful for tests and local runs.
type StaticProvider struct {
	Position Position
	Err      error
	// Delay simulates acquisition latency.
	Delay time.Duration
}

// Locate returns the configured position after the configured delay, or the
// context error if the caller gives up first.
func (p StaticProvider) Locate(ctx context.Context, _ Options) (Position, error) {
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return Position{}, ctx.Err()
		}
	}
	if p.Err != nil {
		return Position{}, p.Err
	}
	return p.Position, nil
}
