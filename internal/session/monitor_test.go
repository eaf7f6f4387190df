package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HenriqueLauxen/signea-sub001/internal/logging"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStartActivityMonitoringAtMostOnce(t *testing.T) {
	ctx := context.Background()
	mgr, _, _, _, _ := newTestManager(t)

	stop, err := mgr.StartActivityMonitoring(ctx)
	if err != nil {
		t.Fatalf("start monitoring: %v", err)
	}
	if _, err := mgr.StartActivityMonitoring(ctx); !errors.Is(err, ErrAlreadyMonitoring) {
		t.Fatalf("second start: got %v, want ErrAlreadyMonitoring", err)
	}

	stop()
	stop() // disposer is safe to call twice

	stop2, err := mgr.StartActivityMonitoring(ctx)
	if err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	stop2()
}

func TestActivityRefreshDebounce(t *testing.T) {
	ctx := context.Background()
	mgr, provider, _, _, clock := newTestManager(t)
	provider.set(providerSession(clock))
	if !mgr.CheckSession(ctx) {
		t.Fatal("expected active session")
	}

	stop, err := mgr.StartActivityMonitoring(ctx)
	if err != nil {
		t.Fatalf("start monitoring: %v", err)
	}
	defer stop()

	clock.Advance(time.Second)
	first := clock.Now()
	mgr.NotifyActivity()
	waitFor(t, func() bool {
		return mgr.Snapshot().Session.LastActivityAt.Equal(first)
	}, "first activity did not refresh the window")

	// a second burst inside the debounce floor must not slide the window
	clock.Advance(10 * time.Second)
	mgr.NotifyActivity()
	time.Sleep(100 * time.Millisecond)
	if got := mgr.Snapshot().Session.LastActivityAt; !got.Equal(first) {
		t.Fatalf("refresh inside debounce floor: %v", got)
	}

	// past the floor the next event refreshes again
	clock.Advance(25 * time.Second)
	after := clock.Now()
	mgr.NotifyActivity()
	waitFor(t, func() bool {
		snap := mgr.Snapshot()
		return snap.Session.LastActivityAt.Equal(after) &&
			snap.Session.ExpiresAt.Equal(after.Add(InactivityTimeout))
	}, "activity past the debounce floor did not refresh")
}

func TestPeriodicCheckDetectsExpiry(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider()
	local, _ := newTestLocalStore(t)
	remote := NewMemoryRemoteStore()
	clock := newFakeClock()
	mgr := NewManager(provider, local, remote, Config{
		Logger:        logging.Discard(),
		Now:           clock.Now,
		CheckInterval: 10 * time.Millisecond,
	})

	provider.set(providerSession(clock))
	if !mgr.CheckSession(ctx) {
		t.Fatal("expected active session")
	}

	stop, err := mgr.StartActivityMonitoring(ctx)
	if err != nil {
		t.Fatalf("start monitoring: %v", err)
	}
	defer stop()

	// the provider loses the session and the window lapses
	provider.mu.Lock()
	provider.has = false
	provider.mu.Unlock()
	clock.Advance(InactivityTimeout + time.Minute)

	waitFor(t, func() bool {
		return mgr.Snapshot().State == StateExpired
	}, "periodic check did not expire the session")
}
