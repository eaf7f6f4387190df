package session

import (
	"context"
	"time"
)

// StartActivityMonitoring attaches the activity monitor: activity reported
// through NotifyActivity refreshes the rolling window at most once per
// debounce floor, and a periodic check catches expiry and inactivity. The
// returned stop function detaches the monitor and is the only cancellation
// primitive. At most one monitor may run per active session.
func (m *Manager) StartActivityMonitoring(ctx context.Context) (stop func(), err error) {
	m.mu.Lock()
	if m.monitoring {
		m.mu.Unlock()
		return nil, ErrAlreadyMonitoring
	}
	m.monitoring = true
	activity := make(chan struct{}, 1)
	m.activity = activity
	m.mu.Unlock()

	done := make(chan struct{})
	go m.monitorLoop(ctx, activity, done)

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(done)
		m.mu.Lock()
		m.monitoring = false
		m.activity = nil
		m.mu.Unlock()
	}, nil
}

// NotifyActivity records a user-interaction event. Safe to call from any
// goroutine; bursts collapse into a single pending signal.
func (m *Manager) NotifyActivity() {
	m.mu.Lock()
	activity := m.activity
	m.mu.Unlock()
	if activity == nil {
		return
	}
	select {
	case activity <- struct{}{}:
	default:
	}
}

func (m *Manager) monitorLoop(ctx context.Context, activity <-chan struct{}, done <-chan struct{}) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	var lastRefresh time.Time

	for {
		select {
		case <-activity:
			now := m.now()
			if !lastRefresh.IsZero() && now.Sub(lastRefresh) < m.debounceFloor {
				continue
			}
			if m.refresh(ctx) {
				lastRefresh = now
			}
		case <-ticker.C:
			m.mu.Lock()
			active := m.state == StateActive
			m.mu.Unlock()
			if active && !m.CheckSession(ctx) {
				m.logger.Info("session lapsed", "reason", "periodic check")
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// refresh slides the inactivity window forward for an active session:
// LastActivityAt and ExpiresAt move together.
func (m *Manager) refresh(ctx context.Context) bool {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return false
	}
	startGen := m.gen
	sess := m.session
	m.mu.Unlock()

	now := m.now().UTC()
	lastActivity := now
	expires := now.Add(InactivityTimeout)

	if err := m.remote.Touch(ctx, sess.Email, sess.Token, lastActivity, expires); err != nil {
		m.logger.Warn("touch remote shadow session", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// a logout or expiry may have landed while Touch was in flight
	if m.gen != startGen || m.state != StateActive {
		return false
	}
	m.session.LastActivityAt = lastActivity
	m.session.ExpiresAt = expires
	m.gen++
	return true
}
