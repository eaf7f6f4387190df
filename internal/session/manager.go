package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultDebounceFloor = 30 * time.Second
	defaultCheckInterval = time.Minute
)

// Config tunes a Manager. Zero values pick the production defaults.
type Config struct {
	Logger *slog.Logger
	// DebounceFloor is the minimum gap between activity-driven refreshes.
	DebounceFloor time.Duration
	// CheckInterval is how often the monitor re-validates the session.
	CheckInterval time.Duration
	Now           func() time.Time
}

// ErrAlreadyMonitoring is returned when StartActivityMonitoring is called
// while a monitor is still attached.
var ErrAlreadyMonitoring = errors.New("session: activity monitor already running")

// Manager owns the session lifecycle: hydration from the provider or the
// shadow record, rolling inactivity refresh, and teardown. The provider is
// the source of truth; the shadow stores are a legacy fallback consulted only
// when the provider reports no session.
type Manager struct {
	provider Provider
	local    LocalStore
	remote   RemoteStore
	logger   *slog.Logger

	debounceFloor time.Duration
	checkInterval time.Duration
	now           func() time.Time

	mu      sync.Mutex
	state   State
	session Session
	// gen changes on every transition. Paths that await I/O capture it
	// before suspending and re-check it before writing, so a logout that
	// lands mid-validation is never overwritten by the stale result.
	gen        uint64
	monitoring bool
	activity   chan struct{}
}

// NewManager wires a Manager over the provider and shadow stores.
func NewManager(provider Provider, local LocalStore, remote RemoteStore, cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DebounceFloor <= 0 {
		cfg.DebounceFloor = defaultDebounceFloor
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		provider:      provider,
		local:         local,
		remote:        remote,
		logger:        cfg.Logger,
		debounceFloor: cfg.DebounceFloor,
		checkInterval: cfg.CheckInterval,
		now:           cfg.Now,
	}
}

// Snapshot returns the current lifecycle state and, when active, the session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{State: m.state}
	if m.state == StateActive {
		snap.Session = m.session
	}
	return snap
}

// SignIn authenticates through the provider and records the shadow session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (Session, error) {
	sess, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	if err := m.local.Save(ctx, sess.Email, sess.Token); err != nil {
		m.logger.Warn("save local shadow session", "error", err)
	}
	if err := m.remote.Put(ctx, Record{
		Email:          sess.Email,
		Token:          sess.Token,
		ExpiresAt:      sess.ExpiresAt,
		LastActivityAt: sess.LastActivityAt,
		EmailConfirmed: true,
	}); err != nil {
		m.logger.Warn("record remote shadow session", "error", err)
	}

	m.mu.Lock()
	m.state = StateActive
	m.session = sess
	m.gen++
	m.mu.Unlock()

	return sess, nil
}

// Hydrate moves a terminal manager back to Unknown and attempts to
// re-establish a session. It is the entry point on mount.
func (m *Manager) Hydrate(ctx context.Context) bool {
	m.mu.Lock()
	if m.state == StateExpired || m.state == StateSignedOut {
		m.state = StateUnknown
		m.session = Session{}
		m.gen++
	}
	m.mu.Unlock()
	return m.CheckSession(ctx)
}

// CheckSession re-validates the session against the provider and the shadow
// record. On success it refreshes the rolling window; on failure it clears
// both shadow stores. Idempotent when no activity intervenes. Network
// failures degrade to "no session": the check fails closed, never errors.
func (m *Manager) CheckSession(ctx context.Context) bool {
	m.mu.Lock()
	startGen := m.gen
	m.mu.Unlock()

	sess, err := m.provider.GetSession(ctx)
	switch {
	case err == nil:
		if sess.ValidAt(m.now()) {
			return m.activate(ctx, startGen, sess)
		}
		// provider handed back a lapsed session; fall through to teardown
		return m.invalidate(ctx, startGen, sess.Email)
	case errors.Is(err, ErrNoSession):
		// fall back to the shadow record below
	default:
		m.logger.Warn("provider session check failed", "error", err)
	}

	email, token, err := m.local.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			m.logger.Warn("load local shadow session", "error", err)
		}
		return m.invalidate(ctx, startGen, "")
	}

	rec, err := m.remote.Find(ctx, email, token)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			m.logger.Warn("load remote shadow session", "error", err)
		}
		return m.invalidate(ctx, startGen, email)
	}

	now := m.now()
	if !rec.EmailConfirmed || !now.Before(rec.ExpiresAt) || now.Sub(rec.LastActivityAt) >= InactivityTimeout {
		return m.invalidate(ctx, startGen, email)
	}

	return m.activate(ctx, startGen, Session{
		Email:          rec.Email,
		Token:          rec.Token,
		IssuedAt:       rec.LastActivityAt,
		ExpiresAt:      rec.ExpiresAt,
		LastActivityAt: rec.LastActivityAt,
	})
}

// activate applies the rolling refresh and transitions to Active, unless the
// state moved while validation was in flight.
func (m *Manager) activate(ctx context.Context, startGen uint64, sess Session) bool {
	now := m.now().UTC()
	sess.LastActivityAt = now
	sess.ExpiresAt = now.Add(InactivityTimeout)

	if err := m.remote.Touch(ctx, sess.Email, sess.Token, sess.LastActivityAt, sess.ExpiresAt); err != nil && !errors.Is(err, ErrRecordNotFound) {
		m.logger.Warn("touch remote shadow session", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != startGen {
		// state moved while we were awaiting I/O; drop the stale result
		return m.state == StateActive
	}
	m.state = StateActive
	m.session = sess
	m.gen++
	return true
}

// invalidate clears shadow storage and transitions an active session to
// Expired. Always returns false.
func (m *Manager) invalidate(ctx context.Context, startGen uint64, email string) bool {
	if email != "" {
		if err := m.remote.Clear(ctx, email); err != nil {
			m.logger.Warn("clear remote shadow session", "error", err)
		}
	}
	if err := m.local.Clear(ctx); err != nil {
		m.logger.Warn("clear local shadow session", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != startGen {
		return false
	}
	if m.state == StateActive {
		m.state = StateExpired
	}
	m.session = Session{}
	m.gen++
	return false
}

// Logout tears the session down unconditionally. Remote clearing is best
// effort; local state is cleared last, so from the caller's perspective
// logout always succeeds.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	email := m.session.Email
	m.mu.Unlock()

	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.Warn("provider sign-out", "error", err)
	}
	if email != "" {
		if err := m.remote.Clear(ctx, email); err != nil {
			m.logger.Warn("clear remote shadow session", "error", err)
		}
	}
	if err := m.local.Clear(ctx); err != nil {
		m.logger.Warn("clear local shadow session", "error", err)
	}

	m.mu.Lock()
	m.state = StateSignedOut
	m.session = Session{}
	m.gen++
	m.mu.Unlock()
}

// HandleEvent applies a provider push event. Provider events always win over
// locally computed state.
func (m *Manager) HandleEvent(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventSignedIn:
		m.mu.Lock()
		m.state = StateActive
		m.session = ev.Session
		m.gen++
		m.mu.Unlock()
	case EventTokenRefreshed:
		m.mu.Lock()
		if m.state == StateActive {
			m.session.Token = ev.Session.Token
			m.session.ExpiresAt = ev.Session.ExpiresAt
			m.session.LastActivityAt = ev.Session.LastActivityAt
			m.gen++
		}
		m.mu.Unlock()
	case EventSignedOut:
		if err := m.local.Clear(ctx); err != nil {
			m.logger.Warn("clear local shadow session", "error", err)
		}
		m.mu.Lock()
		m.state = StateSignedOut
		m.session = Session{}
		m.gen++
		m.mu.Unlock()
	}
}

// WatchProvider consumes provider push events until ctx is done or the
// provider closes its stream.
func (m *Manager) WatchProvider(ctx context.Context) {
	events := m.provider.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.HandleEvent(ctx, ev)
		case <-ctx.Done():
			return
		}
	}
}
