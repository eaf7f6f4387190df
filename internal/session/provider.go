package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// EventType identifies a push notification from the auth provider.
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is an out-of-band state change pushed by the provider. Provider
// events take precedence over locally computed state.
type Event struct {
	Type    EventType
	Session Session
}

// ErrNoSession is returned by Provider.GetSession when the provider holds no
// current session. It is the only GetSession error the manager treats as a
// definitive answer; anything else is a network failure and fails closed.
var ErrNoSession = errors.New("session: no provider session")

// Provider is the external auth provider the manager treats as the primary
// source of truth.
type Provider interface {
	GetSession(ctx context.Context) (Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	// Events returns the push-event stream. The channel is closed when the
	// provider shuts down.
	Events() <-chan Event
}

// Authenticator verifies credentials and reports whether the account's email
// address has been confirmed. Satisfied by identity.Service.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (confirmed bool, err error)
}

// TokenProvider is a Provider that issues HS256-signed session tokens backed
// by the identity store.
type TokenProvider struct {
	secret []byte
	auth   Authenticator
	now    func() time.Time

	mu      sync.Mutex
	current Session
	has     bool
	events  chan Event
}

// NewTokenProvider builds a provider signing tokens with secret.
func NewTokenProvider(secret string, auth Authenticator) *TokenProvider {
	return &TokenProvider{
		secret: []byte(secret),
		auth:   auth,
		now:    time.Now,
		events: make(chan Event, 8),
	}
}

// GetSession returns the provider's current session, if any.
func (p *TokenProvider) GetSession(_ context.Context) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.has {
		return Session{}, ErrNoSession
	}
	if !p.current.ValidAt(p.now()) {
		p.has = false
		return Session{}, ErrNoSession
	}
	return p.current, nil
}

// SignInWithPassword authenticates against the identity store and issues a
// fresh session token. Unconfirmed accounts are rejected.
func (p *TokenProvider) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	confirmed, err := p.auth.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if !confirmed {
		return Session{}, errors.New("session: email not confirmed")
	}

	now := p.now().UTC()
	expires := now.Add(InactivityTimeout)
	token, err := SignHS256(map[string]any{
		"sub": email,
		"iat": now.Unix(),
		"exp": expires.Unix(),
	}, p.secret)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Email:          email,
		Token:          token,
		IssuedAt:       now,
		ExpiresAt:      expires,
		LastActivityAt: now,
	}

	p.mu.Lock()
	p.current = sess
	p.has = true
	p.mu.Unlock()

	p.publish(Event{Type: EventSignedIn, Session: sess})
	return sess, nil
}

// SignOut drops the provider session and announces it.
func (p *TokenProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.current = Session{}
	p.has = false
	p.mu.Unlock()

	p.publish(Event{Type: EventSignedOut})
	return nil
}

// Refresh re-signs the current session with renewed expiry and announces a
// TOKEN_REFRESHED event.
func (p *TokenProvider) Refresh(_ context.Context) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.has {
		return Session{}, ErrNoSession
	}

	now := p.now().UTC()
	expires := now.Add(InactivityTimeout)
	token, err := SignHS256(map[string]any{
		"sub": p.current.Email,
		"iat": now.Unix(),
		"exp": expires.Unix(),
	}, p.secret)
	if err != nil {
		return Session{}, err
	}
	p.current.Token = token
	p.current.ExpiresAt = expires
	p.current.LastActivityAt = now

	sess := p.current
	p.publish(Event{Type: EventTokenRefreshed, Session: sess})
	return sess, nil
}

// Events exposes the provider's push-event stream.
func (p *TokenProvider) Events() <-chan Event {
	return p.events
}

func (p *TokenProvider) publish(ev Event) {
	select {
	case p.events <- ev:
	default:
		// slow consumer; drop rather than block sign-in/out paths
	}
}
