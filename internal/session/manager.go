package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"nestadmin/internal/api"
	"nestadmin/internal/logging"
	"nestadmin/internal/storage"
)

const (
	messageMissingToken   = "Login response did not include a valid token"
	messageRefreshFailed  = "Token refresh response did not include a valid token"
	messageMalformedToken = "Stored session token is malformed"
	messageExpiredToken   = "Stored session token has expired"
)

// Requester is the part of the API client the manager calls.
type Requester interface {
	Get(ctx context.Context, path string, query map[string]string, out any, opts ...api.CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
}

// Store is the durable key/value slot holding authToken and userData.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// Redirector sends the user to the login entry point.
type Redirector func(ctx context.Context)

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Option customises Manager construction.
type Option func(*Manager)

// WithRedirector registers the login redirect fired by Logout.
func WithRedirector(fn Redirector) Option {
	return func(m *Manager) {
		m.redirect = fn
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides time.Now, used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRejectExpired makes RestoreSession discard stored tokens whose exp
// claim has passed.
func WithRejectExpired(reject bool) Option {
	return func(m *Manager) {
		m.rejectExpired = reject
	}
}

// Manager owns the current Session.
type Manager struct {
	client        Requester
	store         Store
	redirect      Redirector
	logger        *slog.Logger
	now           func() time.Time
	rejectExpired bool

	stateMu sync.RWMutex
	state   Session

	subsMu  sync.Mutex
	subs    map[int]func(Session)
	nextSub int
	closed  bool
}

// NewManager builds a Manager in the initial loading state.
func NewManager(client Requester, store Store, opts ...Option) (*Manager, error) {
	if client == nil {
		return nil, errors.New("session: requester is nil")
	}
	if store == nil {
		return nil, errors.New("session: store is nil")
	}
	m := &Manager{
		client: client,
		store:  store,
		logger: logging.NewNop(),
		now:    time.Now,
		state:  Session{Loading: true},
		subs:   make(map[int]func(Session)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.logger = m.logger.With(logging.FieldComponent, "session")
	return m, nil
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.clone()
}

// ExpiringSoon reports whether the current token expires within d.
func (m *Manager) ExpiringSoon(d time.Duration) bool {
	return m.Current().expiringAt(m.now(), d)
}

// Subscribe registers fn to receive every new snapshot. The returned func
// removes the subscription.
func (m *Manager) Subscribe(fn func(Session)) func() {
	if fn == nil {
		return func() {}
	}
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	if m.closed {
		return func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.subs, id)
	}
}

// Close drops all subscribers. The manager stays usable.
func (m *Manager) Close() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	m.closed = true
	clear(m.subs)
}

// RestoreSession rebuilds the session from storage. A stored token alone is
// enough to authenticate; the profile is refreshed best-effort without
// triggering the 401 redirect.
func (m *Manager) RestoreSession(ctx context.Context) Session {
	token, ok, err := m.store.Get(storage.KeyAuthToken)
	if err != nil {
		m.logger.Warn("read stored token failed", logging.FieldError, err)
		return m.transition(func(s *Session) {
			*s = Session{LastError: err.Error()}
		})
	}
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return m.transition(func(s *Session) {
			*s = Session{}
		})
	}

	info, err := InspectToken(token)
	if err != nil {
		m.logger.Warn("discarding malformed stored token")
		m.clearStored()
		return m.transition(func(s *Session) {
			*s = Session{LastError: messageMalformedToken}
		})
	}
	if m.rejectExpired && !info.ExpiresAt.IsZero() && !info.ExpiresAt.After(m.now()) {
		m.logger.Info("discarding expired stored token", "expired_at", info.ExpiresAt)
		m.clearStored()
		return m.transition(func(s *Session) {
			*s = Session{LastError: messageExpiredToken}
		})
	}

	stored := m.storedProfile()
	m.transition(func(s *Session) {
		*s = Session{
			Token:         token,
			Authenticated: true,
			Loading:       true,
			Profile:       stored,
			ExpiresAt:     info.ExpiresAt,
		}
	})

	profile, err := m.fetchProfile(ctx)
	if err != nil {
		m.logger.Info("profile refresh failed; keeping stored session", logging.FieldError, err)
		return m.transition(func(s *Session) {
			s.Loading = false
			s.LastError = err.Error()
		})
	}
	if err := m.persistProfile(profile); err != nil {
		m.logger.Warn("persist profile failed", logging.FieldError, err)
	}
	return m.transition(func(s *Session) {
		s.Profile = profile
		s.Loading = false
		s.LastError = ""
	})
}

// Login exchanges credentials for a token. A nil error means the session
// is authenticated; the follow-up profile fetch may still have failed.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	var resp struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	err := m.client.Post(ctx, api.MustPath(api.EndpointLogin), creds, &resp, api.BypassAuthRedirect())
	if err == nil {
		if _, inspectErr := InspectToken(resp.Token); inspectErr != nil {
			err = &api.Error{Kind: api.KindUnknown, Message: messageMissingToken, Err: inspectErr}
		}
	}
	if err != nil {
		m.logger.Info("login rejected", logging.FieldErrorKind, api.KindOf(err).String(), logging.FieldError, err)
		m.transition(func(s *Session) {
			s.Loading = false
			s.LastError = err.Error()
		})
		return err
	}

	token := strings.TrimSpace(resp.Token)
	if err := m.store.Set(storage.KeyAuthToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	info, _ := InspectToken(token)

	initial, _ := decodeProfile(resp.User)
	if initial != nil {
		if err := m.persistProfile(initial); err != nil {
			m.logger.Warn("persist profile failed", logging.FieldError, err)
		}
	} else if err := m.store.Remove(storage.KeyUserData); err != nil {
		m.logger.Warn("clear stale profile failed", logging.FieldError, err)
	}

	m.transition(func(s *Session) {
		*s = Session{
			Token:         token,
			Authenticated: true,
			Profile:       initial,
			ExpiresAt:     info.ExpiresAt,
		}
	})
	m.logger.Info("login succeeded")

	profile, err := m.fetchProfile(ctx)
	if err != nil {
		m.logger.Info("profile fetch after login failed", logging.FieldError, err)
		return nil
	}
	if err := m.persistProfile(profile); err != nil {
		m.logger.Warn("persist profile failed", logging.FieldError, err)
	}
	m.transition(func(s *Session) {
		s.Profile = profile
	})
	return nil
}

// Logout tells the backend best-effort, then always clears local state and
// redirects to login.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Post(ctx, api.MustPath(api.EndpointLogout), nil, nil, api.BypassAuthRedirect()); err != nil {
		m.logger.Debug("backend logout failed; clearing local session anyway", logging.FieldError, err)
	}
	m.clearStored()
	m.transition(func(s *Session) {
		*s = Session{}
	})
	m.logger.Info("logged out")
	if m.redirect != nil {
		m.redirect(ctx)
	}
}

// Invalidate resets in-memory state after the API client has cleared
// storage on a 401.
func (m *Manager) Invalidate(context.Context) {
	m.transition(func(s *Session) {
		*s = Session{LastError: api.MessageUnauthorized}
	})
}

// UpdateProfile replaces the profile in memory and storage without a
// network call.
func (m *Manager) UpdateProfile(profile Profile) error {
	if err := m.persistProfile(profile); err != nil {
		return err
	}
	m.transition(func(s *Session) {
		s.Profile = maps.Clone(profile)
	})
	return nil
}

// RefreshToken obtains a replacement token. Any failure logs the session
// out and is returned to the caller.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := m.client.Post(ctx, api.MustPath(api.EndpointRefresh), nil, &resp, api.BypassAuthRedirect())
	token := strings.TrimSpace(resp.Token)
	var info TokenInfo
	if err == nil {
		var inspectErr error
		if info, inspectErr = InspectToken(token); inspectErr != nil {
			err = &api.Error{Kind: api.KindUnknown, Message: messageRefreshFailed, Err: inspectErr}
		}
	}
	if err == nil {
		if setErr := m.store.Set(storage.KeyAuthToken, token); setErr != nil {
			err = fmt.Errorf("persist token: %w", setErr)
		}
	}
	if err != nil {
		m.logger.Warn("token refresh failed; logging out", logging.FieldError, err)
		m.Logout(ctx)
		return "", err
	}

	m.transition(func(s *Session) {
		s.Token = token
		s.Authenticated = true
		s.ExpiresAt = info.ExpiresAt
		s.LastError = ""
	})
	return token, nil
}

func (m *Manager) transition(fn func(*Session)) Session {
	m.stateMu.Lock()
	fn(&m.state)
	snapshot := m.state.clone()
	m.stateMu.Unlock()

	m.logger.Debug("session transition", logging.FieldSessionState, snapshot.State())
	m.publish(snapshot)
	return snapshot
}

func (m *Manager) publish(snapshot Session) {
	m.subsMu.Lock()
	subs := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range subs {
		fn(snapshot.clone())
	}
}

func (m *Manager) fetchProfile(ctx context.Context) (Profile, error) {
	var raw json.RawMessage
	if err := m.client.Get(ctx, api.MustPath(api.EndpointMe), nil, &raw, api.BypassAuthRedirect()); err != nil {
		return nil, err
	}
	profile, err := decodeProfile(raw)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("current user response was empty")
	}
	return profile, nil
}

func (m *Manager) storedProfile() Profile {
	raw, ok, err := m.store.Get(storage.KeyUserData)
	if err != nil || !ok {
		return nil
	}
	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		m.logger.Debug("ignoring unreadable stored profile", logging.FieldError, err)
		return nil
	}
	return profile
}

func (m *Manager) persistProfile(profile Profile) error {
	if profile == nil {
		return m.store.Remove(storage.KeyUserData)
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := m.store.Set(storage.KeyUserData, string(data)); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	return nil
}

func (m *Manager) clearStored() {
	if err := m.store.Remove(storage.KeyAuthToken, storage.KeyUserData); err != nil {
		m.logger.Warn("clear stored session failed", logging.FieldError, err)
	}
}

// decodeProfile unwraps {"user": {...}} and {"data": {...}} envelopes.
// Empty or null input yields a nil profile.
func decodeProfile(raw json.RawMessage) (Profile, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	for _, key := range []string{"user", "data"} {
		inner, ok := obj[key]
		if !ok {
			continue
		}
		var nested Profile
		if err := json.Unmarshal(inner, &nested); err == nil && nested != nil {
			return nested, nil
		}
	}
	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}
