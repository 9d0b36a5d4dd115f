package session

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Profile is the backend's user record, kept opaque.
type Profile map[string]any

// Session is an immutable snapshot of the authentication state.
type Session struct {
	Profile       Profile
	Token         string
	Authenticated bool
	Loading       bool
	LastError     string
	// ExpiresAt is the token's exp claim, zero when the token carries none.
	ExpiresAt time.Time
}

// ExpiringWithin reports whether the token's exp claim falls within d of now.
// Tokens without an exp claim never report expiring.
func (s Session) ExpiringWithin(d time.Duration) bool {
	return s.expiringAt(time.Now(), d)
}

func (s Session) expiringAt(now time.Time, d time.Duration) bool {
	if !s.Authenticated || s.ExpiresAt.IsZero() {
		return false
	}
	return !s.ExpiresAt.After(now.Add(d))
}

// State names the lifecycle position for logs and status output.
func (s Session) State() string {
	switch {
	case s.Loading:
		return "loading"
	case s.Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// DisplayName picks the most human field available from the profile.
func (s Session) DisplayName() string {
	for _, key := range []string{"name", "fullName", "username", "email"} {
		if value, ok := s.Profile[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	if first, ok := s.Profile["firstName"].(string); ok && first != "" {
		if last, ok := s.Profile["lastName"].(string); ok && last != "" {
			return fmt.Sprintf("%s %s", first, last)
		}
		return first
	}
	return ""
}

// Field returns a top-level profile value as a string.
func (p Profile) Field(key string) string {
	value, ok := p[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func (s Session) clone() Session {
	out := s
	if s.Profile != nil {
		out.Profile = maps.Clone(s.Profile)
	}
	return out
}
