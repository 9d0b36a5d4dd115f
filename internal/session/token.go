package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrMalformedToken is returned for credentials that are not three
// dot-separated segments.
var ErrMalformedToken = errors.New("malformed token")

// TokenInfo holds the claims that could be read from a token without
// verifying its signature. Any field may be zero.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// InspectToken checks the three-segment shape and decodes exp/iat/sub when
// the payload is a JWT claims object. A well-shaped token whose payload does
// not decode is still accepted; the backend remains the authority.
func InspectToken(token string) (TokenInfo, error) {
	token = strings.TrimSpace(token)
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return TokenInfo{}, ErrMalformedToken
	}
	for _, part := range parts {
		if part == "" {
			return TokenInfo{}, ErrMalformedToken
		}
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, nil
	}
	info := TokenInfo{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
