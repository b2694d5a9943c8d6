package httpstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrShortSecret = errors.New("secret must be at least 32 characters")

// Service token lifetime and the window before expiry at which a fresh
// token is minted.
const (
	tokenTTL     = 5 * time.Minute
	renewBefore  = 30 * time.Second
	audienceName = "entity-service"
)

// tokenSource mints short-lived HS256 service tokens and reuses them until
// shortly before expiry.
type tokenSource struct {
	secretKey []byte
	service   string

	mu      sync.Mutex
	current string
	expires time.Time
}

func newTokenSource(secret, service string) (*tokenSource, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}
	return &tokenSource{secretKey: []byte(secret), service: service}, nil
}

// Token returns a valid signed token, minting a new one when the cached
// token is absent or about to expire.
func (ts *tokenSource) Token() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.current != "" && time.Now().Before(ts.expires.Add(-renewBefore)) {
		return ts.current, nil
	}

	now := time.Now()
	expiresAt := now.Add(tokenTTL)

	claims := jwt.MapClaims{
		"sub": ts.service,
		"aud": audienceName,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	ts.current = signed
	ts.expires = expiresAt
	return signed, nil
}
