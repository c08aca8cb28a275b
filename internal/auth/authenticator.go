// Package auth verifies local credentials and issues the opaque handle that
// represents one authenticated login until it is closed.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hnrobert/ttylogin/internal/logger"
)

const issuer = "ttylogin"

var (
	ErrHandleClosed  = errors.New("auth session already closed")
	ErrInvalidHandle = errors.New("auth session not issued by this authenticator")
)

type claims struct {
	TTY string `json:"tty,omitempty"`
	jwt.RegisteredClaims
}

// Handle is an authenticated session. It is created by Authenticate, passed
// around by pointer without inspection, and closed exactly once.
type Handle struct {
	mu     sync.Mutex
	ticket string
	closed bool
}

// Authenticator checks passwords against the shadow database.
type Authenticator struct {
	ShadowPath string
	// UseSu enables su(1) verification for hash formats crypt cannot check.
	UseSu bool

	secret []byte
	now    func() time.Time
}

func New(shadowPath string, useSu bool) (*Authenticator, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return &Authenticator{ShadowPath: shadowPath, UseSu: useSu, secret: secret, now: time.Now}, nil
}

// Authenticate verifies username's password and opens an auth session bound to
// ttyPath.
func (a *Authenticator) Authenticate(username, password, ttyPath string) (*Handle, error) {
	if err := verifyPassword(a.ShadowPath, username, password, a.UseSu); err != nil {
		return nil, err
	}
	ticket, err := a.sign(username, ttyPath)
	if err != nil {
		return nil, fmt.Errorf("issue auth session: %w", err)
	}
	logger.Info("authenticated %s on %s", username, ttyPath)
	return &Handle{ticket: ticket}, nil
}

// Close ends the auth session behind h. It succeeds once per handle.
func (a *Authenticator) Close(h *Handle) error {
	if h == nil {
		return ErrInvalidHandle
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	c, err := a.parse(h.ticket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	h.closed = true
	h.ticket = ""
	var held time.Duration
	if c.IssuedAt != nil {
		held = a.now().Sub(c.IssuedAt.Time).Round(time.Second)
	}
	logger.Info("closed auth session for %s on %s after %s", c.Subject, c.TTY, held)
	return nil
}

func (a *Authenticator) sign(username, ttyPath string) (string, error) {
	id := make([]byte, 12)
	if _, err := rand.Read(id); err != nil {
		return "", err
	}
	c := claims{
		TTY: ttyPath,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  username,
			ID:       fmt.Sprintf("%x", id),
			IssuedAt: jwt.NewNumericDate(a.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
}

func (a *Authenticator) parse(ticket string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(ticket, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return nil, err
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid ticket")
	}
	return c, nil
}
