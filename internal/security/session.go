package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie holding the signed session token
const SessionCookieName = "familytree_session"

// ErrInvalidSession is returned for missing, expired or tampered tokens
var ErrInvalidSession = errors.New("invalid session")

// SessionClaims identify a signed-in user. ID is the session id that CSRF
// tokens are bound to.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Username returns the signed-in user's name
func (c *SessionClaims) Username() string { return c.Subject }

// Sessions issues and verifies HS256-signed session tokens. No session
// state is kept server side.
type Sessions struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewSessions creates a session signer
func NewSessions(secret string, duration time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), duration: duration, now: time.Now}
}

// GenerateSessionID creates a new UUID for session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

// Issue signs a new session for username
func (s *Sessions) Issue(username string) (string, *SessionClaims, error) {
	if username == "" {
		return "", nil, fmt.Errorf("username is required")
	}
	now := s.now()
	claims := &SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        GenerateSessionID(),
		Subject:   username,
		Issuer:    "familytree",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, claims, nil
}

// Verify parses a token and checks its signature, issuer and expiry
func (s *Sessions) Verify(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("familytree"),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject or id", ErrInvalidSession)
	}
	return claims, nil
}

// IsSecureRequest determines if the request is over HTTPS
// Checks TLS connection, X-Forwarded-Proto header (for reverse proxies), and URL scheme
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateSessionCookie creates a session cookie with proper security flags
// The Secure flag is automatically set based on the request scheme (HTTPS detection)
func CreateSessionCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie clears the session cookie
func CreateDeleteCookie(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}
