package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"familytree/internal/metrics"
	"familytree/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	SessionContextKey  ContextKey = "session"
	CSRFContextKey     ContextKey = "csrf"
	ClientIPContextKey ContextKey = "client_ip"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	sessions    *security.Sessions
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
	authEnabled bool
	logger      *zap.Logger
}

// NewMiddleware creates a new middleware instance. With authEnabled false
// every visitor gets an anonymous session.
func NewMiddleware(sessions *security.Sessions, csrf *security.CSRFGenerator, limiter *security.RateLimiter, authEnabled bool, logger *zap.Logger) *Middleware {
	return &Middleware{
		sessions:    sessions,
		csrf:        csrf,
		limiter:     limiter,
		authEnabled: authEnabled,
		logger:      logger,
	}
}

// session returns the verified session from the request cookie, or nil
func (m *Middleware) session(r *http.Request) *security.SessionClaims {
	cookie, err := r.Cookie(security.SessionCookieName)
	if err != nil {
		return nil
	}
	claims, err := m.sessions.Verify(cookie.Value)
	if err != nil {
		return nil
	}
	if m.authEnabled && claims.Username() == AnonymousUser {
		return nil
	}
	return claims
}

// RequireAuth is middleware that requires a valid session. It also puts a
// fresh CSRF token for the session in the context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := m.session(r)
		if claims == nil {
			if m.authEnabled {
				if _, err := r.Cookie(security.SessionCookieName); err == nil {
					http.SetCookie(w, security.CreateDeleteCookie(r))
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			token, issued, err := m.sessions.Issue(AnonymousUser)
			if err != nil {
				respondWithError(m.logger, w, http.StatusInternalServerError, ErrInternalServerError, "failed to issue anonymous session", err)
				return
			}
			http.SetCookie(w, security.CreateSessionCookie(r, token, issued.ExpiresAt.Time))
			claims = issued
		}

		csrfToken, err := m.csrf.GenerateToken(claims.ID)
		if err != nil {
			respondWithError(m.logger, w, http.StatusInternalServerError, ErrInternalServerError, "failed to generate CSRF token", err)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, claims)
		ctx = context.WithValue(ctx, CSRFContextKey, csrfToken)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect rejects requests whose csrf_token form field (or X-CSRF-Token
// header) was not issued for the current session. Use inside RequireAuth.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetSessionFromContext(r.Context())
		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			if err := parseForm(r); err != nil {
				http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
				return
			}
			token = r.FormValue(security.CSRFFieldName)
		}
		if claims == nil || !m.csrf.ValidateToken(claims.ID, token) {
			m.logger.Warn("rejected request with invalid CSRF token",
				zap.String("path", r.URL.Path),
				zap.String("client", clientIP(r.Context())),
			)
			http.Error(w, ErrForbidden, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// parseForm parses the request body as a multipart or urlencoded form.
// Errors from an oversized body surface here instead of being swallowed
// by FormValue.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadSize)
	}
	return r.ParseForm()
}

// LimitBody caps the request body at n bytes. Put it outside CSRFProtect,
// which reads the body to find the form token.
func (m *Middleware) LimitBody(n int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return m.limiter.Limit(next)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs and counts HTTP requests. It also resolves the
// client address once for the rest of the chain.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		client := m.limiter.ClientIP(r)
		r = r.WithContext(context.WithValue(r.Context(), ClientIPContextKey, client))

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("client", client),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// GetSessionFromContext retrieves the session from the request context
func GetSessionFromContext(ctx context.Context) *security.SessionClaims {
	claims, ok := ctx.Value(SessionContextKey).(*security.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// clientIP retrieves the address resolved by Logging
func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPContextKey).(string)
	return ip
}

// csrfToken retrieves the request's CSRF token from the context
func csrfToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFContextKey).(string)
	return token
}

// createdBy is the name recorded on records created in this request
func createdBy(ctx context.Context) string {
	claims := GetSessionFromContext(ctx)
	if claims == nil || claims.Username() == AnonymousUser {
		return unknownCreator
	}
	return claims.Username()
}

// currentUser is the signed-in username shown in the page header, empty
// for anonymous sessions
func currentUser(ctx context.Context) string {
	claims := GetSessionFromContext(ctx)
	if claims == nil || claims.Username() == AnonymousUser {
		return ""
	}
	return claims.Username()
}
