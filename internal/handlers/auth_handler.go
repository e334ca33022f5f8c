package handlers

import (
	"crypto/subtle"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"familytree/internal/security"
	"familytree/internal/validation"
)

// AuthHandler signs the configured admin account in and out
type AuthHandler struct {
	sessions     *security.Sessions
	username     string
	passwordHash string
	templates    *template.Template
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler. Sign-in is disabled when
// passwordHash is empty.
func NewAuthHandler(sessions *security.Sessions, username, passwordHash string, templates *template.Template, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		username:     username,
		passwordHash: passwordHash,
		templates:    templates,
		logger:       logger,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.passwordHash == "" {
		http.Redirect(w, r, "/families", http.StatusSeeOther)
		return
	}
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		if claims, err := h.sessions.Verify(cookie.Value); err == nil && claims.Username() != AnonymousUser {
			http.Redirect(w, r, "/families", http.StatusSeeOther)
			return
		}
	}

	render(h.logger, h.templates, w, http.StatusOK, "login", LoginViewData{Page: Page{Title: "Sign in - Family Tree"}})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.passwordHash == "" {
		http.Redirect(w, r, "/families", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form := validation.LoginForm{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	valid := validation.Struct(form) == nil &&
		subtle.ConstantTimeCompare([]byte(form.Username), []byte(h.username)) == 1 &&
		security.CheckPassword(h.passwordHash, form.Password)
	if !valid {
		h.logger.Warn("failed sign-in",
			zap.String("username", form.Username),
			zap.String("client", clientIP(r.Context())),
		)
		render(h.logger, h.templates, w, http.StatusUnauthorized, "login", LoginViewData{
			Page:     Page{Title: "Sign in - Family Tree", Error: "Invalid username or password"},
			Username: form.Username,
		})
		return
	}

	token, claims, err := h.sessions.Issue(h.username)
	if err != nil {
		respondWithError(h.logger, w, http.StatusInternalServerError, ErrInternalServerError, "failed to issue session", err)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, token, claims.ExpiresAt.Time))
	h.logger.Info("signed in", zap.String("username", h.username))

	http.Redirect(w, r, "/families", http.StatusSeeOther)
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
