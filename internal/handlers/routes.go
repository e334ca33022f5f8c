package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles everything the router dispatches to
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	People     *PeopleHandler
	Families   *FamilyHandler
	Birthdays  *BirthdayHandler
	Migration  *MigrationHandler
}

// NewRouter registers every route and wraps the mux in request logging
func NewRouter(h Handlers) http.Handler {
	m := h.Middleware
	mux := http.NewServeMux()

	// Operational
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Public routes
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/families", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /login", h.Auth.ShowLogin)
	mux.HandleFunc("POST /login", m.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /logout", h.Auth.Logout)

	// Families and memberships
	mux.HandleFunc("GET /families", m.RequireAuth(h.Families.ShowFamilies))
	mux.HandleFunc("POST /families", m.RequireAuth(m.CSRFProtect(h.Families.CreateFamily)))
	mux.HandleFunc("POST /families/{id}/update", m.RequireAuth(m.CSRFProtect(h.Families.UpdateFamily)))
	mux.HandleFunc("POST /families/{id}/delete", m.RequireAuth(m.CSRFProtect(h.Families.DeleteFamily)))
	mux.HandleFunc("POST /relationships", m.RequireAuth(m.CSRFProtect(h.Families.AddRelationship)))
	mux.HandleFunc("POST /relationships/{id}/delete", m.RequireAuth(m.CSRFProtect(h.Families.RemoveRelationship)))

	// People
	mux.HandleFunc("GET /people", m.RequireAuth(h.People.ShowPeople))
	mux.HandleFunc("POST /people", m.RequireAuth(m.CSRFProtect(h.People.CreatePerson)))
	mux.HandleFunc("POST /people/{id}/update", m.RequireAuth(m.CSRFProtect(h.People.UpdatePerson)))
	mux.HandleFunc("POST /people/{id}/delete", m.RequireAuth(m.CSRFProtect(h.People.DeletePerson)))
	mux.HandleFunc("GET /people/{id}/suggestions", m.RequireAuth(h.People.Suggestions))

	mux.HandleFunc("GET /birthdays", m.RequireAuth(h.Birthdays.ShowBirthdays))

	// Legacy migration
	mux.HandleFunc("GET /migrate", m.RequireAuth(h.Migration.ShowMigrate))
	mux.HandleFunc("POST /migrate", m.RequireAuth(m.LimitBody(maxUploadSize, m.CSRFProtect(h.Migration.Migrate))))
	mux.HandleFunc("GET /migrate/template", m.RequireAuth(h.Migration.Template))

	return m.Logging(mux)
}
