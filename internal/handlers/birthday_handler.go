package handlers

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"familytree/internal/service"
)

// BirthdayHandler lists upcoming birthdays
type BirthdayHandler struct {
	store       *service.RelationshipService
	defaultDays int
	templates   *template.Template
	logger      *zap.Logger
}

// NewBirthdayHandler creates a new birthday handler. defaultDays is the
// horizon used when the request gives none.
func NewBirthdayHandler(store *service.RelationshipService, defaultDays int, templates *template.Template, logger *zap.Logger) *BirthdayHandler {
	if defaultDays <= 0 {
		defaultDays = service.DefaultBirthdayHorizon
	}
	return &BirthdayHandler{store: store, defaultDays: defaultDays, templates: templates, logger: logger}
}

// ShowBirthdays renders birthdays within ?days=N days
func (h *BirthdayHandler) ShowBirthdays(w http.ResponseWriter, r *http.Request) {
	days := atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = h.defaultDays
	}

	upcoming := h.store.UpcomingBirthdays(days)
	rows := make([]BirthdayRow, 0, len(upcoming))
	for _, b := range upcoming {
		rows = append(rows, birthdayRow(b))
	}

	render(h.logger, h.templates, w, http.StatusOK, "birthdays", BirthdaysViewData{
		Page: Page{
			Title:     "Birthdays - Family Tree",
			User:      currentUser(r.Context()),
			CSRFToken: csrfToken(r.Context()),
		},
		Days:      days,
		Birthdays: rows,
	})
}
