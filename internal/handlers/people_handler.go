package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"familytree/internal/models"
	"familytree/internal/service"
	"familytree/internal/validation"
)

// PeopleHandler serves the people grid and person mutations
type PeopleHandler struct {
	store     *service.RelationshipService
	templates *template.Template
	logger    *zap.Logger
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(store *service.RelationshipService, templates *template.Template, logger *zap.Logger) *PeopleHandler {
	return &PeopleHandler{store: store, templates: templates, logger: logger}
}

// ShowPeople renders the filtered people grid
func (h *PeopleHandler) ShowPeople(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := service.PeopleFilter{
		Search:   strings.TrimSpace(query.Get("q")),
		Role:     models.Role(query.Get("role")),
		FamilyID: query.Get("family"),
	}
	h.render(w, r, http.StatusOK, filter, "")
}

func (h *PeopleHandler) render(w http.ResponseWriter, r *http.Request, status int, filter service.PeopleFilter, errMsg string) {
	people := h.store.FilterPeople(filter)
	cards := make([]PersonCard, 0, len(people))
	for _, p := range people {
		cards = append(cards, personCard(h.store, p))
	}

	render(h.logger, h.templates, w, status, "people", PeopleViewData{
		Page: Page{
			Title:     "People - Family Tree",
			User:      currentUser(r.Context()),
			CSRFToken: csrfToken(r.Context()),
			Error:     errMsg,
		},
		People:   cards,
		Families: h.store.Families(),
		Roles:    models.MemberRoles,
		Filter:   filter,
	})
}

// CreatePerson adds a person from the add-person form
func (h *PeopleHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	person := personFromForm(r.PostForm)
	if err := validation.Struct(validation.PersonForm{FirstName: person.FirstName, LastName: person.LastName}); err != nil {
		h.render(w, r, http.StatusBadRequest, service.PeopleFilter{}, err.Error())
		return
	}
	person.CreatedBy = createdBy(r.Context())

	created, err := h.store.AddPerson(r.Context(), person)
	if err != nil {
		respondWithServiceError(h.logger, w, "failed to add person", err)
		return
	}
	h.logger.Info("person added", zap.String("id", created.ID), zap.String("created_by", created.CreatedBy))

	h.store.LoadAll(r.Context())
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

// UpdatePerson applies the submitted fields to a person; fields missing
// from the form are left unchanged
func (h *PeopleHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	update := personUpdateFromForm(r.PostForm)
	for _, name := range []*string{update.FirstName, update.LastName} {
		if name != nil && strings.TrimSpace(*name) == "" {
			http.Error(w, "Name cannot be blank", http.StatusBadRequest)
			return
		}
	}

	id := r.PathValue("id")
	if err := h.store.UpdatePerson(r.Context(), id, update); err != nil {
		respondWithServiceError(h.logger, w, "failed to update person", err)
		return
	}

	h.store.LoadAll(r.Context())
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

// DeletePerson archives a person
func (h *PeopleHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeletePerson(r.Context(), id); err != nil {
		respondWithServiceError(h.logger, w, "failed to delete person", err)
		return
	}
	h.logger.Info("person archived", zap.String("id", id))

	h.store.LoadAll(r.Context())
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

// Suggestions returns the family suggestions for a person as JSON
func (h *PeopleHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.store.GetPerson(id); !ok {
		respondWithServiceError(h.logger, w, "", service.ErrPersonNotFound)
		return
	}

	suggestions := h.store.SuggestRelationships(id)
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(suggestions); err != nil {
		h.logger.Error("failed to encode suggestions", zap.Error(err))
	}
}

func personFromForm(form url.Values) models.Person {
	return models.Person{
		FirstName:       strings.TrimSpace(form.Get("firstName")),
		LastName:        strings.TrimSpace(form.Get("lastName")),
		BirthMonth:      strings.TrimSpace(form.Get("birthMonth")),
		BirthDay:        atoi(form.Get("birthDay")),
		BirthYear:       atoi(form.Get("birthYear")),
		MobilePhone:     strings.TrimSpace(form.Get("mobilePhone")),
		HomePhone:       strings.TrimSpace(form.Get("homePhone")),
		WorkPhone:       strings.TrimSpace(form.Get("workPhone")),
		Email:           strings.TrimSpace(form.Get("email")),
		Address:         strings.TrimSpace(form.Get("address")),
		City:            strings.TrimSpace(form.Get("city")),
		State:           strings.TrimSpace(form.Get("state")),
		ZipCode:         strings.TrimSpace(form.Get("zipCode")),
		AnniversaryDate: strings.TrimSpace(form.Get("anniversaryDate")),
		Notes:           strings.TrimSpace(form.Get("notes")),
	}
}

func personUpdateFromForm(form url.Values) models.PersonUpdate {
	return models.PersonUpdate{
		FirstName:       formString(form, "firstName"),
		LastName:        formString(form, "lastName"),
		BirthMonth:      formString(form, "birthMonth"),
		BirthDay:        formInt(form, "birthDay"),
		BirthYear:       formInt(form, "birthYear"),
		MobilePhone:     formString(form, "mobilePhone"),
		HomePhone:       formString(form, "homePhone"),
		WorkPhone:       formString(form, "workPhone"),
		Email:           formString(form, "email"),
		Address:         formString(form, "address"),
		City:            formString(form, "city"),
		State:           formString(form, "state"),
		ZipCode:         formString(form, "zipCode"),
		AnniversaryDate: formString(form, "anniversaryDate"),
		Notes:           formString(form, "notes"),
	}
}

// formString returns the trimmed field, or nil when the form omits it
func formString(form url.Values, key string) *string {
	if !form.Has(key) {
		return nil
	}
	v := strings.TrimSpace(form.Get(key))
	return &v
}

// formInt returns the field as a number, or nil when the form omits it or
// it is not a whole number
func formInt(form url.Values, key string) *int {
	if !form.Has(key) {
		return nil
	}
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		zero := 0
		return &zero
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
