package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"familytree/internal/models"
	"familytree/internal/service"
	"familytree/internal/validation"
)

// FamilyHandler serves the family grid, family mutations and memberships
type FamilyHandler struct {
	store     *service.RelationshipService
	templates *template.Template
	logger    *zap.Logger
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(store *service.RelationshipService, templates *template.Template, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{store: store, templates: templates, logger: logger}
}

// ShowFamilies renders the filtered family grid
func (h *FamilyHandler) ShowFamilies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := service.FamilyFilter{
		Search: strings.TrimSpace(query.Get("q")),
		Type:   models.FamilyType(query.Get("type")),
	}
	h.render(w, r, http.StatusOK, filter, "")
}

func (h *FamilyHandler) render(w http.ResponseWriter, r *http.Request, status int, filter service.FamilyFilter, errMsg string) {
	families := h.store.FilterFamilies(filter)
	cards := make([]FamilyCard, 0, len(families))
	for _, f := range families {
		cards = append(cards, familyCard(h.store, f))
	}

	render(h.logger, h.templates, w, status, "families", FamiliesViewData{
		Page: Page{
			Title:     "Families - Family Tree",
			User:      currentUser(r.Context()),
			CSRFToken: csrfToken(r.Context()),
			Error:     errMsg,
		},
		Families: cards,
		People:   h.store.People(),
		Types:    models.FamilyTypes,
		Roles:    models.MemberRoles,
		Filter:   filter,
	})
}

// CreateFamily creates a family and a relationship for every checked
// initial member, using the member's role_<personID> field or child
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	family := models.Family{
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Description:     strings.TrimSpace(r.PostFormValue("description")),
		FamilyType:      models.FamilyType(r.PostFormValue("familyType")),
		GenerationLevel: atoi(r.PostFormValue("generationLevel")),
		Record:          models.Record{CreatedBy: createdBy(r.Context())},
	}
	if err := validation.Struct(validation.FamilyForm{Name: family.Name}); err != nil {
		h.render(w, r, http.StatusBadRequest, service.FamilyFilter{}, err.Error())
		return
	}

	created, err := h.store.CreateFamily(r.Context(), family)
	if err != nil {
		respondWithServiceError(h.logger, w, "failed to create family", err)
		return
	}

	for _, personID := range r.PostForm["members"] {
		role := models.Role(r.PostFormValue("role_" + personID))
		if role == "" {
			role = models.RoleChild
		}
		if _, err := h.store.AddRelationship(r.Context(), models.Relationship{
			PersonID: personID,
			FamilyID: created.ID,
			Role:     role,
			Record:   models.Record{CreatedBy: family.CreatedBy},
		}); err != nil {
			h.store.LoadAll(r.Context())
			respondWithServiceError(h.logger, w, "failed to add initial family member", err)
			return
		}
	}
	h.logger.Info("family created",
		zap.String("id", created.ID),
		zap.Int("members", len(r.PostForm["members"])),
	)

	h.store.LoadAll(r.Context())
	http.Redirect(w, r, "/families", http.StatusSeeOther)
}

// UpdateFamily applies the submitted fields to a family
func (h *FamilyHandler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	update := models.FamilyUpdate{
		Name:            formString(r.PostForm, "name"),
		Description:     formString(r.PostForm, "description"),
		GenerationLevel: formInt(r.PostForm, "generationLevel"),
	}
	if update.Name != nil && *update.Name == "" {
		http.Error(w, "Name cannot be blank", http.StatusBadRequest)
		return
	}
	if t := formString(r.PostForm, "familyType"); t != nil && *t != "" {
		familyType := models.FamilyType(*t)
		update.FamilyType = &familyType
	}

	if err := h.store.UpdateFamily(r.Context(), r.PathValue("id"), update); err != nil {
		respondWithServiceError(h.logger, w, "failed to update family", err)
		return
	}

	h.store.LoadAll(r.Context())
	http.Redirect(w, r, "/families", http.StatusSeeOther)
}

// DeleteFamily archives a family and its memberships
func (h *FamilyHandler) DeleteFamily(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteFamily(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(h.logger, w, "failed to delete family", err)
		return
	}

	h.store.LoadAll(r.Context())
	http.Redirect(w, r, "/families", http.StatusSeeOther)
}

// AddRelationship puts a person into a family with a role
func (h *FamilyHandler) AddRelationship(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	form := validation.RelationshipForm{
		PersonID: r.PostFormValue("personId"),
		FamilyID: r.PostFormValue("familyId"),
		Role:     strings.TrimSpace(r.PostFormValue("role")),
	}
	if err := validation.Struct(form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := h.store.GetPerson(form.PersonID); !ok {
		respondWithServiceError(h.logger, w, "", service.ErrPersonNotFound)
		return
	}
	if _, ok := h.store.GetFamily(form.FamilyID); !ok {
		respondWithServiceError(h.logger, w, "", service.ErrFamilyNotFound)
		return
	}

	if _, err := h.store.AddRelationship(r.Context(), models.Relationship{
		PersonID:             form.PersonID,
		FamilyID:             form.FamilyID,
		Role:                 models.Role(form.Role),
		RelationshipToOthers: strings.TrimSpace(r.PostFormValue("relationshipToOthers")),
		Record:               models.Record{CreatedBy: createdBy(r.Context())},
	}); err != nil {
		respondWithServiceError(h.logger, w, "failed to add relationship", err)
		return
	}

	h.store.LoadAll(r.Context())
	http.Redirect(w, r, "/people", http.StatusSeeOther)
}

// RemoveRelationship archives a membership
func (h *FamilyHandler) RemoveRelationship(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveRelationship(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(h.logger, w, "failed to remove relationship", err)
		return
	}

	h.store.LoadAll(r.Context())
	http.Redirect(w, r, "/families", http.StatusSeeOther)
}
