package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"familytree/internal/legacy"
	"familytree/internal/models"
	"familytree/internal/service"
)

// maxUploadSize bounds the request body of one legacy upload
const maxUploadSize = 32 << 20

// MigrationHandler imports legacy branch system exports
type MigrationHandler struct {
	store     *service.RelationshipService
	migrator  *service.MigrationService
	templates *template.Template
	logger    *zap.Logger
}

// NewMigrationHandler creates a new migration handler
func NewMigrationHandler(store *service.RelationshipService, migrator *service.MigrationService, templates *template.Template, logger *zap.Logger) *MigrationHandler {
	return &MigrationHandler{store: store, migrator: migrator, templates: templates, logger: logger}
}

func (h *MigrationHandler) page(r *http.Request, errMsg string) Page {
	return Page{
		Title:     "Migrate - Family Tree",
		User:      currentUser(r.Context()),
		CSRFToken: csrfToken(r.Context()),
		Error:     errMsg,
	}
}

// ShowMigrate renders the upload form
func (h *MigrationHandler) ShowMigrate(w http.ResponseWriter, r *http.Request) {
	render(h.logger, h.templates, w, http.StatusOK, "migrate", MigrateViewData{Page: h.page(r, "")})
}

// Migrate previews or runs a migration of the uploaded members and
// branches files, depending on the action field. The route caps the body
// with LimitBody.
func (h *MigrationHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	members, branches, err := h.readUpload(r)
	if err != nil {
		render(h.logger, h.templates, w, http.StatusBadRequest, "migrate", MigrateViewData{Page: h.page(r, err.Error())})
		return
	}

	if r.FormValue("action") != "migrate" {
		preview := h.migrator.Preview(members, branches)
		render(h.logger, h.templates, w, http.StatusOK, "migrate", MigrateViewData{
			Page:    h.page(r, ""),
			Preview: &preview,
		})
		return
	}

	result, err := h.migrator.Migrate(r.Context(), members, branches)
	if errors.Is(err, service.ErrMigrationInProgress) {
		render(h.logger, h.templates, w, http.StatusConflict, "migrate", MigrateViewData{Page: h.page(r, "A migration is already running")})
		return
	}
	if err != nil {
		// The migrator reloads the cache only after a complete run
		h.store.LoadAll(r.Context())
		h.logger.Error("legacy migration failed", zap.Error(err))
		msg := "Migration failed. Some records may already have been created; " +
			"inspect the people and families lists before trying again."
		render(h.logger, h.templates, w, http.StatusInternalServerError, "migrate", MigrateViewData{
			Page:   h.page(r, msg),
			Result: result,
		})
		return
	}

	render(h.logger, h.templates, w, http.StatusOK, "migrate", MigrateViewData{
		Page:   h.page(r, ""),
		Result: result,
	})
}

// readUpload parses the members file and the optional branches file
func (h *MigrationHandler) readUpload(r *http.Request) ([]models.LegacyMember, []models.LegacyBranch, error) {
	file, header, err := r.FormFile("members")
	if err != nil {
		return nil, nil, errors.New("a members file is required")
	}
	defer file.Close()

	members, err := legacy.ReadMembers(header.Filename, file)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read %s: %w", header.Filename, err)
	}

	branchFile, branchHeader, err := r.FormFile("branches")
	if errors.Is(err, http.ErrMissingFile) {
		return members, nil, nil
	}
	if err != nil {
		return nil, nil, errors.New("could not read the branches file")
	}
	defer branchFile.Close()

	branches, err := legacy.ReadBranches(branchHeader.Filename, branchFile)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read %s: %w", branchHeader.Filename, err)
	}
	return members, branches, nil
}

// Template downloads an empty XLSX workbook with the legacy columns
func (h *MigrationHandler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="familytree-legacy.xlsx"`)
	if err := legacy.WriteTemplate(w); err != nil {
		h.logger.Error("failed to write legacy template", zap.Error(err))
	}
}
