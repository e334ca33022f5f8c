package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"familytree/internal/kinship"
	"familytree/internal/metrics"
	"familytree/internal/models"
)

const (
	createdByMigration    = "migration_from_old_system"
	createdByAutoGrouping = "migration_auto_grouping"

	autoFamilyGeneration = 2
)

// ErrMigrationInProgress is returned when Migrate is called while another
// migration is still running
var ErrMigrationInProgress = errors.New("a migration is already in progress")

// MigrationService converts legacy members and branches into people,
// families and relationships
type MigrationService struct {
	store   *RelationshipService
	logger  *zap.Logger
	running atomic.Bool
}

// NewMigrationService creates a new migration service
func NewMigrationService(store *RelationshipService, logger *zap.Logger) *MigrationService {
	return &MigrationService{store: store, logger: logger}
}

// Migrate runs the three migration steps in order: people, branch families
// with their memberships, then last-name groups of unassigned members.
// Creations are sequential and never rolled back. On failure the error names
// the failing step and the returned result counts what was already created.
func (m *MigrationService) Migrate(ctx context.Context, members []models.LegacyMember, branches []models.LegacyBranch) (*models.MigrationResult, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, ErrMigrationInProgress
	}
	defer m.running.Store(false)

	m.logger.Info("starting legacy migration",
		zap.Int("members", len(members)),
		zap.Int("branches", len(branches)),
	)

	result := &models.MigrationResult{}
	now := m.store.Now()

	// Step 1: every member becomes a person
	personIDs := make([]string, len(members))
	for i, lm := range members {
		person, err := m.store.AddPerson(ctx, personFromLegacy(lm))
		if err != nil {
			return result, fmt.Errorf("failed to migrate member %q (%s %s): %w", lm.ID, lm.FirstName, lm.LastName, err)
		}
		personIDs[i] = person.ID
		result.PeopleCreated++
		metrics.MigrationRecords.WithLabelValues("person").Inc()
	}

	// Step 2: every branch becomes a family holding its members
	for _, branch := range branches {
		family, err := m.store.CreateFamily(ctx, models.Family{
			Name:            branch.Name,
			Description:     branch.Description,
			FamilyType:      kinship.FamilyTypeForBranch(branch.BranchType),
			GenerationLevel: branch.GenerationLevel,
			Record:          models.Record{CreatedBy: createdByMigration},
		})
		if err != nil {
			return result, fmt.Errorf("failed to migrate branch %q: %w", branch.Name, err)
		}
		result.FamiliesCreated++
		metrics.MigrationRecords.WithLabelValues("family").Inc()

		for i, lm := range members {
			if lm.FamilyBranch != branch.Name {
				continue
			}
			_, err := m.store.AddRelationship(ctx, models.Relationship{
				PersonID:             personIDs[i],
				FamilyID:             family.ID,
				Role:                 kinship.InferRole(lm.Relationship, kinship.Age(lm.BirthYear, now)),
				RelationshipToOthers: lm.Relationship,
				Record:               models.Record{CreatedBy: createdByMigration},
			})
			if err != nil {
				return result, fmt.Errorf("failed to add %s %s to branch %q: %w", lm.FirstName, lm.LastName, branch.Name, err)
			}
			result.RelationshipsCreated++
			metrics.MigrationRecords.WithLabelValues("relationship").Inc()
		}
	}

	// Step 3: unassigned members sharing a last name are grouped together
	order, groups := groupUnassigned(members)
	for _, lastName := range order {
		group := groups[lastName]
		if len(group) < 2 {
			continue
		}
		family, err := m.store.CreateFamily(ctx, models.Family{
			Name:            lastName + " Family",
			Description:     fmt.Sprintf("Auto-created family for unassigned %s members", lastName),
			FamilyType:      models.FamilyNuclear,
			GenerationLevel: autoFamilyGeneration,
			Record:          models.Record{CreatedBy: createdByAutoGrouping},
		})
		if err != nil {
			return result, fmt.Errorf("failed to create %s family for unassigned members: %w", lastName, err)
		}
		result.FamiliesCreated++
		metrics.MigrationRecords.WithLabelValues("family").Inc()

		for _, i := range group {
			lm := members[i]
			_, err := m.store.AddRelationship(ctx, models.Relationship{
				PersonID: personIDs[i],
				FamilyID: family.ID,
				Role:     kinship.InferRole("", kinship.Age(lm.BirthYear, now)),
				Record:   models.Record{CreatedBy: createdByAutoGrouping},
			})
			if err != nil {
				return result, fmt.Errorf("failed to add %s %s to %s family: %w", lm.FirstName, lm.LastName, lastName, err)
			}
			result.RelationshipsCreated++
			metrics.MigrationRecords.WithLabelValues("relationship").Inc()
		}
	}

	m.logger.Info("legacy migration completed",
		zap.Int("people", result.PeopleCreated),
		zap.Int("families", result.FamiliesCreated),
		zap.Int("relationships", result.RelationshipsCreated),
	)

	m.store.LoadAll(ctx)
	return result, nil
}

// Preview estimates what Migrate would create without writing anything
func (m *MigrationService) Preview(members []models.LegacyMember, branches []models.LegacyBranch) models.MigrationPreview {
	order, groups := groupUnassigned(members)
	preview := models.MigrationPreview{
		People:            len(members),
		Branches:          len(branches),
		EstimatedFamilies: len(branches),
	}
	for _, lastName := range order {
		preview.Unassigned += len(groups[lastName])
		if len(groups[lastName]) >= 2 {
			preview.EstimatedFamilies++
		}
	}
	return preview
}

// groupUnassigned buckets members without a branch by exact last name.
// Buckets hold member indexes; order lists last names as first seen.
func groupUnassigned(members []models.LegacyMember) ([]string, map[string][]int) {
	var order []string
	groups := map[string][]int{}
	for i, lm := range members {
		if strings.TrimSpace(lm.FamilyBranch) != "" {
			continue
		}
		if _, ok := groups[lm.LastName]; !ok {
			order = append(order, lm.LastName)
		}
		groups[lm.LastName] = append(groups[lm.LastName], i)
	}
	return order, groups
}

func personFromLegacy(lm models.LegacyMember) models.Person {
	return models.Person{
		FirstName:       lm.FirstName,
		LastName:        lm.LastName,
		BirthMonth:      lm.BirthMonth,
		BirthDay:        lm.BirthDay,
		BirthYear:       lm.BirthYear,
		MobilePhone:     lm.MobilePhone,
		HomePhone:       lm.HomePhone,
		WorkPhone:       lm.WorkPhone,
		Email:           lm.Email,
		Address:         lm.Address,
		City:            lm.City,
		State:           lm.State,
		ZipCode:         lm.ZipCode,
		AnniversaryDate: lm.AnniversaryDate,
		Notes:           lm.Notes,
		Record:          models.Record{CreatedBy: createdByMigration},
	}
}
