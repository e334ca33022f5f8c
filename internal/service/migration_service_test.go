package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familytree/internal/models"
)

func TestMigrateBranchMember(t *testing.T) {
	env := newTestEnv(t, nil) // 2024
	m := NewMigrationService(env.svc, zap.NewNop())
	ctx := context.Background()

	members := []models.LegacyMember{
		{ID: "m1", FirstName: "John", LastName: "Smith", BirthYear: 1950, BirthMonth: "March", BirthDay: 3,
			Email: "john@example.com", FamilyBranch: "Smith Grandparents", Relationship: "Father"},
	}
	branches := []models.LegacyBranch{
		{Name: "Smith Grandparents", Description: "The elders", BranchType: "grandparent_branch", GenerationLevel: 1},
	}

	result, err := m.Migrate(ctx, members, branches)
	require.NoError(t, err)
	assert.Equal(t, models.MigrationResult{PeopleCreated: 1, FamiliesCreated: 1, RelationshipsCreated: 1}, *result)

	// Migrate reloads the cache itself
	people := env.svc.People()
	require.Len(t, people, 1)
	assert.Equal(t, "john@example.com", people[0].Email)
	assert.Equal(t, createdByMigration, people[0].CreatedBy)

	families := env.svc.Families()
	require.Len(t, families, 1)
	assert.Equal(t, "Smith Grandparents", families[0].Name)
	assert.Equal(t, models.FamilyExtended, families[0].FamilyType)
	assert.Equal(t, 1, families[0].GenerationLevel)

	members2 := env.svc.FamilyMembers(families[0].ID)
	require.Len(t, members2, 1)
	assert.Equal(t, models.RoleParent, members2[0].Relationship.Role)
	assert.Equal(t, "Father", members2[0].Relationship.RelationshipToOthers)
	require.NotNil(t, members2[0].Person)
	assert.Equal(t, "John", members2[0].Person.FirstName)
}

func TestMigrateAutoGroupsUnassigned(t *testing.T) {
	env := newTestEnv(t, nil)
	m := NewMigrationService(env.svc, zap.NewNop())
	ctx := context.Background()

	members := []models.LegacyMember{
		{ID: "1", FirstName: "Amy", LastName: "Jones", BirthYear: 1980},
		{ID: "2", FirstName: "Ben", LastName: "Jones", BirthYear: 2015},
		{ID: "3", FirstName: "Lin", LastName: "Lee", FamilyBranch: "   "},
	}

	result, err := m.Migrate(ctx, members, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.PeopleCreated)
	assert.Equal(t, 1, result.FamiliesCreated)
	assert.Equal(t, 2, result.RelationshipsCreated)

	families := env.svc.Families()
	require.Len(t, families, 1)
	assert.Equal(t, "Jones Family", families[0].Name)
	assert.Equal(t, models.FamilyNuclear, families[0].FamilyType)
	assert.Equal(t, 2, families[0].GenerationLevel)
	assert.Equal(t, createdByAutoGrouping, families[0].CreatedBy)

	roles := map[string]models.Role{}
	for _, fm := range env.svc.FamilyMembers(families[0].ID) {
		roles[fm.Person.FirstName] = fm.Relationship.Role
	}
	assert.Equal(t, map[string]models.Role{"Amy": models.RoleAdultChild, "Ben": models.RoleChild}, roles)

	var lee *models.Person
	for _, p := range env.svc.People() {
		if p.LastName == "Lee" {
			lee = &p
		}
	}
	require.NotNil(t, lee)
	assert.Empty(t, env.svc.PersonFamilies(lee.ID), "a lone unassigned member gets no family")
}

func TestMigrateBranchTypes(t *testing.T) {
	tests := []struct {
		branchType string
		want       models.FamilyType
	}{
		{"ancestral_branch", models.FamilyAncestral},
		{"extended_family", models.FamilyExtended},
		{"nuclear_family", models.FamilyNuclear},
		{"something_else", models.FamilyNuclear},
	}
	for _, tt := range tests {
		t.Run(tt.branchType, func(t *testing.T) {
			env := newTestEnv(t, nil)
			m := NewMigrationService(env.svc, zap.NewNop())
			_, err := m.Migrate(context.Background(), nil, []models.LegacyBranch{{Name: "B", BranchType: tt.branchType}})
			require.NoError(t, err)
			families := env.svc.Families()
			require.Len(t, families, 1)
			assert.Equal(t, tt.want, families[0].FamilyType)
		})
	}
}

func TestMigrateEveryMemberBecomesAPerson(t *testing.T) {
	env := newTestEnv(t, nil)
	m := NewMigrationService(env.svc, zap.NewNop())

	var members []models.LegacyMember
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		members = append(members, models.LegacyMember{FirstName: name, LastName: "Same", FamilyBranch: "Branch"})
	}
	// a duplicate legacy id still yields its own person
	members = append(members, models.LegacyMember{ID: "dup", FirstName: "F", LastName: "X"}, models.LegacyMember{ID: "dup", FirstName: "G", LastName: "Y"})

	result, err := m.Migrate(context.Background(), members, []models.LegacyBranch{{Name: "Branch"}})
	require.NoError(t, err)
	assert.Equal(t, len(members), result.PeopleCreated)
	assert.Len(t, env.svc.People(), len(members))
	assert.Equal(t, 5, result.RelationshipsCreated)
}

func TestMigratePartialFailure(t *testing.T) {
	store := newFaultyStore()
	env := newTestEnv(t, store)
	m := NewMigrationService(env.svc, zap.NewNop())

	store.insertsLeft = 1
	members := []models.LegacyMember{
		{ID: "1", FirstName: "Ann", LastName: "Smith"},
		{ID: "2", FirstName: "Bob", LastName: "Smith"},
	}

	result, err := m.Migrate(context.Background(), members, nil)
	require.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "Bob Smith")
	require.NotNil(t, result)
	assert.Equal(t, 1, result.PeopleCreated, "records created before the failure are counted and kept")
	assert.Zero(t, result.FamiliesCreated)

	// the partial migration is left in the store
	require.NoError(t, env.svc.LoadPeople(context.Background()))
	assert.Len(t, env.svc.People(), 1)

	// a later run is not blocked
	store.insertsLeft = -1
	_, err = m.Migrate(context.Background(), nil, nil)
	require.NoError(t, err)
}

func TestMigrateRejectsConcurrentRun(t *testing.T) {
	env := newTestEnv(t, nil)
	m := NewMigrationService(env.svc, zap.NewNop())

	m.running.Store(true)
	_, err := m.Migrate(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrMigrationInProgress)

	m.running.Store(false)
	_, err = m.Migrate(context.Background(), nil, nil)
	require.NoError(t, err)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, nil)
	m := NewMigrationService(env.svc, zap.NewNop())

	members := []models.LegacyMember{
		{LastName: "Jones"},
		{LastName: "Jones"},
		{LastName: "Lee"},
		{LastName: "Smith", FamilyBranch: "Smiths"},
	}
	branches := []models.LegacyBranch{{Name: "Smiths"}, {Name: "Empty"}}

	preview := m.Preview(members, branches)
	assert.Equal(t, models.MigrationPreview{People: 4, Branches: 2, EstimatedFamilies: 3, Unassigned: 3}, preview)
	assert.Empty(t, env.svc.People(), "preview writes nothing")

	result, err := m.Migrate(context.Background(), members, branches)
	require.NoError(t, err)
	assert.Equal(t, preview.EstimatedFamilies, result.FamiliesCreated)
}
