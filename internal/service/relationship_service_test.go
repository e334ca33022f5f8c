package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"familytree/internal/docstore"
	"familytree/internal/models"
)

func addPerson(t *testing.T, svc *RelationshipService, first, last string) *models.Person {
	t.Helper()
	p, err := svc.AddPerson(context.Background(), models.Person{FirstName: first, LastName: last})
	require.NoError(t, err)
	return p
}

func addFamily(t *testing.T, svc *RelationshipService, name string, ft models.FamilyType) *models.Family {
	t.Helper()
	f, err := svc.CreateFamily(context.Background(), models.Family{Name: name, FamilyType: ft})
	require.NoError(t, err)
	return f
}

func link(t *testing.T, svc *RelationshipService, p *models.Person, f *models.Family, role models.Role) *models.Relationship {
	t.Helper()
	r, err := svc.AddRelationship(context.Background(), models.Relationship{PersonID: p.ID, FamilyID: f.ID, Role: role})
	require.NoError(t, err)
	return r
}

func TestAddStampsMetadata(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	p, err := env.svc.AddPerson(ctx, models.Person{FirstName: "Ann", LastName: "Smith", Record: models.Record{CreatedBy: "alice"}})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.IsActive)
	assert.Equal(t, "alice", p.CreatedBy)
	assert.True(t, p.CreatedAt.Equal(testNow))

	f, err := env.svc.CreateFamily(ctx, models.Family{Name: "Smith"})
	require.NoError(t, err)
	assert.Equal(t, models.FamilyNuclear, f.FamilyType, "empty type defaults to nuclear")
	assert.Equal(t, 0, f.GenerationLevel)

	stored, err := env.svc.FetchFamily(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FamilyNuclear, stored.FamilyType)
}

func TestUpdateDoesNotRefreshCache(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	p := addPerson(t, env.svc, "Ann", "Smith")
	env.svc.LoadAll(ctx)

	name := "Anne"
	env.clockNow = testNow.Add(time.Hour)
	require.NoError(t, env.svc.UpdatePerson(ctx, p.ID, models.PersonUpdate{FirstName: &name}))

	cached, ok := env.svc.GetPerson(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Ann", cached.FirstName)

	stored, err := env.svc.FetchPerson(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anne", stored.FirstName)
	assert.Equal(t, "Smith", stored.LastName)
	require.NotNil(t, stored.UpdatedAt)
	assert.True(t, stored.UpdatedAt.Equal(env.clockNow))
	assert.True(t, stored.CreatedAt.Equal(testNow), "identity fields are not rewritten")

	env.svc.LoadAll(ctx)
	cached, _ = env.svc.GetPerson(p.ID)
	assert.Equal(t, "Anne", cached.FirstName)
}

func TestUpdateRelationship(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	ann := addPerson(t, env.svc, "Ann", "Smith")
	smith := addFamily(t, env.svc, "Smith", models.FamilyNuclear)
	rel, err := env.svc.AddRelationship(ctx, models.Relationship{
		PersonID:             ann.ID,
		FamilyID:             smith.ID,
		Role:                 models.RoleChild,
		RelationshipToOthers: "eldest daughter",
		StartDate:            "1990-04-01",
		Record:               models.Record{CreatedBy: "alice"},
	})
	require.NoError(t, err)
	env.svc.LoadAll(ctx)

	role := models.RoleSpouse
	endDate := "2020-01-31"
	env.clockNow = testNow.Add(2 * time.Hour)
	require.NoError(t, env.svc.UpdateRelationship(ctx, rel.ID, models.RelationshipUpdate{Role: &role, EndDate: &endDate}))

	cached := env.svc.PersonRelationships(ann.ID)
	require.Len(t, cached, 1)
	assert.Equal(t, models.RoleChild, cached[0].Role, "cache is stale until LoadAll")

	stored, err := env.svc.FetchRelationship(ctx, rel.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSpouse, stored.Role)
	assert.Equal(t, "2020-01-31", stored.EndDate)
	assert.Equal(t, "eldest daughter", stored.RelationshipToOthers)
	assert.Equal(t, "1990-04-01", stored.StartDate)
	assert.Equal(t, ann.ID, stored.PersonID)
	assert.Equal(t, smith.ID, stored.FamilyID)
	assert.Equal(t, "alice", stored.CreatedBy)
	assert.True(t, stored.IsActive)
	assert.True(t, stored.CreatedAt.Equal(testNow))
	require.NotNil(t, stored.UpdatedAt)
	assert.True(t, stored.UpdatedAt.Equal(env.clockNow))

	env.svc.LoadAll(ctx)
	cached = env.svc.PersonRelationships(ann.ID)
	require.Len(t, cached, 1)
	assert.Equal(t, models.RoleSpouse, cached[0].Role)
	assert.Equal(t, "2020-01-31", cached[0].EndDate)

	err = env.svc.UpdateRelationship(ctx, "nope", models.RelationshipUpdate{Role: &role})
	require.ErrorIs(t, err, ErrRelationshipNotFound)
}

func TestUpdateMissingReturnsSentinel(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	name := "x"

	require.ErrorIs(t, env.svc.UpdatePerson(ctx, "nope", models.PersonUpdate{FirstName: &name}), ErrPersonNotFound)
	require.ErrorIs(t, env.svc.UpdateFamily(ctx, "nope", models.FamilyUpdate{Name: &name}), ErrFamilyNotFound)
	require.ErrorIs(t, env.svc.RemoveRelationship(ctx, "nope"), ErrRelationshipNotFound)
	require.ErrorIs(t, env.svc.DeleteFamily(ctx, "nope"), ErrFamilyNotFound)
	_, err := env.svc.FetchPerson(ctx, "nope")
	require.ErrorIs(t, err, ErrPersonNotFound)
}

func TestDeletePersonIsSoft(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	people := []*models.Person{
		addPerson(t, env.svc, "Ann", "Smith"),
		addPerson(t, env.svc, "Bob", "Jones"),
		addPerson(t, env.svc, "Cat", "Lee"),
	}

	for _, p := range people {
		require.NoError(t, env.svc.DeletePerson(ctx, p.ID))

		stored, err := env.svc.FetchPerson(ctx, p.ID)
		require.NoError(t, err, "deleted people remain fetchable")
		assert.Equal(t, models.Archived, stored.Lifecycle())
		require.NotNil(t, stored.DeletedAt)
		assert.True(t, stored.DeletedAt.Equal(testNow))
		assert.Equal(t, p.FirstName, stored.FirstName)
	}

	env.svc.LoadAll(ctx)
	assert.Empty(t, env.svc.People())
}

func TestDeleteFamilyCascades(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	smith := addFamily(t, env.svc, "Smith", models.FamilyNuclear)
	jones := addFamily(t, env.svc, "Jones", models.FamilyExtended)
	ann := addPerson(t, env.svc, "Ann", "Smith")
	bob := addPerson(t, env.svc, "Bob", "Smith")

	r1 := link(t, env.svc, ann, smith, models.RoleParent)
	r2 := link(t, env.svc, bob, smith, models.RoleChild)
	r3 := link(t, env.svc, ann, jones, models.RoleSpouse)

	// The cache is deliberately never loaded: the cascade must not depend on it.
	require.NoError(t, env.svc.DeleteFamily(ctx, smith.ID))

	for _, id := range []string{r1.ID, r2.ID} {
		rel, err := env.svc.FetchRelationship(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.Archived, rel.Lifecycle())
		assert.NotNil(t, rel.DeletedAt)
	}
	other, err := env.svc.FetchRelationship(ctx, r3.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Active, other.Lifecycle())

	fam, err := env.svc.FetchFamily(ctx, smith.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Archived, fam.Lifecycle())

	env.svc.LoadAll(ctx)
	assert.Empty(t, env.svc.FamilyMembers(smith.ID))
	require.Len(t, env.svc.PersonFamilies(ann.ID), 1)
}

func TestDeleteFamilyFailureArchivesNothing(t *testing.T) {
	store := newFaultyStore()
	env := newTestEnv(t, store)
	ctx := context.Background()

	fam := addFamily(t, env.svc, "Smith", models.FamilyNuclear)
	rel := link(t, env.svc, addPerson(t, env.svc, "Ann", "Smith"), fam, models.RoleParent)

	store.failApply = true
	require.ErrorIs(t, env.svc.DeleteFamily(ctx, fam.ID), errBroken)

	storedFam, err := env.svc.FetchFamily(ctx, fam.ID)
	require.NoError(t, err)
	assert.True(t, storedFam.IsActive)
	storedRel, err := env.svc.FetchRelationship(ctx, rel.ID)
	require.NoError(t, err)
	assert.True(t, storedRel.IsActive)
}

func TestLoadAllToleratesFailures(t *testing.T) {
	store := newFaultyStore()
	env := newTestEnv(t, store)
	ctx := context.Background()

	ann := addPerson(t, env.svc, "Ann", "Smith")
	fam := addFamily(t, env.svc, "Smith", models.FamilyNuclear)
	link(t, env.svc, ann, fam, models.RoleParent)
	env.svc.LoadAll(ctx)
	peopleLoadedAt := env.svc.LoadedAt(docstore.People)
	require.False(t, peopleLoadedAt.IsZero())

	addPerson(t, env.svc, "Bob", "Smith")
	addFamily(t, env.svc, "Jones", models.FamilyMixed)
	store.setFailFind(docstore.People, true)
	env.clockNow = testNow.Add(time.Minute)

	env.svc.LoadAll(ctx)

	assert.Len(t, env.svc.People(), 1, "failed collection keeps its stale contents")
	assert.Equal(t, peopleLoadedAt, env.svc.LoadedAt(docstore.People))
	assert.Len(t, env.svc.Families(), 2, "other loads still complete")
	assert.Equal(t, env.clockNow, env.svc.LoadedAt(docstore.Families))
	assert.Len(t, env.svc.FamilyMembers(fam.ID), 1)

	errs := env.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Equal(t, docstore.People, errs[0].ContextMap()["collection"])

	require.Error(t, env.svc.LoadPeople(ctx), "individual loads report their error")

	store.setFailFind(docstore.People, false)
	env.svc.LoadAll(ctx)
	assert.Len(t, env.svc.People(), 2)
}

func TestJoinsAreMutuallyConsistent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	ann := addPerson(t, env.svc, "Ann", "Smith")
	bob := addPerson(t, env.svc, "Bob", "Smith")
	cat := addPerson(t, env.svc, "Cat", "Jones")
	smith := addFamily(t, env.svc, "Smith", models.FamilyNuclear)
	jones := addFamily(t, env.svc, "Jones", models.FamilyExtended)

	link(t, env.svc, ann, smith, models.RoleParent)
	link(t, env.svc, bob, smith, models.RoleChild)
	link(t, env.svc, ann, jones, models.RoleSpouse)
	removed := link(t, env.svc, cat, smith, models.RoleGuardian)
	require.NoError(t, env.svc.RemoveRelationship(ctx, removed.ID))
	link(t, env.svc, cat, jones, models.RoleParent)

	env.svc.LoadAll(ctx)

	people := []*models.Person{ann, bob, cat}
	families := []*models.Family{smith, jones}
	for _, p := range people {
		for _, f := range families {
			inMembers := false
			for _, m := range env.svc.FamilyMembers(f.ID) {
				if m.Relationship.PersonID == p.ID {
					inMembers = true
				}
			}
			inFamilies := false
			for _, pf := range env.svc.PersonFamilies(p.ID) {
				if pf.Relationship.FamilyID == f.ID {
					inFamilies = true
				}
			}
			assert.Equal(t, inMembers, inFamilies, "%s in %s", p.FirstName, f.Name)
		}
	}

	assert.Len(t, env.svc.FamilyMembers(smith.ID), 2)
	assert.Len(t, env.svc.PersonRelationships(ann.ID), 2)
	assert.Len(t, env.svc.PersonFamilies(cat.ID), 1)
}

func TestJoinToleratesMissingPerson(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	ann := addPerson(t, env.svc, "Ann", "Smith")
	fam := addFamily(t, env.svc, "Smith", models.FamilyNuclear)
	link(t, env.svc, ann, fam, models.RoleParent)
	require.NoError(t, env.svc.DeletePerson(ctx, ann.ID))
	env.svc.LoadAll(ctx)

	members := env.svc.FamilyMembers(fam.ID)
	require.Len(t, members, 1)
	assert.Nil(t, members[0].Person)
}

func TestGroupMembersByRole(t *testing.T) {
	env := newTestEnv(t, nil)
	members := []models.FamilyMember{
		{Relationship: models.Relationship{ID: "1", Role: models.RoleChild}},
		{Relationship: models.Relationship{ID: "2", Role: models.RoleParent}},
		{Relationship: models.Relationship{ID: "3", Role: models.RoleChild}},
	}

	groups := env.svc.GroupMembersByRole(members)
	require.Len(t, groups, 2)
	assert.Equal(t, models.RoleChild, groups[0].Role)
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, models.RoleParent, groups[1].Role)
}

func TestFilters(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	ann := addPerson(t, env.svc, "Ann", "Smith")
	bob := addPerson(t, env.svc, "Bob", "Smithers")
	cat := addPerson(t, env.svc, "Cat", "Jones")
	smith := addFamily(t, env.svc, "Smith", models.FamilyNuclear)
	f2, err := env.svc.CreateFamily(ctx, models.Family{Name: "Old Line", Description: "the Jones ancestors", FamilyType: models.FamilyAncestral})
	require.NoError(t, err)
	link(t, env.svc, ann, smith, models.RoleParent)
	link(t, env.svc, bob, smith, models.RoleChild)
	link(t, env.svc, cat, f2, models.RoleChild)
	env.svc.LoadAll(ctx)

	names := func(people []models.Person) []string {
		var out []string
		for _, p := range people {
			out = append(out, p.FirstName)
		}
		return out
	}

	tests := []struct {
		name   string
		filter PeopleFilter
		want   []string
	}{
		{"no filter", PeopleFilter{}, []string{"Ann", "Bob", "Cat"}},
		{"search last name", PeopleFilter{Search: "SMITH"}, []string{"Ann", "Bob"}},
		{"search first name", PeopleFilter{Search: "ca"}, []string{"Cat"}},
		{"role", PeopleFilter{Role: models.RoleChild}, []string{"Bob", "Cat"}},
		{"family", PeopleFilter{FamilyID: smith.ID}, []string{"Ann", "Bob"}},
		{"role and family", PeopleFilter{Role: models.RoleChild, FamilyID: smith.ID}, []string{"Bob"}},
		{"no match", PeopleFilter{Search: "zed"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, names(env.svc.FilterPeople(tt.filter)))
		})
	}

	assert.Len(t, env.svc.FilterFamilies(FamilyFilter{Search: "jones"}), 1, "description is searched")
	assert.Len(t, env.svc.FilterFamilies(FamilyFilter{Type: models.FamilyNuclear}), 1)
	assert.Len(t, env.svc.FilterFamilies(FamilyFilter{}), 2)
}

func TestSuggestRelationships(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	ann := addPerson(t, env.svc, "Ann", "Smith")
	bob := addPerson(t, env.svc, "Bob", "Smith")
	gone := addPerson(t, env.svc, "Gus", "Smith")
	lee := addPerson(t, env.svc, "Lee", "Park")
	require.NoError(t, env.svc.DeletePerson(ctx, gone.ID))
	fam := addFamily(t, env.svc, "Park", models.FamilyNuclear)
	link(t, env.svc, lee, fam, models.RoleParent)
	env.svc.LoadAll(ctx)

	got := env.svc.SuggestRelationships(ann.ID)
	want := []models.Suggestion{
		{
			Type:        models.SuggestCreateFamily,
			Title:       "Create Smith Family",
			Description: "Create a family with 2 Smith members",
			PersonIDs:   []string{ann.ID, bob.ID},
		},
		{
			Type:        models.SuggestCreateNuclearFamily,
			Title:       "Create Nuclear Family for Ann",
			Description: "Start a nuclear family where this person can be a parent or child",
			PersonIDs:   []string{ann.ID},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SuggestRelationships mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, env.svc.SuggestRelationships(lee.ID), "no namesakes and already in a family")
	assert.Empty(t, env.svc.SuggestRelationships("unknown"))
}

func TestUpcomingBirthdays(t *testing.T) {
	env := newTestEnv(t, nil) // today is 2024-06-15
	ctx := context.Background()

	add := func(first, last, month string, day, year int) *models.Person {
		p, err := env.svc.AddPerson(ctx, models.Person{FirstName: first, LastName: last, BirthMonth: month, BirthDay: day, BirthYear: year})
		require.NoError(t, err)
		return p
	}
	today := add("Tia", "Today", "June", 15, 1990)
	add("Zed", "Young", "June", 20, 2010)
	add("Amy", "Young", "June", 20, 0)
	add("Abe", "Adams", "June", 20, 1950)
	add("Old", "Past", "June", 14, 1980)
	add("Far", "Away", "September", 1, 1980)
	add("No", "Month", "", 5, 1980)
	add("Bad", "Month", "Juno", 5, 1980)
	add("No", "Day", "July", 0, 1980)
	fam := addFamily(t, env.svc, "Today Clan", models.FamilyMixed)
	link(t, env.svc, today, fam, models.RoleParent)
	env.svc.LoadAll(ctx)

	got := env.svc.UpcomingBirthdays(30)
	require.Len(t, got, 4)

	type row struct {
		Name string
		Days int
		Age  int
	}
	var rows []row
	for _, b := range got {
		rows = append(rows, row{b.Person.FirstName + " " + b.Person.LastName, b.DaysUntil, b.Age})
	}
	want := []row{
		{"Tia Today", 0, 34},
		{"Abe Adams", 5, 74},
		{"Amy Young", 5, 25},
		{"Zed Young", 5, 14},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("UpcomingBirthdays mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Today Clan"}, got[0].FamilyNames)
	assert.True(t, got[0].NextBirthday.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))

	// Idempotent with no intervening mutation
	again := env.svc.UpcomingBirthdays(30)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("second projection differs (-first +second):\n%s", diff)
	}

	assert.Len(t, env.svc.UpcomingBirthdays(0), 4, "non-positive horizon means 30 days")
	assert.Len(t, env.svc.UpcomingBirthdays(4), 1)
	assert.Len(t, env.svc.UpcomingBirthdays(365), 6)
}

func TestNextBirthdayRollsOver(t *testing.T) {
	env := newTestEnv(t, nil)
	p := &models.Person{BirthMonth: "January", BirthDay: 1}

	next, ok := env.svc.NextBirthday(p)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), next)

	days, ok := env.svc.DaysUntilBirthday(p)
	require.True(t, ok)
	assert.Equal(t, 200, days)

	_, ok = env.svc.DaysUntilBirthday(&models.Person{})
	assert.False(t, ok)
	assert.Equal(t, 25, env.svc.Age(&models.Person{}))
}
