package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"familytree/internal/kinship"
	"familytree/internal/models"
)

// DefaultBirthdayHorizon is used when no positive horizon is given
const DefaultBirthdayHorizon = 30

// PeopleFilter narrows the people grid. Empty fields match everyone.
type PeopleFilter struct {
	Search   string
	Role     models.Role
	FamilyID string
}

// FamilyFilter narrows the family grid. Empty fields match everything.
type FamilyFilter struct {
	Search string
	Type   models.FamilyType
}

// GetPerson looks up an active person in the cache
func (s *RelationshipService) GetPerson(id string) (*models.Person, bool) {
	return s.cache.Snapshot().Person(id)
}

// GetFamily looks up an active family in the cache
func (s *RelationshipService) GetFamily(id string) (*models.Family, bool) {
	return s.cache.Snapshot().Family(id)
}

// People returns the cached active people
func (s *RelationshipService) People() []models.Person {
	var out []models.Person
	for _, p := range s.cache.Snapshot().People {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// Families returns the cached active families
func (s *RelationshipService) Families() []models.Family {
	var out []models.Family
	for _, f := range s.cache.Snapshot().Families {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out
}

// PersonRelationships returns the active relationships of a person
func (s *RelationshipService) PersonRelationships(personID string) []models.Relationship {
	var out []models.Relationship
	for _, rel := range s.cache.Snapshot().Relationships {
		if rel.PersonID == personID && rel.IsActive {
			out = append(out, rel)
		}
	}
	return out
}

// FamilyMembers joins the active relationships of a family to their people.
// Person is nil for people missing from the cache.
func (s *RelationshipService) FamilyMembers(familyID string) []models.FamilyMember {
	snap := s.cache.Snapshot()
	var out []models.FamilyMember
	for _, rel := range snap.Relationships {
		if rel.FamilyID != familyID || !rel.IsActive {
			continue
		}
		person, _ := snap.Person(rel.PersonID)
		out = append(out, models.FamilyMember{Person: person, Relationship: rel})
	}
	return out
}

// PersonFamilies joins the active relationships of a person to their
// families. Family is nil for families missing from the cache.
func (s *RelationshipService) PersonFamilies(personID string) []models.PersonFamily {
	snap := s.cache.Snapshot()
	var out []models.PersonFamily
	for _, rel := range snap.Relationships {
		if rel.PersonID != personID || !rel.IsActive {
			continue
		}
		family, _ := snap.Family(rel.FamilyID)
		out = append(out, models.PersonFamily{Family: family, Relationship: rel})
	}
	return out
}

// GroupMembersByRole groups members by role, keeping the order in which each
// role first appears
func (s *RelationshipService) GroupMembersByRole(members []models.FamilyMember) []models.RoleGroup {
	var groups []models.RoleGroup
	index := map[models.Role]int{}
	for _, m := range members {
		i, ok := index[m.Relationship.Role]
		if !ok {
			i = len(groups)
			index[m.Relationship.Role] = i
			groups = append(groups, models.RoleGroup{Role: m.Relationship.Role})
		}
		groups[i].Members = append(groups[i].Members, m)
	}
	return groups
}

// FilterPeople applies a case-insensitive name search plus role and family
// filters to the cached active people
func (s *RelationshipService) FilterPeople(filter PeopleFilter) []models.Person {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []models.Person
	for _, p := range s.People() {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FirstName), search) &&
			!strings.Contains(strings.ToLower(p.LastName), search) {
			continue
		}
		if filter.Role != "" || filter.FamilyID != "" {
			rels := s.PersonRelationships(p.ID)
			if filter.Role != "" && !anyRelationship(rels, func(r models.Relationship) bool { return r.Role == filter.Role }) {
				continue
			}
			if filter.FamilyID != "" && !anyRelationship(rels, func(r models.Relationship) bool { return r.FamilyID == filter.FamilyID }) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func anyRelationship(rels []models.Relationship, match func(models.Relationship) bool) bool {
	for _, r := range rels {
		if match(r) {
			return true
		}
	}
	return false
}

// FilterFamilies applies a case-insensitive name or description search and a
// type filter to the cached active families
func (s *RelationshipService) FilterFamilies(filter FamilyFilter) []models.Family {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []models.Family
	for _, f := range s.Families() {
		if search != "" &&
			!strings.Contains(strings.ToLower(f.Name), search) &&
			!strings.Contains(strings.ToLower(f.Description), search) {
			continue
		}
		if filter.Type != "" && f.FamilyType != filter.Type {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SuggestRelationships proposes families for a person from the cache: one
// with every other active person sharing the last name, and a first nuclear
// family when the person belongs to none. Unknown people get no suggestions.
func (s *RelationshipService) SuggestRelationships(personID string) []models.Suggestion {
	person, ok := s.GetPerson(personID)
	if !ok {
		return nil
	}

	var suggestions []models.Suggestion

	ids := []string{person.ID}
	for _, p := range s.People() {
		if p.ID != person.ID && p.LastName == person.LastName {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) > 1 {
		suggestions = append(suggestions, models.Suggestion{
			Type:        models.SuggestCreateFamily,
			Title:       fmt.Sprintf("Create %s Family", person.LastName),
			Description: fmt.Sprintf("Create a family with %d %s members", len(ids), person.LastName),
			PersonIDs:   ids,
		})
	}

	if len(s.PersonFamilies(personID)) == 0 {
		suggestions = append(suggestions, models.Suggestion{
			Type:        models.SuggestCreateNuclearFamily,
			Title:       fmt.Sprintf("Create Nuclear Family for %s", person.FirstName),
			Description: "Start a nuclear family where this person can be a parent or child",
			PersonIDs:   []string{person.ID},
		})
	}

	return suggestions
}

// NextBirthday returns the person's next birthday on or after today
func (s *RelationshipService) NextBirthday(p *models.Person) (time.Time, bool) {
	return kinship.NextBirthday(p.BirthMonth, p.BirthDay, s.now())
}

// DaysUntilBirthday returns the whole days until the person's next birthday
func (s *RelationshipService) DaysUntilBirthday(p *models.Person) (int, bool) {
	now := s.now()
	next, ok := kinship.NextBirthday(p.BirthMonth, p.BirthDay, now)
	if !ok {
		return 0, false
	}
	return kinship.DaysBetween(now, next), true
}

// Age returns the person's age this year, or the default age when the birth
// year is unknown
func (s *RelationshipService) Age(p *models.Person) int {
	return kinship.Age(p.BirthYear, s.now())
}

// UpcomingBirthdays lists active people whose next birthday is within
// daysAhead days, soonest first. Same-day birthdays are ordered by last name
// then first name. A non-positive horizon means DefaultBirthdayHorizon.
func (s *RelationshipService) UpcomingBirthdays(daysAhead int) []models.UpcomingBirthday {
	if daysAhead <= 0 {
		daysAhead = DefaultBirthdayHorizon
	}
	now := s.now()

	var out []models.UpcomingBirthday
	for _, p := range s.People() {
		next, ok := kinship.NextBirthday(p.BirthMonth, p.BirthDay, now)
		if !ok {
			continue
		}
		days := kinship.DaysBetween(now, next)
		if days < 0 || days > daysAhead {
			continue
		}

		var names []string
		for _, pf := range s.PersonFamilies(p.ID) {
			if pf.Family != nil {
				names = append(names, pf.Family.Name)
			}
		}

		person := p
		out = append(out, models.UpcomingBirthday{
			Person:       &person,
			NextBirthday: next,
			DaysUntil:    days,
			Age:          kinship.Age(p.BirthYear, now),
			FamilyNames:  names,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DaysUntil != b.DaysUntil {
			return a.DaysUntil < b.DaysUntil
		}
		if a.Person.LastName != b.Person.LastName {
			return a.Person.LastName < b.Person.LastName
		}
		return a.Person.FirstName < b.Person.FirstName
	})
	return out
}
