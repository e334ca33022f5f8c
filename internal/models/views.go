package models

import "time"

// FamilyMember joins a relationship to its person. Person is nil when the
// person is not in the active cache.
type FamilyMember struct {
	Person       *Person
	Relationship Relationship
}

// PersonFamily joins a relationship to its family. Family is nil when the
// family is not in the active cache.
type PersonFamily struct {
	Family       *Family
	Relationship Relationship
}

// RoleGroup is the members of a family sharing one role
type RoleGroup struct {
	Role    Role
	Members []FamilyMember
}

// SuggestionType identifies a relationship suggestion
type SuggestionType string

const (
	SuggestCreateFamily        SuggestionType = "create_family"
	SuggestCreateNuclearFamily SuggestionType = "create_nuclear_family"
)

// Suggestion proposes a family a person could be grouped into
type Suggestion struct {
	Type        SuggestionType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	PersonIDs   []string       `json:"personIds"`
}

// UpcomingBirthday is a person whose birthday falls inside the horizon
type UpcomingBirthday struct {
	Person       *Person
	NextBirthday time.Time
	DaysUntil    int
	Age          int
	FamilyNames  []string
}

// MigrationResult counts the records a migration created
type MigrationResult struct {
	PeopleCreated        int `json:"peopleCreated"`
	FamiliesCreated      int `json:"familiesCreated"`
	RelationshipsCreated int `json:"relationshipsCreated"`
}

// MigrationPreview estimates a migration without writing anything
type MigrationPreview struct {
	People            int `json:"people"`
	Branches          int `json:"branches"`
	EstimatedFamilies int `json:"estimatedFamilies"`
	Unassigned        int `json:"unassigned"`
}
