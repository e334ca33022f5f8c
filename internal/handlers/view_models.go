package handlers

import (
	"strconv"

	"familytree/internal/kinship"
	"familytree/internal/models"
	"familytree/internal/service"
)

// Page is the data every page's header and forms need
type Page struct {
	Title     string
	User      string
	CSRFToken string
	Error     string
}

type LoginViewData struct {
	Page
	Username string
}

// MembershipView is one family a person card lists
type MembershipView struct {
	FamilyName string
	RoleLabel  string
}

// PersonCard is the display form of a person
type PersonCard struct {
	Person      models.Person
	FullName    string
	Age         int
	Birthday    string // e.g. "March 3", empty when unknown
	DaysUntil   int
	ShowBadge   bool
	Memberships []MembershipView
}

type PeopleViewData struct {
	Page
	People   []PersonCard
	Families []models.Family
	Roles    []models.Role
	Filter   service.PeopleFilter
}

// RoleGroupView is one role heading on a family card
type RoleGroupView struct {
	Label   string
	Members []string
}

// FamilyCard is the display form of a family
type FamilyCard struct {
	Family      models.Family
	Color       string
	Icon        string
	TypeLabel   string
	MemberCount int
	Groups      []RoleGroupView
}

type FamiliesViewData struct {
	Page
	Families []FamilyCard
	People   []models.Person
	Types    []models.FamilyType
	Roles    []models.Role
	Filter   service.FamilyFilter
}

// BirthdayRow is one entry of the upcoming birthdays list
type BirthdayRow struct {
	Name     string
	When     string
	Date     string
	Turning  int // 0 when the birth year is unknown
	Families []string
}

type BirthdaysViewData struct {
	Page
	Days      int
	Birthdays []BirthdayRow
}

type MigrateViewData struct {
	Page
	Preview *models.MigrationPreview
	Result  *models.MigrationResult
}

func personCard(store *service.RelationshipService, p models.Person) PersonCard {
	card := PersonCard{
		Person:   p,
		FullName: p.FullName(),
		Age:      store.Age(&p),
	}
	if next, ok := store.NextBirthday(&p); ok {
		card.Birthday = next.Format("January 2")
		card.DaysUntil, _ = store.DaysUntilBirthday(&p)
		card.ShowBadge = card.DaysUntil <= birthdayBadgeDays
	}
	for _, pf := range store.PersonFamilies(p.ID) {
		if pf.Family == nil {
			continue
		}
		card.Memberships = append(card.Memberships, MembershipView{
			FamilyName: pf.Family.Name,
			RoleLabel:  pf.Relationship.Role.Label(),
		})
	}
	return card
}

func familyCard(store *service.RelationshipService, f models.Family) FamilyCard {
	members := store.FamilyMembers(f.ID)
	card := FamilyCard{
		Family:      f,
		Color:       f.FamilyType.Color(),
		Icon:        f.FamilyType.Icon(),
		TypeLabel:   f.FamilyType.Label(),
		MemberCount: len(members),
	}
	for _, g := range store.GroupMembersByRole(members) {
		view := RoleGroupView{Label: g.Role.Label()}
		for _, m := range g.Members {
			if m.Person != nil {
				view.Members = append(view.Members, m.Person.FullName())
			}
		}
		card.Groups = append(card.Groups, view)
	}
	return card
}

func birthdayRow(b models.UpcomingBirthday) BirthdayRow {
	row := BirthdayRow{
		Name:     b.Person.FullName(),
		When:     kinship.WhenLabel(b.DaysUntil),
		Date:     b.NextBirthday.Format("Monday, January 2"),
		Families: b.FamilyNames,
	}
	if b.Person.BirthYear > 0 {
		row.Turning = b.NextBirthday.Year() - b.Person.BirthYear
	}
	return row
}

// atoi parses an optional whole number form field; blanks and garbage are 0
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
