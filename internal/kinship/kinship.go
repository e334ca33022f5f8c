// Package kinship holds the pure rules for roles, ages and birthdays.
package kinship

import (
	"strings"
	"time"

	"familytree/internal/models"
)

// DefaultAge is assumed when a birth year is unknown.
const DefaultAge = 25

// Age returns the age reached this calendar year, or DefaultAge when
// birthYear is zero.
func Age(birthYear int, now time.Time) int {
	if birthYear == 0 {
		return DefaultAge
	}
	return now.Year() - birthYear
}

var roleKeywords = []struct {
	role     models.Role
	keywords []string
}{
	{models.RoleParent, []string{"parent", "father", "mother"}},
	{models.RoleChild, []string{"child", "son", "daughter"}},
	{models.RoleSpouse, []string{"spouse", "husband", "wife"}},
}

// InferRole picks a role from a free-text relationship hint, falling back to
// age when the hint names no known relation. Keywords match as
// case-insensitive substrings, parent words first.
func InferRole(hint string, age int) models.Role {
	if hint = strings.ToLower(hint); hint != "" {
		for _, rk := range roleKeywords {
			for _, kw := range rk.keywords {
				if strings.Contains(hint, kw) {
					return rk.role
				}
			}
		}
	}

	switch {
	case age >= 50:
		return models.RoleParent
	case age >= 18:
		return models.RoleAdultChild
	default:
		return models.RoleChild
	}
}

// FamilyTypeForBranch maps a legacy branch type to a family type.
func FamilyTypeForBranch(branchType string) models.FamilyType {
	switch branchType {
	case "nuclear_family":
		return models.FamilyNuclear
	case "grandparent_branch", "extended_family":
		return models.FamilyExtended
	case "ancestral_branch":
		return models.FamilyAncestral
	default:
		return models.FamilyNuclear
	}
}
