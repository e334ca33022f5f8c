package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFamilyTypePresentation(t *testing.T) {
	tests := []struct {
		familyType FamilyType
		color      string
		icon       string
		label      string
	}{
		{FamilyNuclear, "#28a745", "👨‍👩‍👧‍👦", "Nuclear Family"},
		{FamilyExtended, "#007bff", "👪", "Extended Family"},
		{FamilyAncestral, "#6f42c1", "🌳", "Ancestral Line"},
		{FamilyMixed, "#fd7e14", "🏠", "Mixed Family"},
		{FamilyType("clan"), "#6c757d", "👥", "Family"},
	}

	for _, tt := range tests {
		t.Run(string(tt.familyType), func(t *testing.T) {
			assert.Equal(t, tt.color, tt.familyType.Color())
			assert.Equal(t, tt.icon, tt.familyType.Icon())
			assert.Equal(t, tt.label, tt.familyType.Label())
		})
	}
}

func TestRecordLifecycle(t *testing.T) {
	r := NewRecord("alice", time.Now())
	assert.Equal(t, Active, r.Lifecycle())
	assert.Equal(t, "alice", r.CreatedBy)

	r.IsActive = false
	assert.Equal(t, Archived, r.Lifecycle())
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "adult child", RoleAdultChild.Label())
	assert.Equal(t, "parent", RoleParent.Label())
}

func TestPersonFullName(t *testing.T) {
	p := Person{FirstName: "Ann", LastName: "Smith"}
	assert.Equal(t, "Ann Smith", p.FullName())
	assert.Equal(t, "Cher", (&Person{FirstName: "Cher"}).FullName())
}
