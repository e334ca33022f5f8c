package models

// FamilyType classifies a family
type FamilyType string

const (
	FamilyNuclear   FamilyType = "nuclear"
	FamilyExtended  FamilyType = "extended"
	FamilyAncestral FamilyType = "ancestral"
	FamilyMixed     FamilyType = "mixed"
)

// FamilyTypes lists the known family types in display order
var FamilyTypes = []FamilyType{FamilyNuclear, FamilyExtended, FamilyAncestral, FamilyMixed}

// Color is the card accent colour for the family type
func (t FamilyType) Color() string {
	switch t {
	case FamilyNuclear:
		return "#28a745"
	case FamilyExtended:
		return "#007bff"
	case FamilyAncestral:
		return "#6f42c1"
	case FamilyMixed:
		return "#fd7e14"
	default:
		return "#6c757d"
	}
}

// Icon is the emoji shown on the family card
func (t FamilyType) Icon() string {
	switch t {
	case FamilyNuclear:
		return "👨‍👩‍👧‍👦"
	case FamilyExtended:
		return "👪"
	case FamilyAncestral:
		return "🌳"
	case FamilyMixed:
		return "🏠"
	default:
		return "👥"
	}
}

// Label is the human readable family type
func (t FamilyType) Label() string {
	switch t {
	case FamilyNuclear:
		return "Nuclear Family"
	case FamilyExtended:
		return "Extended Family"
	case FamilyAncestral:
		return "Ancestral Line"
	case FamilyMixed:
		return "Mixed Family"
	default:
		return "Family"
	}
}

// Family is a named grouping of people
type Family struct {
	ID              string     `json:"id,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	FamilyType      FamilyType `json:"familyType"`
	GenerationLevel int        `json:"generationLevel"`
	Record
}

// FamilyUpdate is a partial update; nil fields are left unchanged
type FamilyUpdate struct {
	Name            *string     `json:"name,omitempty"`
	Description     *string     `json:"description,omitempty"`
	FamilyType      *FamilyType `json:"familyType,omitempty"`
	GenerationLevel *int        `json:"generationLevel,omitempty"`
}
