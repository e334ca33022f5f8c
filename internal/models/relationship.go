package models

// Role is the part a person plays within a family. Values outside the
// constants below are allowed and stored as given.
type Role string

const (
	RoleParent      Role = "parent"
	RoleChild       Role = "child"
	RoleSpouse      Role = "spouse"
	RoleAdultChild  Role = "adult_child"
	RoleGuardian    Role = "guardian"
	RoleGrandparent Role = "grandparent"
	RoleGrandchild  Role = "grandchild"
	RolePartner     Role = "partner"
)

// MemberRoles are the roles offered when adding members to a family
var MemberRoles = []Role{RoleParent, RoleChild, RoleSpouse, RoleAdultChild, RoleGrandparent, RoleGrandchild}

// Label renders the role for display, e.g. "adult_child" as "adult child"
func (r Role) Label() string {
	out := []rune(string(r))
	for i, c := range out {
		if c == '_' {
			out[i] = ' '
		}
	}
	return string(out)
}

// Relationship binds one person to one family with a role
type Relationship struct {
	ID                   string `json:"id,omitempty"`
	PersonID             string `json:"personId"`
	FamilyID             string `json:"familyId"`
	Role                 Role   `json:"role"`
	RelationshipToOthers string `json:"relationshipToOthers"`
	StartDate            string `json:"startDate,omitempty"`
	EndDate              string `json:"endDate,omitempty"`
	Record
}

// RelationshipUpdate is a partial update; nil fields are left unchanged
type RelationshipUpdate struct {
	Role                 *Role   `json:"role,omitempty"`
	RelationshipToOthers *string `json:"relationshipToOthers,omitempty"`
	StartDate            *string `json:"startDate,omitempty"`
	EndDate              *string `json:"endDate,omitempty"`
}
