package models

// LegacyMember is a flat member record exported by the branch-based system
type LegacyMember struct {
	ID              string `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	BirthMonth      string `json:"birthMonth"`
	BirthDay        int    `json:"birthDay"`
	BirthYear       int    `json:"birthYear"`
	MobilePhone     string `json:"mobilePhone"`
	HomePhone       string `json:"homePhone"`
	WorkPhone       string `json:"workPhone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	ZipCode         string `json:"zipCode"`
	AnniversaryDate string `json:"anniversaryDate"`
	Notes           string `json:"notes"`
	FamilyBranch    string `json:"familyBranch"`
	Relationship    string `json:"relationship"`
}

// LegacyBranch is a family branch of the branch-based system
type LegacyBranch struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	BranchType      string `json:"branchType"`
	GenerationLevel int    `json:"generationLevel"`
}
