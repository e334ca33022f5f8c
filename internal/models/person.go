package models

import "strings"

// Person is an individual with biographical and contact details
type Person struct {
	ID              string `json:"id,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	BirthMonth      string `json:"birthMonth,omitempty"`
	BirthDay        int    `json:"birthDay,omitempty"`
	BirthYear       int    `json:"birthYear,omitempty"`
	MobilePhone     string `json:"mobilePhone,omitempty"`
	HomePhone       string `json:"homePhone,omitempty"`
	WorkPhone       string `json:"workPhone,omitempty"`
	Email           string `json:"email,omitempty"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	ZipCode         string `json:"zipCode,omitempty"`
	AnniversaryDate string `json:"anniversaryDate,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Record
}

// FullName joins first and last name
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PersonUpdate is a partial update; nil fields are left unchanged
type PersonUpdate struct {
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	BirthMonth      *string `json:"birthMonth,omitempty"`
	BirthDay        *int    `json:"birthDay,omitempty"`
	BirthYear       *int    `json:"birthYear,omitempty"`
	MobilePhone     *string `json:"mobilePhone,omitempty"`
	HomePhone       *string `json:"homePhone,omitempty"`
	WorkPhone       *string `json:"workPhone,omitempty"`
	Email           *string `json:"email,omitempty"`
	Address         *string `json:"address,omitempty"`
	City            *string `json:"city,omitempty"`
	State           *string `json:"state,omitempty"`
	ZipCode         *string `json:"zipCode,omitempty"`
	AnniversaryDate *string `json:"anniversaryDate,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}
