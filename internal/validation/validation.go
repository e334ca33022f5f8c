// Package validation checks that submitted forms carry their required fields.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors lists every failed field of a form
type Errors []ValidationError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// PersonForm is the add/edit person form
type PersonForm struct {
	FirstName string `form:"firstName" validate:"notblank"`
	LastName  string `form:"lastName" validate:"notblank"`
}

// FamilyForm is the create/edit family form
type FamilyForm struct {
	Name string `form:"name" validate:"notblank"`
}

// RelationshipForm is the add-to-family form
type RelationshipForm struct {
	PersonID string `form:"personId" validate:"notblank"`
	FamilyID string `form:"familyId" validate:"notblank"`
	Role     string `form:"role" validate:"notblank"`
}

// LoginForm is the sign-in form
type LoginForm struct {
	Username string `form:"username" validate:"notblank"`
	Password string `form:"password" validate:"required"`
}

// Struct validates a form, returning Errors naming each missing field
func Struct(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}
	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: fe.Field() + " is required"})
	}
	return out
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if err := validate.Var(email, "email"); err != nil {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}
