// Package validation holds the rules an employee record must satisfy before
// it is handed to the store.
package validation

import (
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"staffdir/internal/errors"
	"staffdir/internal/model"
)

// EmployeeInput is a candidate employee record as submitted by a form or an
// API client. Roles carries the multi-select variant; only the first
// selected role is persisted.
type EmployeeInput struct {
	AuthID string   `json:"auth_id" form:"authId"`
	Name   string   `json:"name" form:"name"`
	Email  string   `json:"email" form:"email"`
	Role   string   `json:"role" form:"role"`
	Roles  []string `json:"roles,omitempty" form:"roles"`
}

// Schema validates and normalizes EmployeeInput.
type Schema struct {
	validate    *validator.Validate
	strictNames bool
	closedRoles bool
}

// NewCreateSchema returns the lenient schema used by the quick create form.
func NewCreateSchema() *Schema {
	return newSchema(false, false)
}

// NewManageSchema returns the schema used by the manage form. Roles are
// restricted to model.Roles(); strict additionally requires a last name.
func NewManageSchema(strict bool) *Schema {
	return newSchema(strict, true)
}

func newSchema(strictNames, closedRoles bool) *Schema {
	v := validator.New()
	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return strings.Contains(strings.TrimSpace(fl.Field().String()), " ")
	})
	return &Schema{validate: v, strictNames: strictNames, closedRoles: closedRoles}
}

// Normalize applies the schema's normalization without validating.
func (s *Schema) Normalize(in EmployeeInput) EmployeeInput {
	if s.strictNames {
		in.Name = strings.TrimSpace(in.Name)
	}
	if in.Role == "" && len(in.Roles) > 0 {
		in.Role = in.Roles[0]
	}
	in.Roles = nil
	return in
}

// Validate returns the normalized input, or an *errors.ValidationError with
// one message per rejected field.
func (s *Schema) Validate(in EmployeeInput) (EmployeeInput, error) {
	selected := in.Roles
	out := s.Normalize(in)
	fields := map[string]string{}

	if err := s.validate.Var(out.AuthID, "required"); err != nil {
		fields["authId"] = "Required. Find it in the identity provider dashboard."
	}

	nameRule := "min=3"
	if s.strictNames {
		nameRule = "min=3,fullname"
	}
	if err := s.validate.Var(out.Name, nameRule); err != nil {
		if failedTag(err) == "fullname" {
			fields["name"] = "Please include a last name."
		} else {
			fields["name"] = "Minimum 3 characters."
		}
	}

	if err := s.validate.Var(out.Email, "required,email"); err != nil {
		fields["email"] = "Invalid email."
	}

	if err := s.validate.Var(out.Role, "required"); err != nil {
		fields["role"] = "Required."
	} else if s.closedRoles {
		rule := "oneof=" + strings.Join(model.Roles(), " ")
		for _, role := range append([]string{out.Role}, selected...) {
			if err := s.validate.Var(role, rule); err != nil {
				fields["role"] = "Must be one of: " + strings.Join(model.Roles(), ", ") + "."
				break
			}
		}
	}

	if len(fields) > 0 {
		return out, &errors.ValidationError{Fields: fields}
	}
	return out, nil
}

func failedTag(err error) string {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return ""
}
