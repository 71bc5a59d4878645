package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffdir/internal/errors"
)

func valid() EmployeeInput {
	return EmployeeInput{
		AuthID: "user_2abc",
		Name:   "Al Jones",
		Email:  "al@example.com",
		Role:   "developer",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name      string
		schema    *Schema
		mutate    func(*EmployeeInput)
		wantField string
		wantMsg   string
	}{
		{"valid create", NewCreateSchema(), func(*EmployeeInput) {}, "", ""},
		{"valid manage", NewManageSchema(false), func(*EmployeeInput) {}, "", ""},
		{"valid strict", NewManageSchema(true), func(*EmployeeInput) {}, "", ""},
		{"short name", NewCreateSchema(), func(in *EmployeeInput) { in.Name = "Al" }, "name", "Minimum 3 characters."},
		{"bad email", NewCreateSchema(), func(in *EmployeeInput) { in.Email = "not-an-email" }, "email", "Invalid email."},
		{"empty email", NewCreateSchema(), func(in *EmployeeInput) { in.Email = "" }, "email", "Invalid email."},
		{"empty role", NewCreateSchema(), func(in *EmployeeInput) { in.Role = "" }, "role", "Required."},
		{"empty auth id", NewCreateSchema(), func(in *EmployeeInput) { in.AuthID = "" }, "authId", "Required. Find it in the identity provider dashboard."},
		{"open role set accepts anything", NewCreateSchema(), func(in *EmployeeInput) { in.Role = "manager" }, "", ""},
		{"closed role set", NewManageSchema(false), func(in *EmployeeInput) { in.Role = "manager" }, "role", "Must be one of: default, admin, developer."},
		{"strict rejects single word", NewManageSchema(true), func(in *EmployeeInput) { in.Name = "Alfred" }, "name", "Please include a last name."},
		{"strict trims before checking", NewManageSchema(true), func(in *EmployeeInput) { in.Name = "  Alfred  " }, "name", "Please include a last name."},
		{"lenient accepts single word", NewManageSchema(false), func(in *EmployeeInput) { in.Name = "Alfred" }, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)

			_, err := tt.schema.Validate(in)

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			fields := fieldErrors(t, err)
			assert.Len(t, fields, 1)
			assert.Equal(t, tt.wantMsg, fields[tt.wantField])
		})
	}
}

func TestSchema_ValidateReportsEveryField(t *testing.T) {
	_, err := NewCreateSchema().Validate(EmployeeInput{Name: "Al", Email: "nope"})

	fields := fieldErrors(t, err)
	assert.ElementsMatch(t, []string{"authId", "name", "email", "role"}, keys(fields))
}

func TestSchema_StrictTrimsName(t *testing.T) {
	in := valid()
	in.Name = "  Al Jones "

	out, err := NewManageSchema(true).Validate(in)

	require.NoError(t, err)
	assert.Equal(t, "Al Jones", out.Name)
}

func TestSchema_MultiSelectPersistsFirstRole(t *testing.T) {
	in := valid()
	in.Role = ""
	in.Roles = []string{"admin", "developer"}

	out, err := NewManageSchema(false).Validate(in)

	require.NoError(t, err)
	assert.Equal(t, "admin", out.Role)
	assert.Nil(t, out.Roles)
}

func TestSchema_MultiSelectRejectsUnknownRole(t *testing.T) {
	in := valid()
	in.Role = ""
	in.Roles = []string{"admin", "janitor"}

	_, err := NewManageSchema(false).Validate(in)

	assert.Contains(t, fieldErrors(t, err), "role")
}

func TestSchema_Deterministic(t *testing.T) {
	in := valid()
	in.Name = "Al"
	schema := NewCreateSchema()

	_, first := schema.Validate(in)
	_, second := schema.Validate(in)

	assert.Equal(t, first, second)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
