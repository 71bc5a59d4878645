package view

import (
	"bytes"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffdir/internal/form"
	"staffdir/internal/model"
	"staffdir/internal/validation"
)

func TestRender_Form(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, FormPage, Page{
		Title: "Manage employee",
		CSRF:  "tok",
		Content: EmployeeForm{
			Heading:     "Manage employee",
			Action:      "/dashboard/manage-employee/abc",
			SubmitLabel: "Save",
			Values:      validation.EmployeeInput{AuthID: "user_1", Name: "<b>Al</b>", Role: "admin"},
			FieldErrors: map[string]string{"name": "Minimum 3 characters."},
			CanReset:    true,
		},
	}, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `value="user_1"`)
	assert.Contains(t, out, "&lt;b&gt;Al&lt;/b&gt;")
	assert.Contains(t, out, "Minimum 3 characters.")
	assert.Contains(t, out, `<option value="admin" selected>Admin</option>`)
	assert.Contains(t, out, `value="reset"`)
	assert.Contains(t, out, `name="_csrf" value="tok"`)
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", Page{}, nil))
}

func TestFragment_EmployeeList(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	body, err := r.Fragment(EmployeeListFragment, EmployeeList{
		Employees: []model.Employee{{ID: "abc", Name: "Al Jones", Email: "al@example.com", Role: "developer"}},
		Page:      2,
		IsNext:    true,
	})
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "Al Jones")
	assert.Contains(t, out, `href="/dashboard/manage-employee/abc"`)
	assert.Contains(t, out, "?page=1")
	assert.Contains(t, out, "?page=3")
}

func TestRender_DashboardEmbedsFragment(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, DashboardPage, Page{
		Title:   "Dashboard",
		Notice:  &form.Notice{Kind: form.NoticeSuccess, Message: "Employee created!"},
		Content: Dashboard{List: template.HTML("<table id=\"list\"></table>")},
	}, nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `<table id="list"></table>`)
	assert.Contains(t, buf.String(), "Employee created!")
}
