// Package routes names the page paths the application serves. Navigation and
// cache invalidation are keyed by these literal strings.
package routes

import "strings"

const (
	Home           = "/"
	Login          = "/login"
	Logout         = "/logout"
	Profile        = "/profile"
	Dashboard      = "/dashboard"
	CreateEmployee = "/dashboard/create-employee"
	ManageEmployee = "/dashboard/manage-employee"
)

// ManageEmployeeFor returns the edit page path for an employee id.
func ManageEmployeeFor(id string) string {
	return ManageEmployee + "/" + id
}

// IsManagementPath reports whether p is one of the pages that write
// employees: the create form, the onboarding form or an edit form.
func IsManagementPath(p string) bool {
	switch {
	case p == CreateEmployee, p == ManageEmployee:
		return true
	case strings.HasPrefix(p, ManageEmployee+"/"):
		id := strings.TrimPrefix(p, ManageEmployee+"/")
		return id != "" && !strings.Contains(id, "/")
	default:
		return false
	}
}

// IsLocal reports whether p is a same-site absolute path that is safe to
// redirect to.
func IsLocal(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
