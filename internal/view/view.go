// Package view renders the server side pages from embedded html templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"

	"staffdir/internal/form"
	"staffdir/internal/model"
	"staffdir/internal/routes"
	"staffdir/internal/validation"
)

//go:embed templates/*.html
var files embed.FS

// Page names accepted by Render.
const (
	HomePage      = "home"
	DashboardPage = "dashboard"
	FormPage      = "employee_form"
	ProfilePage   = "profile"
	LoginPage     = "login"
	ErrorPage     = "error"
)

// EmployeeListFragment is the cacheable part of the dashboard.
const EmployeeListFragment = "employee_list"

// Page is the data every page template receives.
type Page struct {
	Title    string
	SignedIn bool
	CSRF     string
	Notice   *form.Notice
	Content  any
}

// EmployeeList feeds the dashboard list fragment.
type EmployeeList struct {
	Employees []model.Employee
	Page      int
	IsNext    bool
}

// Dashboard feeds the dashboard page. List is a rendered EmployeeList.
type Dashboard struct {
	List template.HTML
}

// EmployeeForm feeds the create and manage forms.
type EmployeeForm struct {
	Heading      string
	Action       string
	SubmitLabel  string
	Values       validation.EmployeeInput
	FieldErrors  map[string]string
	BackendError string
	ReturnTo     string
	CanReset     bool
}

// Profile feeds the profile page. Employee is nil when the caller has no
// record yet.
type Profile struct {
	AuthID   string
	Employee *model.Employee
}

// Login feeds the sign-in page.
type Login struct {
	SignInURL string
	Error     string
}

// Error feeds the error page.
type Error struct {
	Status  int
	Message string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

var funcs = template.FuncMap{
	"roles":      model.Roles,
	"manageURL":  routes.ManageEmployeeFor,
	"title":      title,
	"prevPage":   func(p int) int { return p - 1 },
	"nextPage":   func(p int) int { return p + 1 },
	"dashboard":  func() string { return routes.Dashboard },
	"createPath": func() string { return routes.CreateEmployee },
	"managePath": func() string { return routes.ManageEmployee },
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/employee_list.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := map[string]*template.Template{}
	for _, name := range []string{HomePage, DashboardPage, FormPage, ProfilePage, LoginPage, ErrorPage} {
		page, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		content, err := fs.ReadFile(files, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		if _, err := page.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = page
	}

	return &Renderer{pages: pages, fragments: base}, nil
}

// Render writes a full page. data must be a Page or *Page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return page.ExecuteTemplate(w, "layout", data)
}

// Fragment renders a named fragment on its own.
func (r *Renderer) Fragment(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
