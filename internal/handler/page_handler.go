package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffdir/internal/auth"
	apperrors "staffdir/internal/errors"
	"staffdir/internal/form"
	"staffdir/internal/model"
	"staffdir/internal/routes"
	"staffdir/internal/service"
	"staffdir/internal/validation"
	"staffdir/internal/view"
)

// DashboardPageSize is how many employees the dashboard lists per page.
const DashboardPageSize = 30

// FragmentCache stores rendered page fragments per path. Get reports the
// slot a render computed after a miss belongs in; a slot invalidated in
// the meantime is never read again.
type FragmentCache interface {
	Get(ctx context.Context, path, variant string) (body []byte, slot string, ok bool)
	Put(ctx context.Context, slot, variant string, body []byte)
}

// PageHandler serves the server rendered pages.
type PageHandler struct {
	svc          service.EmployeeService
	fragments    FragmentCache
	renderer     *view.Renderer
	createSchema *validation.Schema
	manageSchema *validation.Schema
	logger       *zap.Logger
}

// NewPageHandler creates the page handlers.
func NewPageHandler(
	svc service.EmployeeService,
	fragments FragmentCache,
	renderer *view.Renderer,
	createSchema *validation.Schema,
	manageSchema *validation.Schema,
	logger *zap.Logger,
) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{
		svc:          svc,
		fragments:    fragments,
		renderer:     renderer,
		createSchema: createSchema,
		manageSchema: manageSchema,
		logger:       logger,
	}
}

// Home renders the landing page.
func (h *PageHandler) Home(c echo.Context) error {
	return renderPage(c, http.StatusOK, view.HomePage, "Home", nil)
}

// Dashboard renders the employee listing. The list itself is served from
// the fragment cache until a management page write drops it.
func (h *PageHandler) Dashboard(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ctx := c.Request().Context()
	variant := "page=" + strconv.Itoa(page)

	list, slot, ok := h.fragments.Get(ctx, routes.Dashboard, variant)
	if !ok {
		result, err := h.svc.ListEmployees(ctx, page, DashboardPageSize)
		if err != nil {
			return renderError(c, err)
		}
		list, err = h.renderer.Fragment(view.EmployeeListFragment, view.EmployeeList{
			Employees: result.Employees,
			Page:      result.Page,
			IsNext:    result.IsNext,
		})
		if err != nil {
			return err
		}
		// Pages past the end are rendered but not kept, so arbitrary
		// ?page= values cannot grow the cache.
		if len(result.Employees) > 0 || page == 1 {
			h.fragments.Put(ctx, slot, variant, list)
		}
	}

	return renderPage(c, http.StatusOK, view.DashboardPage, "Dashboard", view.Dashboard{
		List: template.HTML(list),
	})
}

// CreateForm renders the quick create form.
func (h *PageHandler) CreateForm(c echo.Context) error {
	ctrl := form.NewCreate(h.createSchema, referrer(c))
	return h.renderForm(c, http.StatusOK, ctrl, createView)
}

// Create handles the quick create form.
func (h *PageHandler) Create(c echo.Context) error {
	var in validation.EmployeeInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	ctrl := form.NewCreate(h.createSchema, c.FormValue("returnTo"))
	path := c.Request().URL.Path
	ctrl.Submit(c.Request().Context(), in, func(ctx context.Context, v validation.EmployeeInput) error {
		_, err := h.svc.CreateEmployee(ctx, v, path)
		return err
	})
	return h.finish(c, ctrl, createView)
}

// OnboardForm renders the empty manage form.
func (h *PageHandler) OnboardForm(c echo.Context) error {
	ctrl := form.NewManage(h.manageSchema)
	if err := ctrl.Load(c.Request().Context(), nil); err != nil {
		return renderError(c, err)
	}
	return h.renderForm(c, http.StatusOK, ctrl, onboardView)
}

// Onboard upserts an employee by auth id.
func (h *PageHandler) Onboard(c echo.Context) error {
	ctrl := form.NewManage(h.manageSchema)
	if err := ctrl.Load(c.Request().Context(), nil); err != nil {
		return renderError(c, err)
	}
	return h.submitManage(c, ctrl, "", onboardView)
}

// ManageForm renders the edit form of one employee.
func (h *PageHandler) ManageForm(c echo.Context) error {
	ctrl, err := h.loadManage(c)
	if err != nil {
		return renderError(c, err)
	}
	return h.renderForm(c, http.StatusOK, ctrl, manageView(c.Param("id")))
}

// Manage saves or resets the edit form of one employee.
func (h *PageHandler) Manage(c echo.Context) error {
	ctrl, err := h.loadManage(c)
	if err != nil {
		return renderError(c, err)
	}

	fv := manageView(c.Param("id"))
	if c.FormValue("action") == "reset" {
		if err := ctrl.Reset(); err != nil {
			return renderError(c, err)
		}
		return h.renderForm(c, http.StatusOK, ctrl, fv)
	}
	return h.submitManage(c, ctrl, c.Param("id"), fv)
}

// Profile renders the caller's own record.
func (h *PageHandler) Profile(c echo.Context) error {
	callerID := auth.CallerID(c)
	employee, err := h.svc.GetProfile(c.Request().Context(), callerID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return renderError(c, err)
	}
	return renderPage(c, http.StatusOK, view.ProfilePage, "Profile", view.Profile{
		AuthID:   callerID,
		Employee: employee,
	})
}

func (h *PageHandler) loadManage(c echo.Context) (*form.Controller, error) {
	id := c.Param("id")
	ctrl := form.NewManage(h.manageSchema)
	err := ctrl.Load(c.Request().Context(), func(ctx context.Context) (validation.EmployeeInput, error) {
		employee, err := h.svc.GetEmployee(ctx, id)
		if err != nil {
			return validation.EmployeeInput{}, err
		}
		return inputOf(employee), nil
	})
	return ctrl, err
}

func (h *PageHandler) submitManage(c echo.Context, ctrl *form.Controller, editingID string, fv formView) error {
	var in validation.EmployeeInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	path := c.Request().URL.Path
	ctrl.Submit(c.Request().Context(), in, func(ctx context.Context, v validation.EmployeeInput) error {
		_, err := h.svc.UpsertEmployee(ctx, editingID, v, path)
		return err
	})
	return h.finish(c, ctrl, fv)
}

// finish redirects after a successful submit and re-renders the form
// otherwise.
func (h *PageHandler) finish(c echo.Context, ctrl *form.Controller, fv formView) error {
	switch ctrl.State() {
	case form.Succeeded:
		setFlash(c, ctrl.Notice())
		return c.Redirect(http.StatusSeeOther, ctrl.Redirect())
	case form.Failed:
		h.logger.Warn("employee form submit failed", zap.String("path", c.Request().URL.Path), zap.String("error", ctrl.BackendError()))
		return h.renderForm(c, http.StatusOK, ctrl, fv)
	default:
		return h.renderForm(c, http.StatusUnprocessableEntity, ctrl, fv)
	}
}

type formView struct {
	title    string
	action   string
	submit   string
	canReset bool
}

var (
	createView  = formView{title: "Onboard a new Employee", action: routes.CreateEmployee, submit: "Create"}
	onboardView = formView{title: "Onboard New Employee", action: routes.ManageEmployee, submit: "Save"}
)

func manageView(id string) formView {
	return formView{title: "Manage Employee", action: routes.ManageEmployeeFor(id), submit: "Save", canReset: true}
}

func (h *PageHandler) renderForm(c echo.Context, status int, ctrl *form.Controller, fv formView) error {
	token, _ := c.Get(CSRFContextKey).(string)
	notice := ctrl.Notice()
	if notice == nil {
		notice = popFlash(c)
	}
	return c.Render(status, view.FormPage, view.Page{
		Title:    fv.title,
		SignedIn: auth.IdentityFromContext(c) != nil,
		CSRF:     token,
		Notice:   notice,
		Content: view.EmployeeForm{
			Heading:      fv.title,
			Action:       fv.action,
			SubmitLabel:  fv.submit,
			Values:       ctrl.Values(),
			FieldErrors:  ctrl.FieldErrors(),
			BackendError: ctrl.BackendError(),
			ReturnTo:     ctrl.ReturnTo(),
			CanReset:     fv.canReset && ctrl.Loaded(),
		},
	})
}

func inputOf(e *model.Employee) validation.EmployeeInput {
	return validation.EmployeeInput{
		AuthID: e.AuthID,
		Name:   e.Name,
		Email:  e.Email,
		Role:   e.Role,
	}
}
