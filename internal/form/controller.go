// Package form drives an employee form through validation and submission.
// A Controller lives for one request: pages build it, load its defaults,
// then either render it, submit it or reset it.
package form

import (
	"context"
	"errors"

	apperrors "staffdir/internal/errors"
	"staffdir/internal/routes"
	"staffdir/internal/validation"
)

// State is the lifecycle position of a form.
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNotLoaded is returned by Reset before the defaults have been fetched.
var ErrNotLoaded = errors.New("form defaults are not loaded yet")

// NoticeKind classifies a transient notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient notification shown once after a submit.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// SubmitFunc persists validated values.
type SubmitFunc func(ctx context.Context, values validation.EmployeeInput) error

// FetchFunc loads the values a form starts from.
type FetchFunc func(ctx context.Context) (validation.EmployeeInput, error)

type kind int

const (
	createForm kind = iota
	manageForm
)

// Controller holds one form's values and its submission outcome.
type Controller struct {
	kind     kind
	schema   *validation.Schema
	returnTo string

	state        State
	loaded       bool
	defaults     validation.EmployeeInput
	values       validation.EmployeeInput
	fieldErrors  map[string]string
	backendError string
	notice       *Notice
	redirect     string
}

// NewCreate returns a controller for the quick create form. returnTo is the
// page that launched it; non-local values are ignored.
func NewCreate(schema *validation.Schema, returnTo string) *Controller {
	c := &Controller{kind: createForm, schema: schema}
	if routes.IsLocal(returnTo) {
		c.returnTo = returnTo
	}
	// the create form has static defaults
	c.loaded = true
	return c
}

// NewManage returns a controller for the onboarding and edit forms. Call
// Load before Reset.
func NewManage(schema *validation.Schema) *Controller {
	return &Controller{kind: manageForm, schema: schema}
}

// Load resolves the form defaults. A nil fetch loads empty defaults.
func (c *Controller) Load(ctx context.Context, fetch FetchFunc) error {
	var defaults validation.EmployeeInput
	if fetch != nil {
		var err error
		defaults, err = fetch(ctx)
		if err != nil {
			return err
		}
	}
	c.defaults = defaults
	c.values = defaults
	c.loaded = true
	return nil
}

// Reset restores the loaded defaults and clears any displayed errors. It is
// only valid once Load has completed.
func (c *Controller) Reset() error {
	if !c.loaded {
		return ErrNotLoaded
	}
	c.values = c.defaults
	c.fieldErrors = nil
	c.backendError = ""
	c.notice = nil
	c.redirect = ""
	c.state = Idle
	return nil
}

// Submit validates values and, when they pass, hands them to submit.
func (c *Controller) Submit(ctx context.Context, values validation.EmployeeInput, submit SubmitFunc) State {
	c.backendError = ""
	c.notice = nil
	c.redirect = ""
	c.values = values

	c.state = Validating
	normalized, err := c.schema.Validate(values)
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			c.fieldErrors = verr.Fields
		}
		c.state = Idle
		return c.state
	}
	c.fieldErrors = nil

	if c.kind == manageForm && c.loaded && !c.dirty(normalized) {
		c.notice = &Notice{Kind: NoticeInfo, Message: "No values modified"}
		c.redirect = routes.Dashboard
		c.state = Succeeded
		return c.state
	}

	c.state = Submitting
	if err := submit(ctx, normalized); err != nil {
		c.backendError = err.Error()
		c.notice = &Notice{Kind: NoticeError, Message: err.Error()}
		c.state = Failed
		return c.state
	}

	c.values = normalized
	c.notice = &Notice{Kind: NoticeSuccess, Message: c.successMessage()}
	c.redirect = c.successTarget()
	c.state = Succeeded
	return c.state
}

func (c *Controller) dirty(v validation.EmployeeInput) bool {
	d := c.schema.Normalize(c.defaults)
	return v.AuthID != d.AuthID || v.Name != d.Name || v.Email != d.Email || v.Role != d.Role
}

func (c *Controller) successMessage() string {
	if c.kind == createForm {
		return "Employee created!"
	}
	return "Employee managed!"
}

// successTarget sends the quick create form back where it came from and
// everything else to the listing.
func (c *Controller) successTarget() string {
	if c.kind == createForm && c.returnTo != "" && c.returnTo != routes.CreateEmployee {
		return c.returnTo
	}
	return routes.Dashboard
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Loaded reports whether defaults are available.
func (c *Controller) Loaded() bool { return c.loaded }

// Values returns the values to render.
func (c *Controller) Values() validation.EmployeeInput { return c.values }

// FieldErrors returns per-field validation messages.
func (c *Controller) FieldErrors() map[string]string { return c.fieldErrors }

// BackendError returns the last store error message.
func (c *Controller) BackendError() string { return c.backendError }

// Notice returns the transient notification, if any.
func (c *Controller) Notice() *Notice { return c.notice }

// Redirect returns where to navigate after a successful submit.
func (c *Controller) Redirect() string { return c.redirect }

// ReturnTo returns the launching page of a create form.
func (c *Controller) ReturnTo() string { return c.returnTo }
