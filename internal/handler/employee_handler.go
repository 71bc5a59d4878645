package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"staffdir/internal/auth"
	"staffdir/internal/routes"
	"staffdir/internal/service"
	"staffdir/internal/validation"
)

// EmployeeHandler serves the JSON employee API.
type EmployeeHandler struct {
	svc    service.EmployeeService
	schema *validation.Schema
}

// NewEmployeeHandler creates the API handlers. Request bodies are validated
// against schema.
func NewEmployeeHandler(svc service.EmployeeService, schema *validation.Schema) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, schema: schema}
}

// CreateEmployee godoc
// @Summary Create employee
// @Tags employees
// @Accept json
// @Produce json
// @Param employee body validation.EmployeeInput true "Employee payload"
// @Success 201 {object} model.Employee
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	valid, err := h.schema.Validate(in)
	if err != nil {
		return writeError(c, err)
	}

	created, err := h.svc.CreateEmployee(c.Request().Context(), valid, routes.CreateEmployee)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// GetEmployee godoc
// @Summary Get employee by id
// @Tags employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} model.Employee
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(c echo.Context) error {
	employee, err := h.svc.GetEmployee(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, employee)
}

// ListEmployees godoc
// @Summary List employees
// @Tags employees
// @Produce json
// @Param page query int false "Page number, starting at 1"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} service.EmployeePage
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /employees [get]
func (h *EmployeeHandler) ListEmployees(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	result, err := h.svc.ListEmployees(c.Request().Context(), page, pageSize)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// UpsertEmployee godoc
// @Summary Create or update an employee by auth id
// @Tags employees
// @Accept json
// @Produce json
// @Param employee body validation.EmployeeInput true "Employee payload"
// @Success 200 {object} model.Employee
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /employees [put]
func (h *EmployeeHandler) UpsertEmployee(c echo.Context) error {
	return h.upsert(c, "", routes.ManageEmployee)
}

// UpdateEmployee godoc
// @Summary Update an employee
// @Tags employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param employee body validation.EmployeeInput true "Employee payload"
// @Success 200 {object} model.Employee
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c echo.Context) error {
	id := c.Param("id")
	return h.upsert(c, id, routes.ManageEmployeeFor(id))
}

// Me godoc
// @Summary Get the caller's employee record
// @Tags employees
// @Produce json
// @Success 200 {object} model.Employee
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *EmployeeHandler) Me(c echo.Context) error {
	employee, err := h.svc.GetProfile(c.Request().Context(), auth.CallerID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) upsert(c echo.Context, editingID, path string) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	valid, err := h.schema.Validate(in)
	if err != nil {
		return writeError(c, err)
	}

	saved, err := h.svc.UpsertEmployee(c.Request().Context(), editingID, valid, path)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *EmployeeHandler) bind(c echo.Context) (validation.EmployeeInput, error) {
	var in validation.EmployeeInput
	if err := c.Bind(&in); err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return in, nil
}
