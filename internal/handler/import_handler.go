package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"staffdir/internal/service"
	"staffdir/internal/validation"
)

// ImportHandler handles bulk employee imports.
type ImportHandler struct {
	svc service.EmployeeService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(svc service.EmployeeService) *ImportHandler {
	return &ImportHandler{svc: svc}
}

// ImportEmployees godoc
// @Summary Bulk upsert employees by auth id
// @Description Invalid rows are skipped and reported; valid rows are upserted.
// @Tags employees
// @Accept json
// @Produce json
// @Param employees body []validation.EmployeeInput true "Employees"
// @Success 200 {object} service.ImportResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /employees/import [post]
func (h *ImportHandler) ImportEmployees(c echo.Context) error {
	var rows []validation.EmployeeInput
	if err := c.Bind(&rows); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.ImportEmployees(c.Request().Context(), rows)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
