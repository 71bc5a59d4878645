package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"staffdir/internal/auth"
	"staffdir/internal/model"
	"staffdir/internal/service"
	"staffdir/internal/validation"
	"staffdir/internal/view"
)

// MockEmployeeService is a mock implementation of service.EmployeeService.
type MockEmployeeService struct {
	mock.Mock
}

func (m *MockEmployeeService) CreateEmployee(ctx context.Context, in validation.EmployeeInput, path string) (*model.Employee, error) {
	args := m.Called(ctx, in, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeService) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeService) ListEmployees(ctx context.Context, page, pageSize int) (*service.EmployeePage, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EmployeePage), args.Error(1)
}

func (m *MockEmployeeService) GetProfile(ctx context.Context, callerAuthID string) (*model.Employee, error) {
	args := m.Called(ctx, callerAuthID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeService) UpsertEmployee(ctx context.Context, editingID string, in validation.EmployeeInput, path string) (*model.Employee, error) {
	args := m.Called(ctx, editingID, in, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeService) ImportEmployees(ctx context.Context, in []validation.EmployeeInput) (*service.ImportResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type memoryFragments struct {
	bodies map[string][]byte
}

func newMemoryFragments() *memoryFragments {
	return &memoryFragments{bodies: map[string][]byte{}}
}

func (m *memoryFragments) Get(_ context.Context, path, variant string) ([]byte, string, bool) {
	body, ok := m.bodies[path+"?"+variant]
	return body, path, ok
}

func (m *memoryFragments) Put(_ context.Context, slot, variant string, body []byte) {
	m.bodies[slot+"?"+variant] = body
}

type structValidator struct {
	validate *validator.Validate
}

func (v *structValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newEcho(t *testing.T) (*echo.Echo, *view.Renderer) {
	t.Helper()
	renderer, err := view.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.Validator = &structValidator{validate: validator.New()}
	return e, renderer
}

// signedIn marks every request as coming from authID.
func signedIn(authID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetIdentity(c, &auth.Identity{ID: authID, TokenID: "tok-1", ExpiresAt: time.Now().Add(time.Hour)})
			return next(c)
		}
	}
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func postJSON(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func employeeValues() url.Values {
	return url.Values{
		"authId": {"user_1"},
		"name":   {"Al Jones"},
		"email":  {"al@example.com"},
		"role":   {"admin"},
	}
}

func sampleEmployee() *model.Employee {
	return &model.Employee{
		ID:     "abc",
		AuthID: "user_1",
		Name:   "Al Jones",
		Email:  "al@example.com",
		Role:   "admin",
	}
}
