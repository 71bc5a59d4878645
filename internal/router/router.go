package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"staffdir/internal/auth"
	"staffdir/internal/handler"
	"staffdir/internal/routes"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Pages     *handler.PageHandler
	Sessions  *handler.SessionHandler
	Employees *handler.EmployeeHandler
	Imports   *handler.ImportHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, mw *auth.Middleware, h Handlers, logger *zap.Logger) {
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logger))
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	csrf := middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:_csrf",
		ContextKey:     handler.CSRFContextKey,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
	public := []echo.MiddlewareFunc{csrf, mw.Optional()}
	private := []echo.MiddlewareFunc{csrf, mw.RequirePage()}

	// Pages
	e.GET(routes.Home, h.Pages.Home, public...)
	e.GET(routes.Login, h.Sessions.LoginForm, public...)
	e.POST(routes.Login, h.Sessions.Login, public...)
	e.POST(routes.Logout, h.Sessions.Logout, public...)

	e.GET(routes.Dashboard, h.Pages.Dashboard, private...)
	e.GET(routes.CreateEmployee, h.Pages.CreateForm, private...)
	e.POST(routes.CreateEmployee, h.Pages.Create, private...)
	e.GET(routes.ManageEmployee, h.Pages.OnboardForm, private...)
	e.POST(routes.ManageEmployee, h.Pages.Onboard, private...)
	e.GET(routes.ManageEmployee+"/:id", h.Pages.ManageForm, private...)
	e.POST(routes.ManageEmployee+"/:id", h.Pages.Manage, private...)
	e.GET(routes.Profile, h.Pages.Profile, private...)

	// JSON API (requires a session token)
	api := e.Group("/api", mw.RequireAPI())
	api.GET("/me", h.Employees.Me)
	api.GET("/employees", h.Employees.ListEmployees)
	api.POST("/employees", h.Employees.CreateEmployee)
	api.PUT("/employees", h.Employees.UpsertEmployee)
	api.POST("/employees/import", h.Imports.ImportEmployees)
	api.GET("/employees/:id", h.Employees.GetEmployee)
	api.PUT("/employees/:id", h.Employees.UpdateEmployee)
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
