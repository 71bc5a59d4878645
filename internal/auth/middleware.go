package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"staffdir/internal/errors"
)

const identityContextKey = "identity"

// IdentityFromContext returns the verified caller, or nil for guests.
func IdentityFromContext(c echo.Context) *Identity {
	identity, _ := c.Get(identityContextKey).(*Identity)
	return identity
}

// SetIdentity stores a verified caller on the request context.
func SetIdentity(c echo.Context, identity *Identity) {
	c.Set(identityContextKey, identity)
}

// CallerID returns the caller's provider id or "" for guests.
func CallerID(c echo.Context) string {
	if identity := IdentityFromContext(c); identity != nil {
		return identity.ID
	}
	return ""
}

// Middleware builds echo-jwt middlewares that read the session token from
// the Authorization header or the session cookie.
type Middleware struct {
	jwtService *JWTService
	tokens     TokenStoreInterface
	cookieName string
	loginPath  string
}

// NewMiddleware creates the session middlewares.
func NewMiddleware(jwtService *JWTService, tokens TokenStoreInterface, cookieName, loginPath string) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		tokens:     tokens,
		cookieName: cookieName,
		loginPath:  loginPath,
	}
}

// Verify validates a raw session token and rejects signed-out tokens.
func (m *Middleware) Verify(c echo.Context, raw string) (*Identity, error) {
	identity, err := m.jwtService.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	revoked, _ := m.tokens.IsRevoked(c.Request().Context(), identity.TokenID)
	if revoked {
		return nil, ErrTokenRevoked
	}
	return identity, nil
}

func (m *Middleware) config() echojwt.Config {
	return echojwt.Config{
		ContextKey:  identityContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + m.cookieName,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return m.Verify(c, auth)
		},
	}
}

// RequireAPI rejects guests with a JSON 401.
func (m *Middleware) RequireAPI() echo.MiddlewareFunc {
	cfg := m.config()
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "authentication required",
			Code:  "UNAUTHENTICATED",
		})
	}
	return echojwt.WithConfig(cfg)
}

// RequirePage redirects guests to the sign-in page.
func (m *Middleware) RequirePage() echo.MiddlewareFunc {
	cfg := m.config()
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return c.Redirect(http.StatusSeeOther, m.loginPath)
	}
	return echojwt.WithConfig(cfg)
}

// Optional identifies the caller when a valid token is present and lets
// guests through otherwise.
func (m *Middleware) Optional() echo.MiddlewareFunc {
	cfg := m.config()
	cfg.ContinueOnIgnoredError = true
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return nil
	}
	return echojwt.WithConfig(cfg)
}
