package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffdir/internal/auth"
	"staffdir/internal/form"
	"staffdir/internal/routes"
	"staffdir/internal/view"
)

var errTokenRequired = errors.New("a session token is required")

// SessionHandler signs callers in and out. Identity itself lives with the
// identity provider; this only moves its token into and out of the session
// cookie.
type SessionHandler struct {
	verifier   TokenVerifier
	tokens     auth.TokenStoreInterface
	cookieName string
	signInURL  string
	logger     *zap.Logger
}

// TokenVerifier checks a provider token.
type TokenVerifier interface {
	Verify(c echo.Context, raw string) (*auth.Identity, error)
}

// NewSessionHandler creates the sign-in handlers.
func NewSessionHandler(verifier TokenVerifier, tokens auth.TokenStoreInterface, cookieName, signInURL string, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		verifier:   verifier,
		tokens:     tokens,
		cookieName: cookieName,
		signInURL:  signInURL,
		logger:     logger,
	}
}

// LoginForm renders the sign-in page.
func (h *SessionHandler) LoginForm(c echo.Context) error {
	if auth.IdentityFromContext(c) != nil {
		return c.Redirect(http.StatusSeeOther, routes.Dashboard)
	}
	return renderPage(c, http.StatusOK, view.LoginPage, "Sign in", view.Login{SignInURL: h.signInURL})
}

// LoginRequest carries a provider issued session token.
type LoginRequest struct {
	Token string `form:"token" json:"token" validate:"required"`
}

// Login accepts a provider token and stores it in the session cookie.
func (h *SessionHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Token = strings.TrimSpace(req.Token)

	if err := c.Validate(&req); err != nil {
		return h.rejectLogin(c, errTokenRequired)
	}
	identity, err := h.verifier.Verify(c, req.Token)
	if err != nil {
		return h.rejectLogin(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    req.Token,
		Path:     "/",
		Expires:  identity.ExpiresAt,
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Info("signed in", zap.String("auth_id", identity.ID))
	return c.Redirect(http.StatusSeeOther, routes.Dashboard)
}

func (h *SessionHandler) rejectLogin(c echo.Context, err error) error {
	h.logger.Info("sign in rejected", zap.Error(err))
	return renderPage(c, http.StatusUnauthorized, view.LoginPage, "Sign in", view.Login{
		SignInURL: h.signInURL,
		Error:     err.Error(),
	})
}

// Logout revokes the current session token and clears the cookie.
func (h *SessionHandler) Logout(c echo.Context) error {
	if identity := auth.IdentityFromContext(c); identity != nil {
		if err := h.tokens.Revoke(c.Request().Context(), identity.TokenID, time.Until(identity.ExpiresAt)); err != nil {
			h.logger.Warn("failed to revoke session", zap.String("auth_id", identity.ID), zap.Error(err))
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	setFlash(c, &form.Notice{Kind: form.NoticeInfo, Message: "Signed out"})
	return c.Redirect(http.StatusSeeOther, routes.Home)
}
