package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"staffdir/internal/auth"
	apperrors "staffdir/internal/errors"
	"staffdir/internal/form"
	"staffdir/internal/routes"
	"staffdir/internal/view"
)

const flashCookie = "flash"

// CSRFContextKey is where the CSRF middleware stores the form token.
const CSRFContextKey = "csrf"

func renderPage(c echo.Context, status int, name, title string, content any) error {
	token, _ := c.Get(CSRFContextKey).(string)
	return c.Render(status, name, view.Page{
		Title:    title,
		SignedIn: auth.IdentityFromContext(c) != nil,
		CSRF:     token,
		Notice:   popFlash(c),
		Content:  content,
	})
}

// renderError shows a failed operation. Unauthenticated callers are sent to
// the sign-in page instead.
func renderError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusUnauthorized {
		return c.Redirect(http.StatusSeeOther, routes.Login)
	}
	c.Logger().Error(err)
	return renderPage(c, httpErr.StatusCode, view.ErrorPage, http.StatusText(httpErr.StatusCode), view.Error{
		Status:  httpErr.StatusCode,
		Message: httpErr.Message,
	})
}

// writeError renders err as the JSON error envelope.
func writeError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// setFlash keeps a notice for the next page render.
func setFlash(c echo.Context, notice *form.Notice) {
	if notice == nil {
		return
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns and clears the pending notice.
func popFlash(c echo.Context) *form.Notice {
	cookie, err := c.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var notice form.Notice
	if err := json.Unmarshal(payload, &notice); err != nil {
		return nil
	}
	return &notice
}

// referrer returns the local path of the Referer header when it points at
// this host.
func referrer(c echo.Context) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" {
		return ""
	}
	if ref.Host != "" && ref.Host != c.Request().Host {
		return ""
	}
	if !routes.IsLocal(ref.Path) {
		return ""
	}
	return ref.RequestURI()
}
