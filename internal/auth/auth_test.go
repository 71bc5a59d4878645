package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTokenStore is a mock implementation of TokenStoreInterface.
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

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", "https://idp.example")

	token, err := svc.IssueToken("user_2abc", time.Hour)
	require.NoError(t, err)

	identity, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", identity.ID)
	assert.NotEmpty(t, identity.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), identity.ExpiresAt, time.Minute)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", "https://idp.example")

	expired, err := svc.IssueToken("user_2abc", -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewJWTService("other-secret", "https://idp.example").IssueToken("user_2abc", time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewJWTService("test-secret", "https://evil.example").IssueToken("user_2abc", time.Hour)
	require.NoError(t, err)
	noSubject, err := svc.IssueToken("", time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"no subject":   noSubject,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func newMiddleware(t *testing.T, revoked bool) (*Middleware, *JWTService) {
	t.Helper()
	svc := NewJWTService("test-secret", "")
	store := new(MockTokenStore)
	store.On("IsRevoked", mock.Anything, mock.Anything).Return(revoked, nil)
	return NewMiddleware(svc, store, "__session", "/login"), svc
}

func serve(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, string) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = CallerID(c)
		return c.String(http.StatusOK, "ok")
	}, mw)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestMiddleware_RequirePage(t *testing.T) {
	m, svc := newMiddleware(t, false)
	token, err := svc.IssueToken("user_1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: token})
	rec, caller := serve(m.RequirePage(), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_1", caller)

	rec, _ = serve(m.RequirePage(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestMiddleware_RequireAPI(t *testing.T) {
	m, svc := newMiddleware(t, false)
	token, err := svc.IssueToken("user_1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec, caller := serve(m.RequireAPI(), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_1", caller)

	rec, _ = serve(m.RequireAPI(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RevokedToken(t *testing.T) {
	m, svc := newMiddleware(t, true)
	token, err := svc.IssueToken("user_1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec, _ := serve(m.RequireAPI(), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_OptionalLetsGuestsThrough(t *testing.T) {
	m, _ := newMiddleware(t, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "garbage"})
	rec, caller := serve(m.Optional(), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, caller)
}
