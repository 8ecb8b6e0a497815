package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"trackwise/internal/common"
	"trackwise/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password, confirmation string) (*models.Account, error) {
	args := m.Called(ctx, username, password, confirmation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*models.Account, string, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.Account), args.String(1), args.Error(2)
}

func (m *MockAuthService) GenerateToken(accountID uuid.UUID) (string, error) {
	args := m.Called(accountID)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func newAuthContext(t *testing.T, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegister_DuplicateUsernameRedirectsBack(t *testing.T) {
	authSvc := new(MockAuthService)
	authSvc.On("Register", mock.Anything, "alice", "Str0ngPass", "Str0ngPass").
		Return(nil, common.ErrDuplicateUsername)

	h := NewAuthHandlers(authSvc, new(MockInventoryService), 3600, zerolog.Nop())
	c, rec := newAuthContext(t, "/accounts/register", url.Values{
		"username":  {"alice"},
		"password1": {"Str0ngPass"},
		"password2": {"Str0ngPass"},
	})

	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/register", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "trackwise_flash")
}

func TestRegister_ShortPasswordRedirectsBack(t *testing.T) {
	authSvc := new(MockAuthService)
	authSvc.On("Register", mock.Anything, "bob", "short", "short").
		Return(nil, common.ErrPasswordTooShort)

	h := NewAuthHandlers(authSvc, new(MockInventoryService), 3600, zerolog.Nop())
	c, rec := newAuthContext(t, "/accounts/register", url.Values{
		"username":  {"bob"},
		"password1": {"short"},
		"password2": {"short"},
	})

	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/register", rec.Header().Get(echo.HeaderLocation))
}

func TestRegister_SuccessRedirectsToLogin(t *testing.T) {
	account := &models.Account{ID: uuid.New(), Username: "carol"}

	authSvc := new(MockAuthService)
	authSvc.On("Register", mock.Anything, "carol", "Str0ngPass", "Str0ngPass").
		Return(account, nil)

	h := NewAuthHandlers(authSvc, new(MockInventoryService), 3600, zerolog.Nop())
	c, rec := newAuthContext(t, "/accounts/register", url.Values{
		"username":  {"carol"},
		"password1": {"Str0ngPass"},
		"password2": {"Str0ngPass"},
	})

	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login", rec.Header().Get(echo.HeaderLocation))
}

func TestLogin_UnknownUsernameRedirectsBack(t *testing.T) {
	authSvc := new(MockAuthService)
	authSvc.On("Login", mock.Anything, "ghost", "whatever").
		Return(nil, "", common.ErrUnknownUser)

	h := NewAuthHandlers(authSvc, new(MockInventoryService), 3600, zerolog.Nop())
	c, rec := newAuthContext(t, "/accounts/login", url.Values{
		"username": {"ghost"},
		"password": {"whatever"},
	})

	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login", rec.Header().Get(echo.HeaderLocation))
}

func TestLogin_SuccessSetsSessionCookie(t *testing.T) {
	account := &models.Account{ID: uuid.New(), Username: "alice"}

	authSvc := new(MockAuthService)
	authSvc.On("Login", mock.Anything, "alice", "Str0ngPass").
		Return(account, "signed-token", nil)

	h := NewAuthHandlers(authSvc, new(MockInventoryService), 3600, zerolog.Nop())
	c, rec := newAuthContext(t, "/accounts/login", url.Values{
		"username": {"alice"},
		"password": {"Str0ngPass"},
	})

	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

	res := rec.Result()
	var session *http.Cookie
	for _, cookie := range res.Cookies() {
		if cookie.Name == "trackwise_session" {
			session = cookie
		}
	}
	require.NotNil(t, session, "session cookie must be set on login")
	assert.Equal(t, "signed-token", session.Value)
	assert.True(t, session.HttpOnly)
}

func TestLogout_ClearsSessionCookie(t *testing.T) {
	h := NewAuthHandlers(new(MockAuthService), new(MockInventoryService), 3600, zerolog.Nop())
	c, rec := newAuthContext(t, "/accounts/logout", url.Values{})

	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login", rec.Header().Get(echo.HeaderLocation))

	var session *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "trackwise_session" {
			session = cookie
		}
	}
	require.NotNil(t, session)
	assert.Empty(t, session.Value)
	assert.True(t, session.MaxAge < 0)
}

func TestDashboard_RendersWithoutProfile(t *testing.T) {
	accountID := uuid.New()

	invSvc := new(MockInventoryService)
	invSvc.On("ResolveProfile", mock.Anything, accountID).Return(nil, common.ErrProfileMissing)

	h := NewAuthHandlers(new(MockAuthService), invSvc, 3600, zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(context.WithValue(req.Context(), common.AccountIDKey, accountID))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Dashboard(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"profile"`)
}
