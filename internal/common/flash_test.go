package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlash_RoundTrip(t *testing.T) {
	e := echo.New()

	// First request queues the notice.
	req := httptest.NewRequest(http.MethodPost, "/accounts/register", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetFlash(c, FlashError, "Passwords do not match.")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "trackwise_flash", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// Next request carries the cookie and reads it once.
	req2 := httptest.NewRequest(http.MethodGet, "/accounts/register", nil)
	req2.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(req2, rec2)

	flash := PopFlash(c2)
	require.NotNil(t, flash)
	assert.Equal(t, FlashError, flash.Level)
	assert.Equal(t, "Passwords do not match.", flash.Message)

	// Reading clears the cookie.
	var cleared *http.Cookie
	for _, cookie := range rec2.Result().Cookies() {
		if cookie.Name == "trackwise_flash" {
			cleared = cookie
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0)
}

func TestPopFlash_NoCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Nil(t, PopFlash(c))
}

func TestPopFlash_GarbageValueClearsAndReturnsNil(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	req.AddCookie(&http.Cookie{Name: "trackwise_flash", Value: "not-base64!!"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.Nil(t, PopFlash(c))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "trackwise_flash=;")
}

func TestRedirectWithError_SeeOther(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/accounts/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, RedirectWithError(c, "/accounts/login", "Username does not exist."))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/accounts/login", rec.Header().Get(echo.HeaderLocation))
}
