package common

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const flashCookieName = "trackwise_flash"

// Flash notice levels.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash is a one-shot notice surfaced to the user after a redirect.
// It rides a short-lived cookie and is cleared on first read.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// SetFlash queues a notice for the next request.
func SetFlash(c echo.Context, level, message string) {
	payload, err := json.Marshal(Flash{Level: level, Message: message})
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(5 * time.Minute),
	})
}

// PopFlash reads and clears the pending notice, if any.
func PopFlash(c echo.Context) *Flash {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	// Clear regardless of decode outcome; a flash is shown once.
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil
	}
	return &f
}

// RedirectWithError queues an error notice and redirects.
func RedirectWithError(c echo.Context, target, message string) error {
	SetFlash(c, FlashError, message)
	return c.Redirect(http.StatusSeeOther, target)
}

// RedirectWithSuccess queues a success notice and redirects.
func RedirectWithSuccess(c echo.Context, target, message string) error {
	SetFlash(c, FlashSuccess, message)
	return c.Redirect(http.StatusSeeOther, target)
}
