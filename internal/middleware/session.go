package middleware

import (
	"context"
	"net/http"
	"time"

	"trackwise/internal/common"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie that carries the session token for
// browser clients; API clients may send a Bearer header instead.
const SessionCookieName = "trackwise_session"

// SessionMiddleware validates the session token from the Authorization
// header or the session cookie and puts the account ID on the request
// context.
func SessionMiddleware(jwtSecret string) echo.MiddlewareFunc {
	config := echojwt.Config{
		SigningKey:  []byte(jwtSecret),
		TokenLookup: "header:Authorization:Bearer ,cookie:" + SessionCookieName,
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			subject, err := token.Claims.GetSubject()
			if err != nil {
				return
			}
			accountID, err := uuid.Parse(subject)
			if err != nil {
				return
			}
			ctx := context.WithValue(c.Request().Context(), common.AccountIDKey, accountID)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
	return echojwt.WithConfig(config)
}

// SetSessionCookie binds a session token to the browser.
func SetSessionCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

// ClearSessionCookie removes the session binding.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
