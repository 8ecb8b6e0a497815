package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"trackwise/internal/common"
	"trackwise/internal/middleware"
	"trackwise/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuthHandlers handles the registration and login form flows.
type AuthHandlers struct {
	authService  services.AuthService
	inventorySvc services.InventoryService
	sessionTTL   time.Duration
	logger       zerolog.Logger
}

func NewAuthHandlers(authService services.AuthService, inventorySvc services.InventoryService, sessionTTLSeconds int, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService:  authService,
		inventorySvc: inventorySvc,
		sessionTTL:   time.Duration(sessionTTLSeconds) * time.Second,
		logger:       logger,
	}
}

// Register handles the registration form submit. Failing checks
// redirect back to the form with a notice; success redirects to the
// login flow. Check order is duplicate username, then password length,
// then confirmation mismatch.
func (h *AuthHandlers) Register(c echo.Context) error {
	username := c.FormValue("username")
	password1 := c.FormValue("password1")
	password2 := c.FormValue("password2")

	_, err := h.authService.Register(c.Request().Context(), username, password1, password2)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateUsername):
			return common.RedirectWithError(c, "/accounts/register", "Username already exists. Please choose another.")
		case errors.Is(err, common.ErrPasswordTooShort):
			return common.RedirectWithError(c, "/accounts/register", "Password must be at least 8 characters long.")
		case errors.Is(err, common.ErrPasswordMismatch):
			return common.RedirectWithError(c, "/accounts/register", "Passwords do not match.")
		case errors.Is(err, common.ErrValidationFailed):
			return common.RedirectWithError(c, "/accounts/register", "Please fill in all fields.")
		default:
			h.logger.Error().Err(err).Str("username", username).Msg("registration failed")
			return common.SendServerError(c, "Failed to create account")
		}
	}

	return common.RedirectWithSuccess(c, "/accounts/login", "Account created successfully! You can now log in.")
}

// Login handles the login form submit. Unknown usernames and bad
// credentials redirect back with distinct notices; success binds the
// session cookie and redirects to the dashboard.
func (h *AuthHandlers) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	account, token, err := h.authService.Login(c.Request().Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnknownUser):
			return common.RedirectWithError(c, "/accounts/login", "Username does not exist.")
		case errors.Is(err, common.ErrInvalidCredentials):
			return common.RedirectWithError(c, "/accounts/login", "Invalid username or password.")
		default:
			h.logger.Error().Err(err).Str("username", username).Msg("login failed")
			return common.SendServerError(c, "Failed to log in")
		}
	}

	middleware.SetSessionCookie(c, token, h.sessionTTL)
	return common.RedirectWithSuccess(c, "/dashboard", fmt.Sprintf("Welcome back, %s!", account.Username))
}

// Logout clears the session binding.
func (h *AuthHandlers) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return common.RedirectWithSuccess(c, "/accounts/login", "You have been logged out.")
}

// Dashboard is the safe landing page after login and after any
// profile-missing redirect. It renders with or without a profile.
func (h *AuthHandlers) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	accountID, ok := common.GetAccountIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	payload := map[string]any{
		"account_id": accountID,
		"notice":     common.PopFlash(c),
	}

	profile, err := h.inventorySvc.ResolveProfile(ctx, accountID)
	if err == nil {
		payload["profile"] = profile
	} else if !errors.Is(err, common.ErrProfileMissing) {
		h.logger.Error().Err(err).Msg("profile lookup failed")
		return common.SendServerError(c, "Failed to load dashboard")
	}

	return c.JSON(http.StatusOK, payload)
}

// Me returns the acting account's profile.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	accountID, ok := common.GetAccountIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.inventorySvc.ResolveProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrProfileMissing) {
			return c.JSON(http.StatusNotFound, common.CreateErrorResponse("PROFILE_MISSING", "User profile not found.", nil))
		}
		h.logger.Error().Err(err).Msg("profile lookup failed")
		return common.SendServerError(c, "Failed to load profile")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"account_id": accountID,
		"profile":    profile,
	})
}
