package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trackwise/internal/caching"
	"trackwise/internal/common"
	"trackwise/internal/models"
	"trackwise/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8

	loginRateLimit  = 10
	loginRateWindow = 15 * time.Minute
)

type AuthService interface {
	// Register creates a new account. Checks run in fixed order:
	// duplicate username, then password length, then confirmation
	// mismatch; the first failing check wins.
	Register(ctx context.Context, username, password, confirmation string) (*models.Account, error)

	// Login verifies credentials and returns the account with a signed
	// session token.
	Login(ctx context.Context, username, password string) (*models.Account, string, error)

	// GenerateToken issues a session token for an account.
	GenerateToken(accountID uuid.UUID) (string, error)

	// ValidateToken parses a session token and returns the account ID.
	ValidateToken(token string) (uuid.UUID, error)
}

type authService struct {
	accountRepo repositories.AccountRepository
	cacheSvc    caching.CacheService
	jwtSecret   []byte
	tokenTTL    time.Duration
}

func NewAuthService(accountRepo repositories.AccountRepository, cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds int) AuthService {
	return &authService{
		accountRepo: accountRepo,
		cacheSvc:    cacheSvc,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    time.Duration(tokenTTLSeconds) * time.Second,
	}
}

func (s *authService) Register(ctx context.Context, username, password, confirmation string) (*models.Account, error) {
	exists, err := s.accountRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, common.ErrDuplicateUsername
	}

	if len(password) < minPasswordLength {
		return nil, common.ErrPasswordTooShort
	}

	if password != confirmation {
		return nil, common.ErrPasswordMismatch
	}

	// The duplicate/length/mismatch order above is a fixed contract;
	// the username presence check comes last so it never shadows it.
	if err := common.ValidateRequiredString(username, "username"); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidationFailed, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.Account, string, error) {
	rateKey := "login:" + username

	if s.cacheSvc != nil {
		limited, err := s.cacheSvc.IsRateLimited(ctx, rateKey, loginRateLimit)
		if err == nil && limited {
			return nil, "", common.ErrInvalidCredentials
		}
	}

	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", common.ErrUnknownUser
		}
		return nil, "", fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		// Only failed verifications count toward the limit.
		if s.cacheSvc != nil {
			_ = s.cacheSvc.RecordFailedAttempt(ctx, rateKey, loginRateWindow)
		}
		return nil, "", common.ErrInvalidCredentials
	}

	if s.cacheSvc != nil {
		_ = s.cacheSvc.ClearAttempts(ctx, rateKey)
	}

	token, err := s.GenerateToken(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return account, token, nil
}

func (s *authService) GenerateToken(accountID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, common.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, common.ErrInvalidCredentials
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, common.ErrInvalidCredentials
	}
	return accountID, nil
}
