package repositories

import (
	"context"

	"trackwise/internal/models"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepo struct {
	db Database
}

func NewProfileRepo(db Database) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, account_id, company_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.AccountID, profile.CompanyID, profile.Role)
	return err
}

func (r *profileRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, account_id, company_id, role, created_at, updated_at
		FROM profiles
		WHERE account_id = $1
	`
	err := r.db.QueryRow(ctx, query, accountID).Scan(&profile.ID, &profile.AccountID, &profile.CompanyID, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET company_id = $1, role = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, profile.CompanyID, profile.Role, profile.ID)
	return err
}
