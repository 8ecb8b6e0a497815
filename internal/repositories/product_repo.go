package repositories

import (
	"context"
	"strings"

	"trackwise/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, filter *models.ProductSearchFilter) ([]*models.Product, error)
	IncrementQuantity(ctx context.Context, companyID, id uuid.UUID) (*models.Product, error)
	DecrementQuantity(ctx context.Context, companyID, id uuid.UUID) (*models.Product, error)
	ListLowStock(ctx context.Context, companyID uuid.UUID, threshold int) ([]*models.Product, error)
	SetImageKey(ctx context.Context, companyID, id uuid.UUID, imageKey *string) error
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = "id, company_id, name, category, cost_price, quantity, image_key, created_at, updated_at"

func scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.CompanyID, &product.Name, &product.Category, &product.CostPrice, &product.Quantity, &product.ImageKey, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, company_id, name, category, cost_price, quantity, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.CompanyID, product.Name, product.Category, product.CostPrice, product.Quantity, product.ImageKey)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE company_id = $1 AND id = $2
	`
	return scanProduct(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, category = $2, cost_price = $3, quantity = $4, updated_at = NOW()
		WHERE company_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, product.Name, product.Category, product.CostPrice, product.Quantity, product.CompanyID, product.ID)
	return err
}

func (r *productRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	query := `DELETE FROM products WHERE company_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, companyID, id)
	return err
}

// escapeLike escapes ILIKE metacharacters so a search term always
// matches literally; "50%" must not match every name containing "50".
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *productRepo) List(ctx context.Context, companyID uuid.UUID, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE company_id = $1
	`
	args := []any{companyID}

	if filter != nil && filter.Search != "" {
		query += ` AND (name ILIKE $2 OR category ILIKE $2)`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	// Default ordering keeps repeat calls deterministic.
	switch {
	case filter != nil && filter.CostFilter == "low":
		query += ` ORDER BY cost_price ASC, id ASC`
	case filter != nil && filter.CostFilter == "high":
		query += ` ORDER BY cost_price DESC, id ASC`
	default:
		query += ` ORDER BY created_at DESC, id ASC`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// IncrementQuantity adds one unit in a single scoped statement so
// concurrent clicks never lose updates.
func (r *productRepo) IncrementQuantity(ctx context.Context, companyID, id uuid.UUID) (*models.Product, error) {
	query := `
		UPDATE products
		SET quantity = quantity + 1, updated_at = NOW()
		WHERE company_id = $1 AND id = $2
		RETURNING ` + productColumns + `
	`
	return scanProduct(r.db.QueryRow(ctx, query, companyID, id))
}

// DecrementQuantity removes one unit, clamped at zero. Decrementing a
// product already at zero is a no-op that still returns the row.
func (r *productRepo) DecrementQuantity(ctx context.Context, companyID, id uuid.UUID) (*models.Product, error) {
	query := `
		UPDATE products
		SET quantity = GREATEST(quantity - 1, 0), updated_at = NOW()
		WHERE company_id = $1 AND id = $2
		RETURNING ` + productColumns + `
	`
	return scanProduct(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *productRepo) ListLowStock(ctx context.Context, companyID uuid.UUID, threshold int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE company_id = $1 AND quantity <= $2
		ORDER BY quantity ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query, companyID, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) SetImageKey(ctx context.Context, companyID, id uuid.UUID, imageKey *string) error {
	query := `
		UPDATE products
		SET image_key = $1, updated_at = NOW()
		WHERE company_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, imageKey, companyID, id)
	return err
}
