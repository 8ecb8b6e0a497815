package jobs

import (
	"context"

	"trackwise/internal/models"
	"trackwise/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LowStockAlert flags a product at or below the configured threshold.
type LowStockAlert struct {
	CompanyID    uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	CurrentStock int
	Threshold    int
}

// LowStockService scans company inventories for products running low.
// Purely observational; it never mutates state.
type LowStockService struct {
	productRepo repositories.ProductRepository
	companyRepo repositories.CompanyRepository
	threshold   int
	logger      zerolog.Logger
}

func NewLowStockService(productRepo repositories.ProductRepository, companyRepo repositories.CompanyRepository, threshold int, logger zerolog.Logger) *LowStockService {
	if threshold <= 0 {
		threshold = 10
	}
	return &LowStockService{
		productRepo: productRepo,
		companyRepo: companyRepo,
		threshold:   threshold,
		logger:      logger,
	}
}

// CheckCompany returns the low-stock products for one company.
func (s *LowStockService) CheckCompany(ctx context.Context, companyID uuid.UUID) ([]LowStockAlert, error) {
	products, err := s.productRepo.ListLowStock(ctx, companyID, s.threshold)
	if err != nil {
		return nil, err
	}

	var alerts []LowStockAlert
	for _, product := range products {
		alerts = append(alerts, LowStockAlert{
			CompanyID:    companyID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			CurrentStock: product.Quantity,
			Threshold:    s.threshold,
		})
	}
	return alerts, nil
}

// ScanAll walks every company and logs its low-stock products.
func (s *LowStockService) ScanAll(ctx context.Context) error {
	const pageSize = 100

	for offset := 0; ; offset += pageSize {
		companies, err := s.companyRepo.List(ctx, pageSize, offset)
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			return nil
		}

		for _, company := range companies {
			alerts, err := s.CheckCompany(ctx, company.ID)
			if err != nil {
				s.logger.Error().Err(err).Str("company", company.Name).Msg("low stock scan failed")
				continue
			}
			s.logAlerts(company, alerts)
		}

		if len(companies) < pageSize {
			return nil
		}
	}
}

func (s *LowStockService) logAlerts(company *models.Company, alerts []LowStockAlert) {
	for _, alert := range alerts {
		s.logger.Warn().
			Str("company", company.Name).
			Str("product", alert.ProductName).
			Int("quantity", alert.CurrentStock).
			Int("threshold", alert.Threshold).
			Msg("product running low on stock")
	}
}
