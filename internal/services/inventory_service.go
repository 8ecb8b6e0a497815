package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"trackwise/internal/caching"
	"trackwise/internal/common"
	"trackwise/internal/models"
	"trackwise/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	productCacheTTL = 5 * time.Minute
	imageURLTTL     = 15 * time.Minute
)

// View variants for the role-dependent presentation of list and
// detail responses.
const (
	ViewOwner = "owner"
	ViewStaff = "staff"
)

// ProductInput carries validated fields for add and edit operations.
// The acting profile's company always overrides any supplied company.
type ProductInput struct {
	Name      string          `json:"name" form:"name"`
	Category  string          `json:"category" form:"category"`
	CostPrice decimal.Decimal `json:"cost_price" form:"cost_price"`
	Quantity  int             `json:"quantity" form:"quantity"`
}

// InventoryView is the scoped, filtered, sorted product set plus the
// aggregate value over exactly the visible set.
type InventoryView struct {
	Products            []*models.Product `json:"products"`
	TotalInventoryValue decimal.Decimal   `json:"total_inventory_value"`
	Search              string            `json:"search,omitempty"`
	CostFilter          string            `json:"cost_filter,omitempty"`
	View                string            `json:"view"`
}

// StockResult is the payload of a stock mutation.
type StockResult struct {
	NewQuantity     int     `json:"new_quantity"`
	DisplayQuantity string  `json:"display_quantity"`
	TotalValue      float64 `json:"total_value"`
}

type InventoryService interface {
	// ResolveProfile loads the acting account's profile. Every
	// inventory operation goes through this first; a missing profile
	// is ErrProfileMissing, never a crash.
	ResolveProfile(ctx context.Context, accountID uuid.UUID) (*models.Profile, error)

	List(ctx context.Context, profile *models.Profile, filter *models.ProductSearchFilter) (*InventoryView, error)
	Get(ctx context.Context, profile *models.Profile, productID uuid.UUID) (*models.Product, error)
	Add(ctx context.Context, profile *models.Profile, input *ProductInput) (*models.Product, error)
	Edit(ctx context.Context, profile *models.Profile, productID uuid.UUID, input *ProductInput) (*models.Product, error)
	Delete(ctx context.Context, profile *models.Profile, productID uuid.UUID) (string, error)

	IncreaseStock(ctx context.Context, profile *models.Profile, productID uuid.UUID) (*StockResult, error)
	DecreaseStock(ctx context.Context, profile *models.Profile, productID uuid.UUID) (*StockResult, error)

	AttachImage(ctx context.Context, profile *models.Profile, productID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	ImageURL(ctx context.Context, product *models.Product) (string, error)
}

type inventoryService struct {
	productRepo repositories.ProductRepository
	profileRepo repositories.ProfileRepository
	cacheSvc    caching.CacheService
	storageSvc  StorageService
	bucket      string
}

func NewInventoryService(productRepo repositories.ProductRepository, profileRepo repositories.ProfileRepository, cacheSvc caching.CacheService, storageSvc StorageService, bucket string) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		profileRepo: profileRepo,
		cacheSvc:    cacheSvc,
		storageSvc:  storageSvc,
		bucket:      bucket,
	}
}

func (s *inventoryService) ResolveProfile(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrProfileMissing
		}
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	return profile, nil
}

// ViewVariant selects the presentation variant for a profile.
func ViewVariant(profile *models.Profile) string {
	if profile.IsOwner() {
		return ViewOwner
	}
	return ViewStaff
}

// requireOwner is the single capability check for owner-gated
// operations; edit and delete both go through it.
func requireOwner(profile *models.Profile) error {
	if !profile.IsOwner() {
		return common.ErrAccessDenied
	}
	return nil
}

func (s *inventoryService) List(ctx context.Context, profile *models.Profile, filter *models.ProductSearchFilter) (*InventoryView, error) {
	products, err := s.productRepo.List(ctx, profile.CompanyID, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	// The aggregate covers exactly the visible set, not the whole
	// company inventory.
	total := decimal.Zero
	for _, product := range products {
		total = total.Add(product.TotalValue())
	}

	view := &InventoryView{
		Products:            products,
		TotalInventoryValue: total,
		View:                ViewVariant(profile),
	}
	if filter != nil {
		view.Search = filter.Search
		view.CostFilter = filter.CostFilter
	}
	return view, nil
}

func (s *inventoryService) Get(ctx context.Context, profile *models.Profile, productID uuid.UUID) (*models.Product, error) {
	if s.cacheSvc != nil {
		if cached, err := s.cacheSvc.GetProduct(ctx, profile.CompanyID, productID); err == nil && cached != nil {
			return cached, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, profile.CompanyID, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A product of another company is indistinguishable from a
			// missing one.
			return nil, common.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if s.cacheSvc != nil {
		_ = s.cacheSvc.SetProduct(ctx, profile.CompanyID, product, productCacheTTL)
	}
	return product, nil
}

func validateProductInput(input *ProductInput) error {
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidationFailed, err)
	}
	if err := common.ValidateRequiredString(input.Category, "category"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidationFailed, err)
	}
	if input.CostPrice.IsNegative() {
		return fmt.Errorf("%w: cost price cannot be negative", common.ErrValidationFailed)
	}
	if input.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", common.ErrValidationFailed)
	}
	return nil
}

func (s *inventoryService) Add(ctx context.Context, profile *models.Profile, input *ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:        uuid.New(),
		CompanyID: profile.CompanyID, // never client-controlled
		Name:      input.Name,
		Category:  input.Category,
		CostPrice: input.CostPrice,
		Quantity:  input.Quantity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *inventoryService) Edit(ctx context.Context, profile *models.Profile, productID uuid.UUID, input *ProductInput) (*models.Product, error) {
	if err := requireOwner(profile); err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.Get(ctx, profile, productID)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Category = input.Category
	product.CostPrice = input.CostPrice
	product.Quantity = input.Quantity
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidate(ctx, profile.CompanyID, productID)
	return product, nil
}

func (s *inventoryService) Delete(ctx context.Context, profile *models.Profile, productID uuid.UUID) (string, error) {
	if err := requireOwner(profile); err != nil {
		return "", err
	}

	product, err := s.Get(ctx, profile, productID)
	if err != nil {
		return "", err
	}

	if err := s.productRepo.Delete(ctx, profile.CompanyID, productID); err != nil {
		return "", fmt.Errorf("delete product: %w", err)
	}

	if product.ImageKey != nil && s.storageSvc != nil {
		_ = s.storageSvc.DeleteImage(ctx, s.bucket, *product.ImageKey)
	}

	s.invalidate(ctx, profile.CompanyID, productID)
	return product.Name, nil
}

func (s *inventoryService) IncreaseStock(ctx context.Context, profile *models.Profile, productID uuid.UUID) (*StockResult, error) {
	product, err := s.productRepo.IncrementQuantity(ctx, profile.CompanyID, productID)
	if err != nil {
		return nil, s.stockErr(err)
	}
	s.invalidate(ctx, profile.CompanyID, productID)
	return stockResult(product), nil
}

func (s *inventoryService) DecreaseStock(ctx context.Context, profile *models.Profile, productID uuid.UUID) (*StockResult, error) {
	product, err := s.productRepo.DecrementQuantity(ctx, profile.CompanyID, productID)
	if err != nil {
		return nil, s.stockErr(err)
	}
	s.invalidate(ctx, profile.CompanyID, productID)
	return stockResult(product), nil
}

func (s *inventoryService) AttachImage(ctx context.Context, profile *models.Profile, productID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	if s.storageSvc == nil {
		return "", fmt.Errorf("image storage not configured")
	}

	// Scope check before touching storage.
	if _, err := s.Get(ctx, profile, productID); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s/%s", profile.CompanyID.String(), productID.String())
	if err := s.storageSvc.UploadImage(ctx, s.bucket, objectName, reader, size, contentType); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	if err := s.productRepo.SetImageKey(ctx, profile.CompanyID, productID, &objectName); err != nil {
		return "", fmt.Errorf("record image key: %w", err)
	}

	s.invalidate(ctx, profile.CompanyID, productID)
	return objectName, nil
}

// ImageURL returns a short-lived link to the product's stored image,
// or "" when the product has none.
func (s *inventoryService) ImageURL(ctx context.Context, product *models.Product) (string, error) {
	if product.ImageKey == nil || s.storageSvc == nil {
		return "", nil
	}
	return s.storageSvc.GetPresignedURL(ctx, s.bucket, *product.ImageKey, imageURLTTL)
}

func (s *inventoryService) stockErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrProductNotFound
	}
	return fmt.Errorf("adjust stock: %w", err)
}

func (s *inventoryService) invalidate(ctx context.Context, companyID, productID uuid.UUID) {
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeleteProduct(ctx, companyID, productID)
	}
}

func stockResult(product *models.Product) *StockResult {
	return &StockResult{
		NewQuantity:     product.Quantity,
		DisplayQuantity: product.DisplayQuantity(),
		TotalValue:      product.TotalValue().InexactFloat64(),
	}
}
