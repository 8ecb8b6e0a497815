package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"trackwise/internal/common"
	"trackwise/internal/models"
	"trackwise/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StockResponse is the JSON contract of the stock mutation endpoints.
// Failures ride the same shape with success=false rather than an HTTP
// error status.
type StockResponse struct {
	Success         bool    `json:"success"`
	NewQuantity     int     `json:"new_quantity,omitempty"`
	DisplayQuantity string  `json:"display_quantity,omitempty"`
	TotalValue      float64 `json:"total_value,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// InventoryHandlers handles the inventory views and stock endpoints.
type InventoryHandlers struct {
	inventorySvc services.InventoryService
	logger       zerolog.Logger
}

func NewInventoryHandlers(inventorySvc services.InventoryService, logger zerolog.Logger) *InventoryHandlers {
	return &InventoryHandlers{
		inventorySvc: inventorySvc,
		logger:       logger,
	}
}

// resolveProfile loads the acting profile for page flows. A missing
// profile redirects to the dashboard; no inventory data is shown
// without one.
func (h *InventoryHandlers) resolveProfile(c echo.Context) (*models.Profile, error) {
	ctx := c.Request().Context()

	accountID, ok := common.GetAccountIDFromContext(ctx)
	if !ok {
		return nil, common.SendUnauthorizedError(c)
	}

	profile, err := h.inventorySvc.ResolveProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrProfileMissing) {
			return nil, common.RedirectWithError(c, "/dashboard", "User profile not found.")
		}
		h.logger.Error().Err(err).Msg("profile lookup failed")
		return nil, common.SendServerError(c, "Failed to load profile")
	}
	return profile, nil
}

// List handles GET /inventory/ with optional search and cost_filter
// query parameters.
func (h *InventoryHandlers) List(c echo.Context) error {
	profile, err := h.resolveProfile(c)
	if profile == nil {
		return err
	}

	filter := &models.ProductSearchFilter{
		Search:     c.QueryParam("search"),
		CostFilter: c.QueryParam("cost_filter"),
	}

	view, err := h.inventorySvc.List(c.Request().Context(), profile, filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("inventory list failed")
		return common.SendServerError(c, "Failed to load inventory")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"products":              view.Products,
		"total_inventory_value": view.TotalInventoryValue,
		"search_query":          view.Search,
		"cost_filter":           view.CostFilter,
		"view":                  view.View,
		"notice":                common.PopFlash(c),
	})
}

// Detail handles GET (view) and POST (owner-only edit) on
// /inventory/:id/.
func (h *InventoryHandlers) Detail(c echo.Context) error {
	profile, err := h.resolveProfile(c)
	if profile == nil {
		return err
	}

	productID, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.RedirectWithError(c, "/inventory/", "Product not found.")
	}

	if c.Request().Method == http.MethodPost {
		return h.edit(c, profile, productID)
	}

	product, err := h.inventorySvc.Get(c.Request().Context(), profile, productID)
	if err != nil {
		if errors.Is(err, common.ErrProductNotFound) {
			return common.RedirectWithError(c, "/inventory/", "Product not found.")
		}
		h.logger.Error().Err(err).Msg("product detail failed")
		return common.SendServerError(c, "Failed to load product")
	}

	payload := map[string]any{
		"product": product,
		"view":    services.ViewVariant(profile),
		"notice":  common.PopFlash(c),
	}
	if url, err := h.inventorySvc.ImageURL(c.Request().Context(), product); err == nil && url != "" {
		payload["image_url"] = url
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *InventoryHandlers) edit(c echo.Context, profile *models.Profile, productID uuid.UUID) error {
	// Ownership is settled before the form is read; staff never see
	// field errors for an operation they cannot perform.
	if !profile.IsOwner() {
		return common.RedirectWithError(c, "/inventory/", "Access denied. Only business owners can edit products.")
	}

	input, err := productInputFromForm(c)
	if err != nil {
		return common.RedirectWithError(c, "/inventory/"+productID.String()+"/", "Please correct the highlighted fields.")
	}

	product, err := h.inventorySvc.Edit(c.Request().Context(), profile, productID, input)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAccessDenied):
			return common.RedirectWithError(c, "/inventory/", "Access denied. Only business owners can edit products.")
		case errors.Is(err, common.ErrProductNotFound):
			return common.RedirectWithError(c, "/inventory/", "Product not found.")
		case errors.Is(err, common.ErrValidationFailed):
			return common.RedirectWithError(c, "/inventory/"+productID.String()+"/", "Please correct the highlighted fields.")
		default:
			h.logger.Error().Err(err).Msg("product edit failed")
			return common.SendServerError(c, "Failed to update product")
		}
	}

	return common.RedirectWithSuccess(c, "/inventory/", fmt.Sprintf("Product %q updated successfully!", product.Name))
}

// Add handles GET (form model) and POST (create) on /inventory/add/.
// Owners and staff may both add; the product is always attached to the
// acting profile's company.
func (h *InventoryHandlers) Add(c echo.Context) error {
	profile, err := h.resolveProfile(c)
	if profile == nil {
		return err
	}

	if c.Request().Method != http.MethodPost {
		return c.JSON(http.StatusOK, map[string]any{
			"view":   services.ViewVariant(profile),
			"notice": common.PopFlash(c),
		})
	}

	input, err := productInputFromForm(c)
	if err != nil {
		return common.RedirectWithError(c, "/inventory/add/", "Please correct the highlighted fields.")
	}

	product, err := h.inventorySvc.Add(c.Request().Context(), profile, input)
	if err != nil {
		if errors.Is(err, common.ErrValidationFailed) {
			return common.RedirectWithError(c, "/inventory/add/", "Please correct the highlighted fields.")
		}
		h.logger.Error().Err(err).Msg("product add failed")
		return common.SendServerError(c, "Failed to add product")
	}

	return common.RedirectWithSuccess(c, "/inventory/", fmt.Sprintf("Product %q added successfully!", product.Name))
}

// Delete handles /inventory/:id/delete/. GET returns the confirm view
// model; POST performs the owner-only delete.
func (h *InventoryHandlers) Delete(c echo.Context) error {
	profile, err := h.resolveProfile(c)
	if profile == nil {
		return err
	}

	productID, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.RedirectWithError(c, "/inventory/", "Product not found.")
	}

	// The confirm view is gated the same as the delete itself.
	if !profile.IsOwner() {
		return common.RedirectWithError(c, "/inventory/", "Access denied. Only business owners can delete products.")
	}

	if c.Request().Method != http.MethodPost {
		product, err := h.inventorySvc.Get(c.Request().Context(), profile, productID)
		if err != nil {
			return common.RedirectWithError(c, "/inventory/", "Product not found.")
		}
		return c.JSON(http.StatusOK, map[string]any{
			"product": product,
			"view":    services.ViewVariant(profile),
		})
	}

	name, err := h.inventorySvc.Delete(c.Request().Context(), profile, productID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAccessDenied):
			return common.RedirectWithError(c, "/inventory/", "Access denied. Only business owners can delete products.")
		case errors.Is(err, common.ErrProductNotFound):
			return common.RedirectWithError(c, "/inventory/", "Product not found.")
		default:
			h.logger.Error().Err(err).Msg("product delete failed")
			return common.SendServerError(c, "Failed to delete product")
		}
	}

	return common.RedirectWithSuccess(c, "/inventory/", fmt.Sprintf("Product %q deleted successfully!", name))
}

// IncreaseStock handles /inventory/:id/increase/. Each call adds one
// unit and is an independent atomic operation.
func (h *InventoryHandlers) IncreaseStock(c echo.Context) error {
	return h.mutateStock(c, h.inventorySvc.IncreaseStock)
}

// DecreaseStock handles /inventory/:id/decrease/. Each call removes
// one unit, clamped at zero; a decrement at the floor still reports
// success.
func (h *InventoryHandlers) DecreaseStock(c echo.Context) error {
	return h.mutateStock(c, h.inventorySvc.DecreaseStock)
}

func (h *InventoryHandlers) mutateStock(c echo.Context, mutate func(ctx context.Context, profile *models.Profile, productID uuid.UUID) (*services.StockResult, error)) error {
	if c.Request().Method != http.MethodPost {
		return c.JSON(http.StatusOK, StockResponse{Success: false, Error: "Invalid request"})
	}

	ctx := c.Request().Context()

	accountID, ok := common.GetAccountIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	productID, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return c.JSON(http.StatusOK, StockResponse{Success: false, Error: "Product not found"})
	}

	// A missing profile and a foreign or unknown product are reported
	// identically; existence never leaks across companies.
	profile, err := h.inventorySvc.ResolveProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrProfileMissing) {
			return c.JSON(http.StatusOK, StockResponse{Success: false, Error: "Product not found"})
		}
		h.logger.Error().Err(err).Msg("profile lookup failed")
		return common.SendServerError(c, "Failed to load profile")
	}

	result, err := mutate(ctx, profile, productID)
	if err != nil {
		if errors.Is(err, common.ErrProductNotFound) {
			return c.JSON(http.StatusOK, StockResponse{Success: false, Error: "Product not found"})
		}
		h.logger.Error().Err(err).Msg("stock mutation failed")
		return common.SendServerError(c, "Failed to adjust stock")
	}

	return c.JSON(http.StatusOK, StockResponse{
		Success:         true,
		NewQuantity:     result.NewQuantity,
		DisplayQuantity: result.DisplayQuantity,
		TotalValue:      result.TotalValue,
	})
}

// UploadImage handles POST /inventory/:id/image with a multipart
// "image" field.
func (h *InventoryHandlers) UploadImage(c echo.Context) error {
	profile, err := h.resolveProfile(c)
	if profile == nil {
		return err
	}

	productID, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendValidationError(c, "id", "invalid product id")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "image file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read image")
	}
	defer file.Close()

	key, err := h.inventorySvc.AttachImage(c.Request().Context(), profile, productID, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, common.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", "Product not found", nil))
		}
		h.logger.Error().Err(err).Msg("image upload failed")
		return common.SendServerError(c, "Failed to store image")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"image_key": key,
	})
}

func productInputFromForm(c echo.Context) (*services.ProductInput, error) {
	costPrice, err := decimal.NewFromString(c.FormValue("cost_price"))
	if err != nil {
		return nil, fmt.Errorf("%w: cost price must be a number", common.ErrValidationFailed)
	}

	quantity, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil {
		return nil, fmt.Errorf("%w: quantity must be a whole number", common.ErrValidationFailed)
	}

	return &services.ProductInput{
		Name:      c.FormValue("name"),
		Category:  c.FormValue("category"),
		CostPrice: costPrice,
		Quantity:  quantity,
	}, nil
}
