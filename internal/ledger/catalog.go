package ledger

import (
	"context"
	"errors"
	"strings"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name     string           `json:"product_name"`
	Price    *decimal.Decimal `json:"product_price"`
	Quantity *int             `json:"product_quantity"`
}

type ProductPatch struct {
	Name     *string          `json:"product_name"`
	Price    *decimal.Decimal `json:"product_price"`
	Quantity *int             `json:"product_quantity"`
}

func (l *Ledger) CreateProduct(ctx context.Context, tenantID string, in ProductInput) (*models.Product, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == nil || in.Quantity == nil {
		return nil, apperr.Validationf("Product name, price, and quantity are mandatory")
	}
	if in.Price.IsNegative() {
		return nil, apperr.Validationf("Valid non-negative price is required.")
	}
	if !isCents(*in.Price) {
		return nil, apperr.Validationf("Price must have at most 2 decimal places.")
	}
	if *in.Quantity < 0 {
		return nil, apperr.Validationf("Valid non-negative quantity is required.")
	}

	now := l.now().UTC()
	p := &models.Product{
		ID:        newDocumentID(),
		ShopID:    tenantID,
		Name:      name,
		Price:     *in.Price,
		Quantity:  *in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.products.CreateProduct(ctx, p); err != nil {
		return nil, apperr.Server(err, "Failed to create product")
	}
	return p, nil
}

// ListProducts returns the tenant's catalog, newest first.
func (l *Ledger) ListProducts(ctx context.Context, tenantID string) ([]models.Product, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	products, err := l.products.ListProductsByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperr.Server(err, "Failed to fetch products")
	}
	return products, nil
}

func (l *Ledger) GetProduct(ctx context.Context, tenantID, id string) (*models.Product, error) {
	return l.ownedProduct(ctx, tenantID, id, "access")
}

// UpdateProduct merges the supplied name, price and quantity.
func (l *Ledger) UpdateProduct(ctx context.Context, tenantID, id string, patch ProductPatch) (*models.Product, error) {
	if _, err := l.ownedProduct(ctx, tenantID, id, "update"); err != nil {
		return nil, err
	}

	var u models.ProductUpdate
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validationf("Product name cannot be empty.")
		}
		u.Name = &name
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, apperr.Validationf("Invalid price provided for update.")
		}
		if !isCents(*patch.Price) {
			return nil, apperr.Validationf("Price must have at most 2 decimal places.")
		}
		u.Price = patch.Price
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return nil, apperr.Validationf("Invalid quantity provided for update.")
		}
		u.Quantity = patch.Quantity
	}
	if u.IsEmpty() {
		return nil, apperr.Validationf("No valid fields provided for update.")
	}

	updated, err := l.products.UpdateProduct(ctx, id, u)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFoundf("Product found initially but failed to update.")
	}
	if err != nil {
		return nil, apperr.Server(err, "Failed to update product")
	}
	return updated, nil
}

func (l *Ledger) DeleteProduct(ctx context.Context, tenantID, id string) error {
	if _, err := l.ownedProduct(ctx, tenantID, id, "delete"); err != nil {
		return err
	}
	err := l.products.DeleteProduct(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return apperr.NotFoundf("Product not found")
	}
	if err != nil {
		return apperr.Server(err, "Failed to delete product")
	}
	return nil
}

func (l *Ledger) ownedProduct(ctx context.Context, tenantID, id, verb string) (*models.Product, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	p, err := l.products.GetProduct(ctx, id)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Server(err, "Failed to fetch product")
	}
	found := err == nil
	owner := ""
	if found {
		owner = p.ShopID
	}
	if err := Enforce(tenantID, owner, found, "product", verb); err != nil {
		return nil, err
	}
	return p, nil
}
