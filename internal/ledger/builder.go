package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// CartLine is one requested line of a checkout.
type CartLine struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// ChargeInput is an extra charge as the client sends it.
type ChargeInput struct {
	Title  string           `json:"title"`
	Amount *decimal.Decimal `json:"amount"`
}

// CheckoutRequest carries everything needed to build a transaction. It has no
// total field; totals always come from ComputeTotal.
type CheckoutRequest struct {
	CustomerName    string               `json:"customer_name"`
	CustomerContact models.ContactNumber `json:"customer_contact"`
	CartItems       []CartLine           `json:"cart_items"`
	ExtraCharges    []ChargeInput        `json:"extra_charges"`
	BillingMode     models.BillingMode   `json:"billing_mode"`
}

// Validate checks the request shape. It does not look at the catalog.
func (r CheckoutRequest) Validate() error {
	if strings.TrimSpace(r.CustomerName) == "" || r.CustomerContact == 0 || r.CartItems == nil || r.BillingMode == "" {
		return apperr.Validationf("Missing required fields for transaction")
	}
	if len(r.CartItems) == 0 {
		return apperr.Validationf("Cart cannot be empty")
	}
	if r.CustomerContact < 0 {
		return apperr.Validationf("customer_contact must be a positive number")
	}
	if !r.BillingMode.Valid() {
		return apperr.Validationf("billing_mode must be one of cash, card, online")
	}
	if err := validateLines(r.CartItems); err != nil {
		return err
	}
	_, err := normalizeCharges(r.ExtraCharges)
	return err
}

func validateLines(lines []CartLine) error {
	for i, line := range lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return apperr.Validationf("cart_items[%d].product is required", i)
		}
		if line.Quantity < 1 {
			return apperr.Validationf("cart_items[%d].quantity must be at least 1", i)
		}
	}
	return nil
}

func normalizeCharges(in []ChargeInput) ([]models.ExtraCharge, error) {
	out := make([]models.ExtraCharge, 0, len(in))
	for i, c := range in {
		if strings.TrimSpace(c.Title) == "" {
			return nil, apperr.Validationf("extra_charges[%d].title is required", i)
		}
		if c.Amount == nil {
			return nil, apperr.Validationf("extra_charges[%d].amount is required", i)
		}
		if c.Amount.IsNegative() {
			return nil, apperr.Validationf("extra_charges[%d].amount must not be negative", i)
		}
		if !isCents(*c.Amount) {
			return nil, apperr.Validationf("extra_charges[%d].amount must have at most 2 decimal places", i)
		}
		out = append(out, models.ExtraCharge{Title: c.Title, Amount: *c.Amount})
	}
	return out, nil
}

// Money columns hold two decimal places.
const moneyScale = 2

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyScale))
}

// PricedLine is a cart line joined with the product it references.
type PricedLine struct {
	Product  *models.Product
	Quantity int
}

// ComputeTotal is Σ(price × quantity) over the lines plus Σ of the charges.
func ComputeTotal(lines []PricedLine, charges []models.ExtraCharge) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	for _, c := range charges {
		total = total.Add(c.Amount)
	}
	return total
}

type productGetter interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// Builder turns a checkout request into a transaction priced against the
// live catalog.
type Builder struct {
	products productGetter
	ids      *IDGenerator
	now      func() time.Time
}

func NewBuilder(products productGetter, ids *IDGenerator) *Builder {
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Builder{products: products, ids: ids, now: time.Now}
}

// Build validates req, resolves every referenced product owned by tenantID
// and returns the unsaved record along with the products it was priced from.
func (b *Builder) Build(ctx context.Context, tenantID string, req CheckoutRequest) (*models.Transaction, map[string]*models.Product, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	charges, err := normalizeCharges(req.ExtraCharges)
	if err != nil {
		return nil, nil, err
	}
	priced, catalog, err := b.Price(ctx, tenantID, req.CartItems)
	if err != nil {
		return nil, nil, err
	}

	items := make([]models.LineItem, 0, len(req.CartItems))
	for _, line := range req.CartItems {
		items = append(items, models.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	now := b.now().UTC()
	tx := &models.Transaction{
		ID:              newDocumentID(),
		TransactionID:   b.ids.Next(),
		TenantID:        tenantID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerContact: req.CustomerContact,
		CartItems:       items,
		ExtraCharges:    charges,
		BillingMode:     req.BillingMode,
		TotalAmount:     ComputeTotal(priced, charges),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return tx, catalog, nil
}

// Price looks up each line's product. A product that is missing or belongs to
// another tenant fails the whole computation with NotFound.
func (b *Builder) Price(ctx context.Context, tenantID string, lines []CartLine) ([]PricedLine, map[string]*models.Product, error) {
	catalog := make(map[string]*models.Product, len(lines))
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		p, ok := catalog[line.ProductID]
		if !ok {
			found, err := b.products.GetProduct(ctx, line.ProductID)
			switch {
			case errors.Is(err, models.ErrNotFound):
				return nil, nil, apperr.NotFoundf("Product not found for ID: %s", line.ProductID)
			case err != nil:
				return nil, nil, apperr.Server(err, "Failed to load product")
			}
			if found.ShopID != tenantID {
				return nil, nil, apperr.NotFoundf("Product not found for ID: %s", line.ProductID)
			}
			p = found
			catalog[line.ProductID] = p
		}
		priced = append(priced, PricedLine{Product: p, Quantity: line.Quantity})
	}
	return priced, catalog, nil
}
