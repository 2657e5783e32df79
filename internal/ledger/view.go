package ledger

import (
	"context"
	"errors"

	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
)

type ProductSummary struct {
	ID    string          `json:"_id"`
	Name  string          `json:"product_name"`
	Price decimal.Decimal `json:"product_price"`
}

// ResolvedLineItem is a stored line joined with its product. Product is nil
// when the product no longer exists or is not the tenant's.
type ResolvedLineItem struct {
	Product   *ProductSummary `json:"product"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
}

// TransactionView is what callers get back: the stored record with cart lines
// resolved for receipt rendering.
type TransactionView struct {
	models.Transaction
	CartItems []ResolvedLineItem `json:"cart_items"`
}

func newView(tx *models.Transaction, catalog map[string]*models.Product) *TransactionView {
	lines := make([]ResolvedLineItem, 0, len(tx.CartItems))
	for _, item := range tx.CartItems {
		line := ResolvedLineItem{ProductID: item.ProductID, Quantity: item.Quantity}
		if p, ok := catalog[item.ProductID]; ok && p != nil {
			line.Product = &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price}
		}
		lines = append(lines, line)
	}
	return &TransactionView{Transaction: *tx, CartItems: lines}
}

// join resolves the products referenced by txs, sharing lookups across records.
func (l *Ledger) join(ctx context.Context, tenantID string, txs []models.Transaction) ([]TransactionView, error) {
	catalog := make(map[string]*models.Product)
	views := make([]TransactionView, 0, len(txs))
	for i := range txs {
		for _, item := range txs[i].CartItems {
			if _, seen := catalog[item.ProductID]; seen {
				continue
			}
			p, err := l.products.GetProduct(ctx, item.ProductID)
			switch {
			case errors.Is(err, models.ErrNotFound):
				catalog[item.ProductID] = nil
			case err != nil:
				return nil, err
			case p.ShopID != tenantID:
				catalog[item.ProductID] = nil
			default:
				catalog[item.ProductID] = p
			}
		}
		views = append(views, *newView(&txs[i], catalog))
	}
	return views, nil
}
