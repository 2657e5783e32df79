package ledger

import (
	"context"
	"time"

	"go-pos-ledger/internal/models"
)

// ProductStore persists catalog items. Missing documents are reported as
// models.ErrNotFound.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProductsByTenant(ctx context.Context, tenantID string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	// AdjustQuantity adds delta to the on-hand quantity as a single atomic
	// increment and returns the product after the change.
	AdjustQuantity(ctx context.Context, id string, delta int) (*models.Product, error)
}

// TransactionStore persists checkout records. A duplicate transaction id is
// reported as models.ErrConflict.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactionsByTenant(ctx context.Context, tenantID string) ([]models.Transaction, error)
	ListTransactionsByTenantAndDateRange(ctx context.Context, tenantID string, start, end time.Time) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, u models.TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}
