package ledger

import (
	"context"
	"errors"

	"go-pos-ledger/internal/logging"
	"go-pos-ledger/internal/metrics"
	"go-pos-ledger/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	AdjustOK       = "ok"
	AdjustOversold = "oversold"
	AdjustNotFound = "not_found"
	AdjustFailed   = "error"
)

type stockAdjuster interface {
	AdjustQuantity(ctx context.Context, id string, delta int) (*models.Product, error)
}

// Adjustment is the result of one line's stock decrement.
type Adjustment struct {
	ProductID string
	Quantity  int
	Remaining int
	Outcome   string
	Err       error
}

// InventoryAdjuster decrements stock for a stored transaction, one line at a
// time. Lines are independent: a failure is logged and the next line is
// still processed. Nothing is retried or rolled back, and a negative
// remaining quantity is only reported.
type InventoryAdjuster struct {
	store   stockAdjuster
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewInventoryAdjuster(store stockAdjuster, m *metrics.Metrics) *InventoryAdjuster {
	return &InventoryAdjuster{
		store:   store,
		metrics: m,
		tracer:  otel.Tracer("go-pos-ledger/inventory"),
	}
}

func (a *InventoryAdjuster) Apply(ctx context.Context, tx *models.Transaction) []Adjustment {
	ctx, span := a.tracer.Start(ctx, "InventoryAdjuster.Apply",
		trace.WithAttributes(
			attribute.String("transaction.id", tx.TransactionID),
			attribute.Int("transaction.lines", len(tx.CartItems)),
		))
	defer span.End()

	log := logging.FromContext(ctx).With(zap.String("transaction_id", tx.TransactionID))

	results := make([]Adjustment, 0, len(tx.CartItems))
	for _, item := range tx.CartItems {
		adj := Adjustment{ProductID: item.ProductID, Quantity: item.Quantity}

		updated, err := a.store.AdjustQuantity(ctx, item.ProductID, -item.Quantity)
		switch {
		case errors.Is(err, models.ErrNotFound):
			adj.Outcome, adj.Err = AdjustNotFound, err
			log.Error("stock_update_product_missing",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
			)
		case err != nil:
			adj.Outcome, adj.Err = AdjustFailed, err
			log.Error("stock_update_failed",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		case updated.Quantity < 0:
			adj.Outcome, adj.Remaining = AdjustOversold, updated.Quantity
			log.Warn("stock_went_negative",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Int("remaining", updated.Quantity),
			)
		default:
			adj.Outcome, adj.Remaining = AdjustOK, updated.Quantity
		}

		if adj.Err != nil {
			span.RecordError(adj.Err, trace.WithAttributes(attribute.String("product.id", item.ProductID)))
		}
		a.metrics.ObserveStockAdjustment(adj.Outcome)
		results = append(results, adj)
	}
	return results
}
