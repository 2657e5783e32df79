package ledger

import (
	"context"
	"errors"
	"strings"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/logging"
	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CreateTransaction prices the cart against the live catalog, stores the
// record and then decrements stock line by line. Stock and event failures
// after the record is stored are logged and do not fail the checkout.
func (l *Ledger) CreateTransaction(ctx context.Context, tenantID string, req CheckoutRequest) (_ *TransactionView, err error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.CreateTransaction",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)))
	var total float64
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = apperr.KindOf(err).String()
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		l.metrics.ObserveCheckout(outcome, total)
		span.End()
	}()

	tx, catalog, err := l.builder.Build(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	if err := l.transactions.CreateTransaction(ctx, tx); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, apperr.Conflictf("Transaction %s already exists", tx.TransactionID)
		}
		return nil, apperr.Server(err, "Failed to create transaction")
	}

	log := logging.FromContext(ctx).With(zap.String("transaction_id", tx.TransactionID))
	log.Info("transaction_created",
		zap.String("tenant_id", tenantID),
		zap.String("total_amount", tx.TotalAmount.String()),
		zap.Int("lines", len(tx.CartItems)),
	)

	// The record is stored; a client hanging up must not skip the follow-up.
	after := context.WithoutCancel(ctx)
	l.inventory.Apply(after, tx)

	if err := l.events.TransactionCreated(after, tx); err != nil {
		log.Warn("transaction_event_publish_failed", zap.Error(err))
	}

	total = tx.TotalAmount.InexactFloat64()
	span.SetAttributes(attribute.String("transaction.id", tx.TransactionID))
	return newView(tx, catalog), nil
}

func (l *Ledger) GetTransaction(ctx context.Context, tenantID, id string) (*TransactionView, error) {
	tx, err := l.ownedTransaction(ctx, tenantID, id, "view")
	if err != nil {
		return nil, err
	}
	views, err := l.join(ctx, tenantID, []models.Transaction{*tx})
	if err != nil {
		return nil, apperr.Server(err, "Failed to load transaction products")
	}
	return &views[0], nil
}

// ListTransactions returns the tenant's transactions, newest first.
func (l *Ledger) ListTransactions(ctx context.Context, tenantID string) ([]TransactionView, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	txs, err := l.transactions.ListTransactionsByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperr.Server(err, "Failed to fetch transactions")
	}
	return l.joinOrFail(ctx, tenantID, txs)
}

// ListTransactionsInRange returns the tenant's transactions created within r,
// newest first.
func (l *Ledger) ListTransactionsInRange(ctx context.Context, tenantID string, r DateRange) ([]TransactionView, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	txs, err := l.transactions.ListTransactionsByTenantAndDateRange(ctx, tenantID, r.Start, r.End)
	if err != nil {
		return nil, apperr.Server(err, "Failed to fetch transactions")
	}
	return l.joinOrFail(ctx, tenantID, txs)
}

func (l *Ledger) joinOrFail(ctx context.Context, tenantID string, txs []models.Transaction) ([]TransactionView, error) {
	views, err := l.join(ctx, tenantID, txs)
	if err != nil {
		return nil, apperr.Server(err, "Failed to load transaction products")
	}
	return views, nil
}

// TransactionPatch is a partial update as sent by a client. TotalAmount,
// Admin and TransactionID are only present so they can be refused.
type TransactionPatch struct {
	CustomerName    *string               `json:"customer_name"`
	CustomerContact *models.ContactNumber `json:"customer_contact"`
	CartItems       *[]CartLine           `json:"cart_items"`
	ExtraCharges    *[]ChargeInput        `json:"extra_charges"`
	BillingMode     *models.BillingMode   `json:"billing_mode"`
	TotalAmount     *decimal.Decimal      `json:"total_amount"`
	Admin           *string               `json:"admin"`
	TransactionID   *string               `json:"transaction_id"`
}

// UpdateTransaction applies a partial update. Financial fields cannot be set
// directly: when the cart or the extra charges change, the total is
// recomputed from live catalog prices. Stock is never adjusted by an update.
func (l *Ledger) UpdateTransaction(ctx context.Context, tenantID, id string, patch TransactionPatch) (*TransactionView, error) {
	tx, err := l.ownedTransaction(ctx, tenantID, id, "update")
	if err != nil {
		return nil, err
	}

	if patch.Admin != nil && *patch.Admin != tenantID {
		return nil, apperr.Validationf("Cannot change the admin associated with the transaction")
	}
	if patch.TransactionID != nil && *patch.TransactionID != tx.TransactionID {
		return nil, apperr.Validationf("transaction_id cannot be changed")
	}
	if patch.TotalAmount != nil {
		return nil, apperr.Validationf("total_amount is computed from the cart and cannot be set")
	}

	var u models.TransactionUpdate
	if patch.CustomerName != nil {
		name := strings.TrimSpace(*patch.CustomerName)
		if name == "" {
			return nil, apperr.Validationf("customer_name cannot be empty")
		}
		u.CustomerName = &name
	}
	if patch.CustomerContact != nil {
		if *patch.CustomerContact <= 0 {
			return nil, apperr.Validationf("customer_contact must be a positive number")
		}
		u.CustomerContact = patch.CustomerContact
	}
	if patch.BillingMode != nil {
		if !patch.BillingMode.Valid() {
			return nil, apperr.Validationf("billing_mode must be one of cash, card, online")
		}
		u.BillingMode = patch.BillingMode
	}

	lines := cartLinesOf(tx.CartItems)
	if patch.CartItems != nil {
		if len(*patch.CartItems) == 0 {
			return nil, apperr.Validationf("Cart cannot be empty")
		}
		if err := validateLines(*patch.CartItems); err != nil {
			return nil, err
		}
		lines = *patch.CartItems
		items := make([]models.LineItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, models.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
		}
		u.CartItems = &items
	}
	charges := tx.ExtraCharges
	if patch.ExtraCharges != nil {
		normalized, err := normalizeCharges(*patch.ExtraCharges)
		if err != nil {
			return nil, err
		}
		charges = normalized
		u.ExtraCharges = &normalized
	}
	if u.CartItems != nil || u.ExtraCharges != nil {
		priced, _, err := l.builder.Price(ctx, tenantID, lines)
		if err != nil {
			return nil, err
		}
		total := ComputeTotal(priced, charges)
		u.TotalAmount = &total
	}

	if u.IsEmpty() {
		return nil, apperr.Validationf("No valid fields provided for update.")
	}

	updated, err := l.transactions.UpdateTransaction(ctx, id, u)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFoundf("Transaction not found")
	}
	if err != nil {
		return nil, apperr.Server(err, "Failed to update transaction")
	}

	views, err := l.join(ctx, tenantID, []models.Transaction{*updated})
	if err != nil {
		return nil, apperr.Server(err, "Failed to load transaction products")
	}
	return &views[0], nil
}

// DeleteTransaction removes the record. Stock sold by it is not restored.
func (l *Ledger) DeleteTransaction(ctx context.Context, tenantID, id string) error {
	if _, err := l.ownedTransaction(ctx, tenantID, id, "delete"); err != nil {
		return err
	}
	err := l.transactions.DeleteTransaction(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return apperr.NotFoundf("Transaction not found")
	}
	if err != nil {
		return apperr.Server(err, "Failed to delete transaction")
	}
	return nil
}

func (l *Ledger) ownedTransaction(ctx context.Context, tenantID, id, verb string) (*models.Transaction, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	tx, err := l.transactions.GetTransaction(ctx, id)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, apperr.Server(err, "Failed to fetch transaction")
	}
	found := err == nil
	owner := ""
	if found {
		owner = tx.TenantID
	}
	if err := Enforce(tenantID, owner, found, "transaction", verb); err != nil {
		return nil, err
	}
	return tx, nil
}

func cartLinesOf(items []models.LineItem) []CartLine {
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}
