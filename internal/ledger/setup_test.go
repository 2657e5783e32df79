package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-pos-ledger/internal/database"
	"go-pos-ledger/internal/metrics"
	"go-pos-ledger/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// flakyStore fails stock adjustments or inserts on demand.
type flakyStore struct {
	*database.MemoryStore
	failAdjust  map[string]error
	failCreate  error
	// afterCreate runs once a transaction is stored.
	afterCreate func()
	adjustErrs  []error
}

func (s *flakyStore) AdjustQuantity(ctx context.Context, id string, delta int) (*models.Product, error) {
	s.adjustErrs = append(s.adjustErrs, ctx.Err())
	if err, ok := s.failAdjust[id]; ok {
		return nil, err
	}
	return s.MemoryStore.AdjustQuantity(ctx, id, delta)
}

func (s *flakyStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if s.failCreate != nil {
		return s.failCreate
	}
	if err := s.MemoryStore.CreateTransaction(ctx, t); err != nil {
		return err
	}
	if s.afterCreate != nil {
		s.afterCreate()
	}
	return nil
}

type recordingPublisher struct {
	events  []*models.Transaction
	ctxErrs []error
	err     error
}

func (p *recordingPublisher) TransactionCreated(ctx context.Context, tx *models.Transaction) error {
	p.events = append(p.events, tx)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return p.err
}

type fixture struct {
	ledger  *Ledger
	store   *flakyStore
	events  *recordingPublisher
	metrics *metrics.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := &flakyStore{MemoryStore: database.NewMemoryStore(), failAdjust: map[string]error{}}
	events := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	l := New(store, store, Options{Metrics: m, Events: events})
	return &fixture{ledger: l, store: store, events: events, metrics: m}
}

var errBoom = errors.New("boom")

func (f *fixture) addProduct(t *testing.T, tenant string, price int64, qty int) *models.Product {
	t.Helper()
	p, err := f.ledger.CreateProduct(context.Background(), tenant, ProductInput{
		Name: "Widget", Price: dec(price), Quantity: &qty,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func cart(lines ...CartLine) CheckoutRequest {
	return CheckoutRequest{
		CustomerName:    "Asha",
		CustomerContact: 9876543210,
		CartItems:       lines,
		BillingMode:     models.BillingCash,
	}
}

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
