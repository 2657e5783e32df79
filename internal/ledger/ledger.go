// Package ledger holds the tenant-scoped catalog and checkout logic. Every
// operation takes the authenticated tenant id explicitly.
package ledger

import (
	"context"
	"time"

	"go-pos-ledger/internal/metrics"
	"go-pos-ledger/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// EventPublisher announces stored transactions to other systems.
type EventPublisher interface {
	TransactionCreated(ctx context.Context, tx *models.Transaction) error
}

type nopPublisher struct{}

func (nopPublisher) TransactionCreated(context.Context, *models.Transaction) error { return nil }

type Options struct {
	Metrics *metrics.Metrics
	Events  EventPublisher
	IDs     *IDGenerator
}

type Ledger struct {
	products     ProductStore
	transactions TransactionStore
	builder      *Builder
	inventory    *InventoryAdjuster
	events       EventPublisher
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	now          func() time.Time
}

func New(products ProductStore, transactions TransactionStore, opts Options) *Ledger {
	events := opts.Events
	if events == nil {
		events = nopPublisher{}
	}
	return &Ledger{
		products:     products,
		transactions: transactions,
		builder:      NewBuilder(products, opts.IDs),
		inventory:    NewInventoryAdjuster(products, opts.Metrics),
		events:       events,
		metrics:      opts.Metrics,
		tracer:       otel.Tracer("go-pos-ledger/ledger"),
		now:          time.Now,
	}
}
