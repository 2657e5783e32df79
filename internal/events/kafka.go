package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go-pos-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	publishTimeout = 2 * time.Second
	// kafka-go holds partial batches for a second by default; checkout
	// waits on the write, so flush almost immediately.
	batchTimeout = 10 * time.Millisecond
)

// TransactionCreated is the payload published once a checkout is stored.
type TransactionCreated struct {
	EventID       string             `json:"event_id"`
	Type          string             `json:"type"`
	TransactionID string             `json:"transaction_id"`
	TenantID      string             `json:"tenant_id"`
	BillingMode   models.BillingMode `json:"billing_mode"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Items         []models.LineItem  `json:"items"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

func NewTransactionCreated(tx *models.Transaction) TransactionCreated {
	return TransactionCreated{
		EventID:       uuid.NewString(),
		Type:          "transaction.created",
		TransactionID: tx.TransactionID,
		TenantID:      tx.TenantID,
		BillingMode:   tx.BillingMode,
		TotalAmount:   tx.TotalAmount,
		Items:         tx.CartItems,
		OccurredAt:    time.Now().UTC(),
	}
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: batchTimeout,
	}
}

// Publisher sends transaction events keyed by tenant, so one tenant's events
// stay ordered within a partition.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w}
}

func (p *Publisher) TransactionCreated(ctx context.Context, tx *models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return publishJSON(ctx, p.writer, tx.TenantID, NewTransactionCreated(tx))
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func publishJSON(ctx context.Context, writer messageWriter, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) TransactionCreated(context.Context, *models.Transaction) error { return nil }
func (Nop) Close() error                                                 { return nil }
