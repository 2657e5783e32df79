package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-pos-ledger/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewClient(t *testing.T) {
	t.Run("splits and trims brokers", func(t *testing.T) {
		c := NewClient(" kafka-1:9092, ,kafka-2:9092 ")
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Brokers)
		assert.True(t, c.Enabled())
	})

	t.Run("empty list disables publishing", func(t *testing.T) {
		assert.False(t, NewClient("").Enabled())
	})
}

func TestNewWriterFlushesPromptly(t *testing.T) {
	w := NewClient("localhost:9092").NewWriter("pos.transactions")
	defer w.Close()

	assert.Equal(t, "pos.transactions", w.Topic)
	assert.False(t, w.Async)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
}

func TestPublisherTransactionCreated(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisher(w)
	tx := &models.Transaction{
		TransactionID: "TXN-1700000000000-abc123",
		TenantID:      "tenant-a",
		BillingMode:   models.BillingCash,
		TotalAmount:   decimal.NewFromInt(115),
		CartItems:     []models.LineItem{{ProductID: "p1", Quantity: 2}},
		CreatedAt:     time.Now(),
	}

	require.NoError(t, p.TransactionCreated(context.Background(), tx))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "tenant-a", string(w.msgs[0].Key))

	var got TransactionCreated
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "transaction.created", got.Type)
	assert.Equal(t, tx.TransactionID, got.TransactionID)
	assert.True(t, decimal.NewFromInt(115).Equal(got.TotalAmount))
	assert.NotEmpty(t, got.EventID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisherPropagatesWriteError(t *testing.T) {
	p := NewPublisher(&recordingWriter{err: errors.New("broker down")})
	err := p.TransactionCreated(context.Background(), &models.Transaction{TenantID: "t"})
	assert.EqualError(t, err, "broker down")
}
