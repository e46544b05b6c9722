package event

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"payment-service/internal/model"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func testPayment() *model.Payment {
	paidAt := time.Now().UTC()
	return &model.Payment{
		ID:            uuid.New(),
		JobID:         uuid.New(),
		CustomerID:    "customer-1",
		ContractorID:  "contractor-1",
		Amount:        decimal.RequireFromString("50.00"),
		Status:        model.StatusCompleted,
		PaidAt:        &paidAt,
		TransactionID: "T1",
	}
}

func TestPublish(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("writes a keyed settlement event", func(t *testing.T) {
		writer := &capturingWriter{}
		publisher := NewPublisher(writer, logger)
		payment := testPayment()

		err := publisher.Publish(context.Background(), TypePaymentCompleted, payment)
		require.NoError(t, err)
		require.Len(t, writer.messages, 1)

		msg := writer.messages[0]
		assert.Equal(t, payment.ID.String(), string(msg.Key))

		var e SettlementEvent
		require.NoError(t, json.Unmarshal(msg.Value, &e))
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, TypePaymentCompleted, e.Event)
		assert.Equal(t, payment.ID, e.Payload.PaymentID)
		assert.Equal(t, payment.JobID, e.Payload.JobID)
		assert.Equal(t, model.StatusCompleted, e.Payload.Status)
		assert.Equal(t, "50.00", e.Payload.Amount)
		assert.Equal(t, "USD", e.Payload.Currency)
		assert.Equal(t, "T1", e.Payload.TransactionID)
	})

	t.Run("returns writer errors", func(t *testing.T) {
		writer := &capturingWriter{err: assert.AnError}
		publisher := NewPublisher(writer, logger)

		err := publisher.Publish(context.Background(), TypePaymentRefunded, testPayment())
		assert.Error(t, err)
	})
}
