package event

import (
	"context"
	"encoding/json"
	"log/slog"

	"payment-service/internal/model"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypePaymentCompleted = "payment.completed"
	TypePaymentRefunded  = "payment.refunded"
)

var (
	publishedCounter     = metrics.GetOrCreateCounter(`settlement_events_total{result="published"}`)
	publishFailedCounter = metrics.GetOrCreateCounter(`settlement_events_total{result="failed"}`)
)

type SettlementEvent struct {
	ID      uuid.UUID         `json:"id"`
	Event   string            `json:"event"`
	Payload SettlementPayload `json:"payload"`
}

type SettlementPayload struct {
	PaymentID     uuid.UUID           `json:"paymentId"`
	JobID         uuid.UUID           `json:"jobId"`
	Status        model.PaymentStatus `json:"status"`
	Amount        string              `json:"amount"`
	Currency      string              `json:"currency"`
	TransactionID string              `json:"transactionId,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher emits settlement events after provider-side effects settle.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

func NewPublisher(writer messageWriter, logger *slog.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payment *model.Payment) error {
	e := SettlementEvent{
		ID:    uuid.New(),
		Event: eventType,
		Payload: SettlementPayload{
			PaymentID:     payment.ID,
			JobID:         payment.JobID,
			Status:        payment.Status,
			Amount:        payment.Amount.StringFixed(2),
			Currency:      "USD",
			TransactionID: payment.TransactionID,
		},
	}

	value, err := json.Marshal(e)
	if err != nil {
		publishFailedCounter.Inc()
		return err
	}

	msg := kafka.Message{
		// Payment id as key keeps per-payment ordering.
		Key:   []byte(payment.ID.String()),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		publishFailedCounter.Inc()
		return err
	}

	p.logger.InfoContext(ctx, "Published settlement event", "event", eventType, "paymentId", payment.ID)
	publishedCounter.Inc()

	return nil
}
