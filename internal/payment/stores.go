package payment

import (
	"context"

	"payment-service/internal/model"

	"github.com/google/uuid"
)

// Store contracts the settlement subsystem requires from persistence.
// Implementations return model.ErrNotFound on lookup misses.

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	Update(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// GetActiveByJobID returns the payment for the job whose status is not
	// FAILED, if any.
	GetActiveByJobID(ctx context.Context, jobID uuid.UUID) (*model.Payment, error)
	GetByProviderOrderID(ctx context.Context, orderID string) (*model.Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*model.Payment, error)
	ListByContractor(ctx context.Context, contractorID string) ([]*model.Payment, error)
}

type JobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
}

type PayeeStore interface {
	GetByContractorID(ctx context.Context, contractorID string) (*model.PayeeInfo, error)
}

// ProviderClient is the resilient request executor the orchestrator sends
// provider calls through.
type ProviderClient interface {
	PostJSON(ctx context.Context, url string, body []byte) (int, []byte, error)
}

// EventPublisher emits settlement events after provider-side effects are
// settled. Publish failures must not fail the payment operation.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, p *model.Payment) error
}
