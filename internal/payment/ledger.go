package payment

import (
	"context"
	"log/slog"
	"time"

	"payment-service/internal/model"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ledgerCreatedCounter  = metrics.GetOrCreateCounter(`payment_ledger_create_total{result="created"}`)
	ledgerExistingCounter = metrics.GetOrCreateCounter(`payment_ledger_create_total{result="existing"}`)
	ledgerRejectedCounter = metrics.GetOrCreateCounter(`payment_ledger_create_total{result="rejected"}`)
)

// Ledger owns creation, lookup and status mutation of payment records and
// enforces the one-active-payment-per-job invariant.
type Ledger struct {
	payments PaymentStore
	jobs     JobStore
	logger   *slog.Logger
}

func NewLedger(payments PaymentStore, jobs JobStore, logger *slog.Logger) *Ledger {
	return &Ledger{
		payments: payments,
		jobs:     jobs,
		logger:   logger,
	}
}

// CreatePayment creates a PENDING payment for the job's full price. When a
// payment for the job already exists in any status other than FAILED, that
// payment is returned unchanged, so repeated calls are idempotent. Failed
// attempts are superseded by a new record rather than mutated in place.
func (l *Ledger) CreatePayment(ctx context.Context, jobID uuid.UUID) (*model.Payment, error) {
	job, err := l.jobs.GetByID(ctx, jobID)
	if err != nil {
		ledgerRejectedCounter.Inc()
		return nil, errors.Wrapf(err, "job %s", jobID)
	}

	if job.Price == nil || !job.Price.IsPositive() {
		ledgerRejectedCounter.Inc()
		return nil, errors.Wrap(ErrInvalidState, "job has no valid price")
	}

	if job.ContractorID == "" {
		ledgerRejectedCounter.Inc()
		return nil, errors.Wrap(ErrInvalidState, "job has no assigned contractor")
	}

	if job.State != model.JobStateReadyForReviewAndPay {
		ledgerRejectedCounter.Inc()
		return nil, errors.Wrapf(ErrInvalidState, "job is not payable in state %s", job.State)
	}

	existing, err := l.payments.GetActiveByJobID(ctx, jobID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		l.logger.WarnContext(ctx, "Payment for job already exists", "jobId", jobID, "paymentId", existing.ID)
		ledgerExistingCounter.Inc()
		return existing, nil
	}

	p := &model.Payment{
		ID:           uuid.New(),
		JobID:        jobID,
		CustomerID:   job.CustomerID,
		ContractorID: job.ContractorID,
		Amount:       *job.Price,
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := l.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Created payment", "paymentId", p.ID, "jobId", jobID)
	ledgerCreatedCounter.Inc()

	return p, nil
}

func (l *Ledger) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return l.payments.GetByID(ctx, id)
}

func (l *Ledger) ListByCustomer(ctx context.Context, customerID string) ([]*model.Payment, error) {
	return l.payments.ListByCustomer(ctx, customerID)
}

func (l *Ledger) ListByContractor(ctx context.Context, contractorID string) ([]*model.Payment, error) {
	return l.payments.ListByContractor(ctx, contractorID)
}

// UpdateStatus is a direct mutator used by operational tooling. The first
// transition to COMPLETED stamps the completion time.
func (l *Ledger) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	p, err := l.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Status = status
	if status == model.StatusCompleted && p.PaidAt == nil {
		now := time.Now().UTC()
		p.PaidAt = &now
	}

	if err := l.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Updated payment status", "paymentId", id, "status", status)
	return p, nil
}

// UpdateTransactionDetails is a direct mutator used by operational tooling.
func (l *Ledger) UpdateTransactionDetails(ctx context.Context, id uuid.UUID, transactionID, provider, details string) (*model.Payment, error) {
	p, err := l.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.TransactionID = transactionID
	p.Provider = provider
	p.Details = details

	if err := l.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Updated payment transaction details", "paymentId", id, "transactionId", transactionID)
	return p, nil
}

type Statistics struct {
	TotalPayments     int             `json:"totalPayments"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PendingAmount     decimal.Decimal `json:"pendingAmount"`
	CompletedPayments int             `json:"completedPayments"`
	PendingPayments   int             `json:"pendingPayments"`
	FailedPayments    int             `json:"failedPayments"`
}

// Statistics aggregates a party's payments: completed totals, pending
// exposure and failure counts.
func (l *Ledger) Statistics(ctx context.Context, userID string, isCustomer bool) (*Statistics, error) {
	var (
		payments []*model.Payment
		err      error
	)
	if isCustomer {
		payments, err = l.payments.ListByCustomer(ctx, userID)
	} else {
		payments, err = l.payments.ListByContractor(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	stats := &Statistics{TotalPayments: len(payments)}
	for _, p := range payments {
		switch p.Status {
		case model.StatusCompleted:
			stats.CompletedPayments++
			stats.TotalAmount = stats.TotalAmount.Add(p.Amount)
		case model.StatusPending:
			stats.PendingPayments++
			stats.PendingAmount = stats.PendingAmount.Add(p.Amount)
		case model.StatusFailed:
			stats.FailedPayments++
		}
	}

	return stats, nil
}
