package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by stores when a lookup misses.
var ErrNotFound = errors.New("not found")

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusCompleted  PaymentStatus = "COMPLETED"
	StatusFailed     PaymentStatus = "FAILED"
	StatusRefunded   PaymentStatus = "REFUNDED"
	StatusCancelled  PaymentStatus = "CANCELLED"
)

// JobStateReadyForReviewAndPay is the only job state a payment may be
// created in.
const JobStateReadyForReviewAndPay = "READY_FOR_REVIEW_AND_PAY"

type Job struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	State        string           `json:"state"`
	CustomerID   string           `json:"customerId"`
	ContractorID string           `json:"contractorId,omitempty"`
}

type Payment struct {
	ID              uuid.UUID       `json:"id"`
	JobID           uuid.UUID       `json:"jobId"`
	CustomerID      string          `json:"customerId"`
	ContractorID    string          `json:"contractorId"`
	Amount          decimal.Decimal `json:"amount"`
	Status          PaymentStatus   `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	TransactionID   string          `json:"transactionId,omitempty"`
	Provider        string          `json:"provider,omitempty"`
	ProviderOrderID string          `json:"providerOrderId,omitempty"`
	// Details keeps the last raw provider response for audit and debugging.
	Details string `json:"details,omitempty"`
}

type PayeeInfo struct {
	ContractorID  string     `json:"contractorId"`
	PayPalEmail   string     `json:"paypalEmail"`
	DefaultMethod string     `json:"defaultMethod"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

func (p *PayeeInfo) IsComplete() bool {
	return p != nil && p.PayPalEmail != ""
}

// ProviderOrder is the transient artifact of order creation: the provider's
// order id plus the URL the customer is redirected to for approval.
type ProviderOrder struct {
	OrderID     string `json:"orderId"`
	ApprovalURL string `json:"approvalUrl,omitempty"`
}
