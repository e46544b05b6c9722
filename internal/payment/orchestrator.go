package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"payment-service/internal/config"
	"payment-service/internal/event"
	"payment-service/internal/logcontext"
	"payment-service/internal/model"
	"payment-service/internal/paypal"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	providerName = "PayPal"
	currencyCode = "USD"
)

var (
	orderSuccessCounter   = metrics.GetOrCreateCounter(`payment_orders_total{result="success"}`)
	orderFailureCounter   = metrics.GetOrCreateCounter(`payment_orders_total{result="failure"}`)
	captureSuccessCounter = metrics.GetOrCreateCounter(`payment_captures_total{result="success"}`)
	captureFailureCounter = metrics.GetOrCreateCounter(`payment_captures_total{result="failure"}`)
	refundSuccessCounter  = metrics.GetOrCreateCounter(`payment_refunds_total{result="success"}`)
	refundFailureCounter  = metrics.GetOrCreateCounter(`payment_refunds_total{result="failure"}`)

	// captureDivergenceCounter counts captures the provider settled that the
	// local record could not be updated for. The provider-side effect is
	// irreversible, so these need operator attention.
	captureDivergenceCounter = metrics.GetOrCreateCounter(`payment_capture_divergence_total`)
)

// OrderResult, CaptureResult and RefundResult are the uniform shapes every
// orchestrator operation returns. No operation raises past this boundary.

type OrderResult struct {
	Success      bool      `json:"success"`
	OrderID      string    `json:"orderId,omitempty"`
	ApprovalURL  string    `json:"approvalUrl,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	PaymentID    uuid.UUID `json:"paymentId,omitempty"`
}

type CaptureResult struct {
	Success       bool      `json:"success"`
	TransactionID string    `json:"transactionId,omitempty"`
	PaymentID     uuid.UUID `json:"paymentId,omitempty"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
}

type RefundResult struct {
	Success      bool   `json:"success"`
	RefundID     string `json:"refundId,omitempty"`
	Status       string `json:"status,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Orchestrator builds provider order payloads, sends them through the
// resilient client and maps provider responses onto payment state
// transitions. Operations on a single payment are not serialized here;
// callers keep at most one orchestration in flight per payment id.
type Orchestrator struct {
	payments  PaymentStore
	jobs      JobStore
	payees    PayeeStore
	client    ProviderClient
	publisher EventPublisher
	hook      JobStateHook
	cfg       config.PayPal
	app       config.Application
	logger    *slog.Logger
}

func NewOrchestrator(
	payments PaymentStore,
	jobs JobStore,
	payees PayeeStore,
	client ProviderClient,
	publisher EventPublisher,
	hook JobStateHook,
	cfg config.PayPal,
	app config.Application,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		payments:  payments,
		jobs:      jobs,
		payees:    payees,
		client:    client,
		publisher: publisher,
		hook:      hook,
		cfg:       cfg,
		app:       app,
		logger:    logger,
	}
}

// CreateOrder creates a provider order for a pending payment and returns the
// order id plus the approval URL the customer is redirected to. The payment
// moves to PROCESSING and keeps the raw provider response and the order id.
func (o *Orchestrator) CreateOrder(ctx context.Context, paymentID uuid.UUID) OrderResult {
	ctx = logcontext.AppendCtx(ctx, slog.String("paymentId", paymentID.String()))

	fail := func(msg string, err error) OrderResult {
		o.logger.ErrorContext(ctx, msg, "error", err)
		orderFailureCounter.Inc()
		return OrderResult{Success: false, ErrorMessage: msg}
	}

	p, err := o.payments.GetByID(ctx, paymentID)
	if err != nil {
		return fail("Payment not found", err)
	}

	job, err := o.jobs.GetByID(ctx, p.JobID)
	if err != nil {
		return fail("Job not found", err)
	}

	payee, err := o.payees.GetByContractorID(ctx, p.ContractorID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fail("Failed to load contractor payment information", err)
	}
	if !payee.IsComplete() {
		return fail("Contractor has not set up their payment information", ErrPayeeNotConfigured)
	}

	orderReq := paypal.CreateOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []paypal.OrderPurchaseUnit{
			{
				ReferenceID: p.ID.String(),
				Description: fmt.Sprintf("Payment for job: %s", job.Name),
				CustomID:    job.ID.String(),
				Amount: paypal.OrderAmount{
					CurrencyCode: currencyCode,
					Value:        p.Amount.StringFixed(2),
				},
				Payee: paypal.OrderPayee{
					EmailAddress: payee.PayPalEmail,
				},
			},
		},
		ApplicationContext: paypal.OrderApplicationContext{
			ReturnURL:          fmt.Sprintf("%s/payment/success?paymentId=%s", o.app.BaseURL, p.ID),
			CancelURL:          fmt.Sprintf("%s/payment/cancel?paymentId=%s", o.app.BaseURL, p.ID),
			UserAction:         "PAY_NOW",
			ShippingPreference: "NO_SHIPPING",
		},
	}

	body, err := json.Marshal(orderReq)
	if err != nil {
		return fail("Failed to build provider order request", err)
	}

	o.logger.InfoContext(ctx, "Creating provider order", "amount", p.Amount.StringFixed(2))

	status, respBody, err := o.client.PostJSON(ctx, o.cfg.OrdersURL, body)
	if err != nil {
		return fail(requestErrorMessage(err), wrapRequestError(err))
	}
	if len(respBody) == 0 {
		return fail("Empty response from provider", ErrProvider)
	}
	if status >= 400 {
		return fail(fmt.Sprintf("Provider order creation returned status %d", status), ErrProvider)
	}

	var orderResp paypal.OrderResponse
	if err := json.Unmarshal(respBody, &orderResp); err != nil || orderResp.ID == "" {
		return fail("Invalid response from provider", errors.Wrap(ErrProvider, "order response has no id"))
	}

	p.Provider = providerName
	p.ProviderOrderID = orderResp.ID
	p.Details = string(respBody)
	p.Status = model.StatusProcessing

	if err := o.payments.Update(ctx, p); err != nil {
		return fail("Failed to persist provider order", err)
	}

	o.logger.InfoContext(ctx, "Created provider order", "orderId", orderResp.ID)
	orderSuccessCounter.Inc()

	return OrderResult{
		Success:     true,
		OrderID:     orderResp.ID,
		ApprovalURL: approvalLink(orderResp.Links),
		PaymentID:   p.ID,
	}
}

// CapturePayment finalizes an approved provider order into a funds transfer.
// A COMPLETED provider status completes the payment; any other status fails
// it terminally, and a retry requires a fresh payment for the same job.
func (o *Orchestrator) CapturePayment(ctx context.Context, orderID string) CaptureResult {
	ctx = logcontext.AppendCtx(ctx, slog.String("orderId", orderID))

	fail := func(msg string, err error) CaptureResult {
		o.logger.ErrorContext(ctx, msg, "error", err)
		captureFailureCounter.Inc()
		return CaptureResult{Success: false, ErrorMessage: msg}
	}

	p, err := o.payments.GetByProviderOrderID(ctx, orderID)
	if err != nil {
		return fail("Payment not found", err)
	}

	o.logger.InfoContext(ctx, "Capturing provider order", "paymentId", p.ID)

	captureURL := fmt.Sprintf(o.cfg.CaptureURLTemplate, orderID)

	status, respBody, err := o.client.PostJSON(ctx, captureURL, []byte("{}"))
	if err != nil {
		return fail(requestErrorMessage(err), wrapRequestError(err))
	}
	if len(respBody) == 0 {
		return fail("Empty response from provider", ErrProvider)
	}

	var captureResp paypal.OrderResponse
	if err := json.Unmarshal(respBody, &captureResp); err != nil {
		return fail("Invalid response from provider", err)
	}

	if !strings.EqualFold(captureResp.Status, "COMPLETED") {
		p.Status = model.StatusFailed
		p.Details = string(respBody)
		if updateErr := o.payments.Update(ctx, p); updateErr != nil {
			o.logger.ErrorContext(ctx, "Failed to persist failed capture", "error", updateErr)
		}
		return fail(fmt.Sprintf("Provider capture failed with status: %s (http %d)", captureResp.Status, status), ErrProvider)
	}

	now := time.Now().UTC()
	p.Status = model.StatusCompleted
	p.PaidAt = &now
	p.TransactionID = captureResp.ID
	p.Details = string(respBody)

	if err := o.payments.Update(ctx, p); err != nil {
		// The provider-side capture is authoritative and irreversible while
		// the local record stays stale. Logged apart from ordinary failures.
		o.logger.ErrorContext(ctx, "Capture settled at provider but local update failed",
			"paymentId", p.ID, "transactionId", captureResp.ID, "error", err)
		captureDivergenceCounter.Inc()
		return CaptureResult{Success: false, ErrorMessage: "Capture settled at provider but local update failed"}
	}

	if o.hook != nil {
		if err := o.hook.JobPaid(ctx, p.JobID); err != nil {
			o.logger.WarnContext(ctx, "Job state hook failed", "jobId", p.JobID, "error", err)
		}
	}

	o.publish(ctx, event.TypePaymentCompleted, p)

	o.logger.InfoContext(ctx, "Captured payment", "paymentId", p.ID, "transactionId", captureResp.ID)
	captureSuccessCounter.Inc()

	return CaptureResult{
		Success:       true,
		TransactionID: captureResp.ID,
		PaymentID:     p.ID,
	}
}

// RefundPayment refunds a completed payment through the provider. A nil
// amount, or an amount equal to the payment amount, requests a full refund;
// only 0 < amount < payment amount is sent as a partial refund.
func (o *Orchestrator) RefundPayment(ctx context.Context, paymentID uuid.UUID, amount *decimal.Decimal, reason string) RefundResult {
	ctx = logcontext.AppendCtx(ctx, slog.String("paymentId", paymentID.String()))

	fail := func(msg string, err error) RefundResult {
		o.logger.ErrorContext(ctx, msg, "error", err)
		refundFailureCounter.Inc()
		return RefundResult{Success: false, ErrorMessage: msg}
	}

	p, err := o.payments.GetByID(ctx, paymentID)
	if err != nil {
		return fail("Payment not found", err)
	}

	if p.Status != model.StatusCompleted {
		return fail("Payment is not in completed state", errors.Wrapf(ErrInvalidState, "status %s", p.Status))
	}

	if p.TransactionID == "" {
		return fail("Payment has no transaction id", ErrMissingTransaction)
	}

	refundReq := paypal.RefundRequest{}
	if amount != nil && amount.IsPositive() && amount.LessThan(p.Amount) {
		refundReq.Amount = &paypal.RefundAmount{
			Value:        amount.StringFixed(2),
			CurrencyCode: currencyCode,
		}
	}
	if reason != "" {
		refundReq.NoteToPayer = reason
	}

	body, err := json.Marshal(refundReq)
	if err != nil {
		return fail("Failed to build refund request", err)
	}

	o.logger.InfoContext(ctx, "Refunding payment", "transactionId", p.TransactionID)

	refundURL := fmt.Sprintf(o.cfg.RefundURLTemplate, p.TransactionID)

	status, respBody, err := o.client.PostJSON(ctx, refundURL, body)
	if err != nil {
		return fail(requestErrorMessage(err), wrapRequestError(err))
	}
	if len(respBody) == 0 {
		return fail("Empty response from provider", ErrProvider)
	}

	var refundResp paypal.RefundResponse
	if err := json.Unmarshal(respBody, &refundResp); err != nil || refundResp.ID == "" {
		return fail("Invalid response from provider", errors.Wrap(ErrProvider, "refund response has no id"))
	}

	if !strings.EqualFold(refundResp.Status, "COMPLETED") && !strings.EqualFold(refundResp.Status, "PENDING") {
		// The refund did not take effect; the payment stays COMPLETED.
		return fail(fmt.Sprintf("Provider refund failed with status: %s (http %d)", refundResp.Status, status), ErrProvider)
	}

	merged, err := json.Marshal(map[string]string{
		"originalPayment": p.Details,
		"refundResponse":  string(respBody),
	})
	if err != nil {
		merged = respBody
	}

	p.Status = model.StatusRefunded
	p.Details = string(merged)

	if err := o.payments.Update(ctx, p); err != nil {
		o.logger.ErrorContext(ctx, "Refund settled at provider but local update failed",
			"paymentId", p.ID, "refundId", refundResp.ID, "error", err)
		captureDivergenceCounter.Inc()
		return RefundResult{Success: false, ErrorMessage: "Refund settled at provider but local update failed"}
	}

	o.publish(ctx, event.TypePaymentRefunded, p)

	o.logger.InfoContext(ctx, "Refunded payment", "refundId", refundResp.ID, "status", refundResp.Status)
	refundSuccessCounter.Inc()

	return RefundResult{
		Success:  true,
		RefundID: refundResp.ID,
		Status:   refundResp.Status,
	}
}

func (o *Orchestrator) publish(ctx context.Context, eventType string, p *model.Payment) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, eventType, p); err != nil {
		o.logger.WarnContext(ctx, "Failed to publish settlement event", "event", eventType, "error", err)
	}
}

func approvalLink(links []paypal.Link) string {
	for _, link := range links {
		if strings.EqualFold(link.Rel, "approve") {
			return link.Href
		}
	}
	return ""
}

func requestErrorMessage(err error) string {
	if errors.Is(err, paypal.ErrTransport) {
		return "Provider request failed"
	}
	return "Failed to obtain provider access token"
}

func wrapRequestError(err error) error {
	if errors.Is(err, paypal.ErrTransport) {
		return err
	}
	return errors.Wrap(ErrCredentialUnavailable, err.Error())
}
