package payment_test

import (
	"context"
	"io"
	"log/slog"

	"payment-service/internal/config"
	"payment-service/internal/model"
	"payment-service/internal/payment"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePaymentStore struct {
	payments  map[uuid.UUID]*model.Payment
	updateErr error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[uuid.UUID]*model.Payment)}
}

func (s *fakePaymentStore) Create(_ context.Context, p *model.Payment) error {
	stored := *p
	s.payments[p.ID] = &stored
	return nil
}

func (s *fakePaymentStore) Update(_ context.Context, p *model.Payment) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.payments[p.ID]; !ok {
		return model.ErrNotFound
	}
	stored := *p
	s.payments[p.ID] = &stored
	return nil
}

func (s *fakePaymentStore) GetByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *fakePaymentStore) GetActiveByJobID(_ context.Context, jobID uuid.UUID) (*model.Payment, error) {
	for _, p := range s.payments {
		if p.JobID == jobID && p.Status != model.StatusFailed {
			copied := *p
			return &copied, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *fakePaymentStore) GetByProviderOrderID(_ context.Context, orderID string) (*model.Payment, error) {
	for _, p := range s.payments {
		if orderID != "" && p.ProviderOrderID == orderID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *fakePaymentStore) ListByCustomer(_ context.Context, customerID string) ([]*model.Payment, error) {
	var result []*model.Payment
	for _, p := range s.payments {
		if p.CustomerID == customerID {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *fakePaymentStore) ListByContractor(_ context.Context, contractorID string) ([]*model.Payment, error) {
	var result []*model.Payment
	for _, p := range s.payments {
		if p.ContractorID == contractorID {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

type fakeJobStore struct {
	jobs map[uuid.UUID]*model.Job
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*model.Job)}
}

func (s *fakeJobStore) GetByID(_ context.Context, id uuid.UUID) (*model.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return job, nil
}

type fakePayeeStore struct {
	payees map[string]*model.PayeeInfo
}

func newFakePayeeStore() *fakePayeeStore {
	return &fakePayeeStore{payees: make(map[string]*model.PayeeInfo)}
}

func (s *fakePayeeStore) GetByContractorID(_ context.Context, contractorID string) (*model.PayeeInfo, error) {
	info, ok := s.payees[contractorID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return info, nil
}

type providerRequest struct {
	URL  string
	Body []byte
}

type providerResponse struct {
	status int
	body   []byte
	err    error
}

type fakeProviderClient struct {
	requests  []providerRequest
	responses []providerResponse
}

func (c *fakeProviderClient) PostJSON(_ context.Context, url string, body []byte) (int, []byte, error) {
	c.requests = append(c.requests, providerRequest{URL: url, Body: body})
	if len(c.responses) == 0 {
		return 200, []byte(`{}`), nil
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp.status, resp.body, resp.err
}

func (c *fakeProviderClient) respond(status int, body string) {
	c.responses = append(c.responses, providerResponse{status: status, body: []byte(body)})
}

type publishedEvent struct {
	eventType string
	paymentID uuid.UUID
	status    model.PaymentStatus
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, payment *model.Payment) error {
	p.events = append(p.events, publishedEvent{
		eventType: eventType,
		paymentID: payment.ID,
		status:    payment.Status,
	})
	return nil
}

type fakeHook struct {
	paidJobs []uuid.UUID
}

func (h *fakeHook) JobPaid(_ context.Context, jobID uuid.UUID) error {
	h.paidJobs = append(h.paidJobs, jobID)
	return nil
}

type fixture struct {
	payments  *fakePaymentStore
	jobs      *fakeJobStore
	payees    *fakePayeeStore
	client    *fakeProviderClient
	publisher *fakePublisher
	hook      *fakeHook

	ledger       *payment.Ledger
	orchestrator *payment.Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		payments:  newFakePaymentStore(),
		jobs:      newFakeJobStore(),
		payees:    newFakePayeeStore(),
		client:    &fakeProviderClient{},
		publisher: &fakePublisher{},
		hook:      &fakeHook{},
	}

	logger := discardLogger()
	cfg := config.PayPal{
		OrdersURL:          "http://provider.test/v2/checkout/orders",
		CaptureURLTemplate: "http://provider.test/v2/checkout/orders/%s/capture",
		RefundURLTemplate:  "http://provider.test/v2/payments/captures/%s/refund",
	}
	app := config.Application{BaseURL: "http://localhost:3000"}

	f.ledger = payment.NewLedger(f.payments, f.jobs, logger)
	f.orchestrator = payment.NewOrchestrator(
		f.payments, f.jobs, f.payees, f.client, f.publisher, f.hook, cfg, app, logger)

	return f
}
