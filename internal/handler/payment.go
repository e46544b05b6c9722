package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"payment-service/internal/model"
	"payment-service/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	ledger       *payment.Ledger
	orchestrator *payment.Orchestrator
	logger       *slog.Logger
}

func NewPaymentHandler(ledger *payment.Ledger, orchestrator *payment.Orchestrator, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		ledger:       ledger,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments/{jobID}", h.CreatePayment)
	mux.HandleFunc("GET /payments", h.ListPayments)
	mux.HandleFunc("GET /payments/statistics", h.Statistics)
	mux.HandleFunc("GET /payments/{paymentID}", h.GetPayment)
	mux.HandleFunc("POST /payments/{paymentID}/order", h.CreateOrder)
	mux.HandleFunc("POST /orders/{orderID}/capture", h.CapturePayment)
	mux.HandleFunc("POST /payments/{paymentID}/refund", h.RefundPayment)
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := uuid.Parse(r.PathValue("jobID"))
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid job id")
		return
	}

	p, err := h.ledger.CreatePayment(ctx, jobID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error creating payment", "jobId", jobID, "error", err)
		if errors.Is(err, model.ErrNotFound) {
			h.writeMessage(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	paymentID, err := uuid.Parse(r.PathValue("paymentID"))
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	p, err := h.ledger.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			h.writeMessage(w, http.StatusNotFound, "payment not found")
			return
		}
		h.logger.ErrorContext(ctx, "Error loading payment", "paymentId", paymentID, "error", err)
		h.writeMessage(w, http.StatusInternalServerError, "failed to load payment")
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("userID")
	party := r.URL.Query().Get("party")
	if userID == "" {
		h.writeMessage(w, http.StatusBadRequest, "userID is required")
		return
	}

	var (
		payments []*model.Payment
		err      error
	)
	switch party {
	case "customer":
		payments, err = h.ledger.ListByCustomer(ctx, userID)
	case "contractor":
		payments, err = h.ledger.ListByContractor(ctx, userID)
	default:
		h.writeMessage(w, http.StatusBadRequest, "party must be customer or contractor")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "Error listing payments", "userId", userID, "error", err)
		h.writeMessage(w, http.StatusInternalServerError, "failed to list payments")
		return
	}

	h.writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("userID")
	party := r.URL.Query().Get("party")
	if userID == "" {
		h.writeMessage(w, http.StatusBadRequest, "userID is required")
		return
	}

	stats, err := h.ledger.Statistics(ctx, userID, party == "customer")
	if err != nil {
		h.logger.ErrorContext(ctx, "Error computing statistics", "userId", userID, "error", err)
		h.writeMessage(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	paymentID, err := uuid.Parse(r.PathValue("paymentID"))
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	result := h.orchestrator.CreateOrder(ctx, paymentID)
	if !result.Success {
		h.writeMessage(w, http.StatusBadRequest, result.ErrorMessage)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"orderId":     result.OrderID,
		"approvalUrl": result.ApprovalURL,
	})
}

func (h *PaymentHandler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := r.PathValue("orderID")
	if orderID == "" {
		h.writeMessage(w, http.StatusBadRequest, "order id is required")
		return
	}

	result := h.orchestrator.CapturePayment(ctx, orderID)
	if !result.Success {
		h.writeMessage(w, http.StatusBadRequest, result.ErrorMessage)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"transactionId": result.TransactionID,
		"paymentId":     result.PaymentID,
		"message":       "Payment successful",
	})
}

type refundRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

func (h *PaymentHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	paymentID, err := uuid.Parse(r.PathValue("paymentID"))
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req refundRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result := h.orchestrator.RefundPayment(ctx, paymentID, req.Amount, req.Reason)
	if !result.Success {
		h.writeMessage(w, http.StatusBadRequest, result.ErrorMessage)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"refundId": result.RefundID,
		"status":   result.Status,
	})
}

func (h *PaymentHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *PaymentHandler) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}
