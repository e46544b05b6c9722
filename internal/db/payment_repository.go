package db

import (
	"context"
	"errors"

	"payment-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, job_id, customer_id, contractor_id, amount::text, status, created_at, paid_at,
	COALESCE(transaction_id, ''), COALESCE(provider, ''), COALESCE(provider_order_id, ''), COALESCE(details, '')`

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `INSERT INTO payment (id, job_id, customer_id, contractor_id, amount, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.JobID, p.CustomerID, p.ContractorID, p.Amount.String(), p.Status, p.CreatedAt)
	return err
}

func (r *PaymentRepository) Update(ctx context.Context, p *model.Payment) error {
	query := `UPDATE payment
	          SET status = $2, paid_at = $3, transaction_id = NULLIF($4, ''), provider = NULLIF($5, ''),
	              provider_order_id = NULLIF($6, ''), details = NULLIF($7, '')
	          WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Status, p.PaidAt, p.TransactionID, p.Provider, p.ProviderOrderID, p.Details)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PaymentRepository) GetActiveByJobID(ctx context.Context, jobID uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment
	          WHERE job_id = $1 AND status <> $2
	          ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, jobID, model.StatusFailed))
}

func (r *PaymentRepository) GetByProviderOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment WHERE provider_order_id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, orderID))
}

func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID string) ([]*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, customerID)
}

func (r *PaymentRepository) ListByContractor(ctx context.Context, contractorID string) ([]*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment WHERE contractor_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, contractorID)
}

func (r *PaymentRepository) list(ctx context.Context, query string, arg any) ([]*model.Payment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PaymentRepository) scanOne(row pgx.Row) (*model.Payment, error) {
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var (
		p      model.Payment
		amount string
	)
	err := row.Scan(&p.ID, &p.JobID, &p.CustomerID, &p.ContractorID, &amount, &p.Status,
		&p.CreatedAt, &p.PaidAt, &p.TransactionID, &p.Provider, &p.ProviderOrderID, &p.Details)
	if err != nil {
		return nil, err
	}

	p.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
