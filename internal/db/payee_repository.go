package db

import (
	"context"
	"errors"

	"payment-service/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PayeeRepository struct {
	pool *pgxpool.Pool
}

func NewPayeeRepository(pool *pgxpool.Pool) *PayeeRepository {
	return &PayeeRepository{pool: pool}
}

func (r *PayeeRepository) GetByContractorID(ctx context.Context, contractorID string) (*model.PayeeInfo, error) {
	query := `SELECT contractor_id, COALESCE(paypal_email, ''), default_method, created_at, updated_at
	          FROM payee_info WHERE contractor_id = $1`
	row := r.pool.QueryRow(ctx, query, contractorID)

	var info model.PayeeInfo
	err := row.Scan(&info.ContractorID, &info.PayPalEmail, &info.DefaultMethod, &info.CreatedAt, &info.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *PayeeRepository) Upsert(ctx context.Context, info *model.PayeeInfo) error {
	query := `INSERT INTO payee_info (contractor_id, paypal_email, default_method, created_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (contractor_id)
	          DO UPDATE SET paypal_email = $2, default_method = $3, updated_at = NOW()`
	_, err := r.pool.Exec(ctx, query, info.ContractorID, info.PayPalEmail, info.DefaultMethod)
	return err
}
