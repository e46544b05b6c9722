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

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	query := `SELECT id, name, description, price::text, state, customer_id, COALESCE(contractor_id, '')
	          FROM job WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)

	var (
		job   model.Job
		price *string
	)
	err := row.Scan(&job.ID, &job.Name, &job.Description, &price, &job.State,
		&job.CustomerID, &job.ContractorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if price != nil {
		parsed, err := decimal.NewFromString(*price)
		if err != nil {
			return nil, err
		}
		job.Price = &parsed
	}
	return &job, nil
}
