package repository

import (
	"context"
	"log"
	"testing"
	"time"

	"payment-service/internal/db"
	"payment-service/internal/model"
	"payment-service/tests/testhelpers"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositoryTestSuite struct {
	suite.Suite
	pgContainer *testhelpers.PostgresContainer
	pool        *pgxpool.Pool
	payments    *db.PaymentRepository
	jobs        *db.JobRepository
	payees      *db.PayeeRepository
	ctx         context.Context
}

func (s *RepositoryTestSuite) SetupSuite() {
	time.Local = time.UTC

	s.ctx = context.Background()
	pgContainer, err := testhelpers.CreatePostgresContainer(s.ctx)
	if err != nil {
		log.Fatal(err)
	}
	s.pgContainer = pgContainer

	db.RunMigrations(pgContainer.ConnectionString, "../../../migrations")

	pool, err := db.GetPool(pgContainer.ConnectionString)
	if err != nil {
		log.Fatal(err)
	}

	s.pool = pool
	s.payments = db.NewPaymentRepository(pool)
	s.jobs = db.NewJobRepository(pool)
	s.payees = db.NewPayeeRepository(pool)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	s.pool.Close()

	if err := s.pgContainer.Terminate(s.ctx); err != nil {
		log.Fatalf("error terminating postgres container: %s", err)
	}
}

func (s *RepositoryTestSuite) SetupTest() {
	for _, table := range []string{"payment", "payee_info", "job"} {
		if _, err := s.pool.Exec(s.ctx, "DELETE FROM "+table); err != nil {
			log.Fatalf("error truncating %s table: %s", table, err)
		}
	}
}

func (s *RepositoryTestSuite) seedJob(price string) uuid.UUID {
	id := uuid.New()
	_, err := s.pool.Exec(s.ctx,
		`INSERT INTO job (id, name, description, price, state, customer_id, contractor_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, "Fix the roof", "Replace broken tiles", price, model.JobStateReadyForReviewAndPay,
		"customer-1", "contractor-1")
	require.NoError(s.T(), err)
	return id
}

func (s *RepositoryTestSuite) newPayment(jobID uuid.UUID, amount string) *model.Payment {
	return &model.Payment{
		ID:           uuid.New(),
		JobID:        jobID,
		CustomerID:   "customer-1",
		ContractorID: "contractor-1",
		Amount:       decimal.RequireFromString(amount),
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *RepositoryTestSuite) TestCreateAndGetByID() {
	t := s.T()

	jobID := s.seedJob("50.00")
	p := s.newPayment(jobID, "50.00")

	err := s.payments.Create(s.ctx, p)
	require.NoError(t, err)

	stored, err := s.payments.GetByID(s.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
	assert.Equal(t, jobID, stored.JobID)
	assert.Equal(t, "customer-1", stored.CustomerID)
	assert.Equal(t, "contractor-1", stored.ContractorID)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("50.00")), stored.Amount.String())
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Nil(t, stored.PaidAt)
	assert.Empty(t, stored.TransactionID)
	assert.Empty(t, stored.ProviderOrderID)
}

func (s *RepositoryTestSuite) TestGetByIDNotFound() {
	t := s.T()

	_, err := s.payments.GetByID(s.ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func (s *RepositoryTestSuite) TestUpdate() {
	t := s.T()

	jobID := s.seedJob("50.00")
	p := s.newPayment(jobID, "50.00")
	require.NoError(t, s.payments.Create(s.ctx, p))

	paidAt := time.Now().UTC().Truncate(time.Microsecond)
	p.Status = model.StatusCompleted
	p.PaidAt = &paidAt
	p.TransactionID = "T1"
	p.Provider = "PayPal"
	p.ProviderOrderID = "O1"
	p.Details = `{"id":"T1","status":"COMPLETED"}`

	require.NoError(t, s.payments.Update(s.ctx, p))

	stored, err := s.payments.GetByID(s.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	require.NotNil(t, stored.PaidAt)
	assert.WithinDuration(t, paidAt, *stored.PaidAt, time.Second)
	assert.Equal(t, "T1", stored.TransactionID)
	assert.Equal(t, "PayPal", stored.Provider)
	assert.Equal(t, "O1", stored.ProviderOrderID)
	assert.Equal(t, p.Details, stored.Details)
}

func (s *RepositoryTestSuite) TestUpdateUnknownPayment() {
	t := s.T()

	jobID := s.seedJob("50.00")
	p := s.newPayment(jobID, "50.00")

	err := s.payments.Update(s.ctx, p)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func (s *RepositoryTestSuite) TestGetActiveByJobID() {
	t := s.T()

	jobID := s.seedJob("50.00")

	failed := s.newPayment(jobID, "50.00")
	failed.Status = model.StatusFailed
	failed.CreatedAt = failed.CreatedAt.Add(-time.Hour)
	require.NoError(t, s.payments.Create(s.ctx, failed))

	_, err := s.payments.GetActiveByJobID(s.ctx, jobID)
	assert.ErrorIs(t, err, model.ErrNotFound, "failed payments are not active")

	active := s.newPayment(jobID, "50.00")
	require.NoError(t, s.payments.Create(s.ctx, active))

	stored, err := s.payments.GetActiveByJobID(s.ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, stored.ID)
}

func (s *RepositoryTestSuite) TestGetByProviderOrderID() {
	t := s.T()

	jobID := s.seedJob("50.00")
	p := s.newPayment(jobID, "50.00")
	require.NoError(t, s.payments.Create(s.ctx, p))

	p.Status = model.StatusProcessing
	p.Provider = "PayPal"
	p.ProviderOrderID = "O1"
	require.NoError(t, s.payments.Update(s.ctx, p))

	stored, err := s.payments.GetByProviderOrderID(s.ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)

	_, err = s.payments.GetByProviderOrderID(s.ctx, "O-unknown")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func (s *RepositoryTestSuite) TestListByCustomerOrdersNewestFirst() {
	t := s.T()

	jobID := s.seedJob("50.00")

	older := s.newPayment(jobID, "10.00")
	older.Status = model.StatusFailed
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	require.NoError(t, s.payments.Create(s.ctx, older))

	newer := s.newPayment(jobID, "50.00")
	require.NoError(t, s.payments.Create(s.ctx, newer))

	payments, err := s.payments.ListByCustomer(s.ctx, "customer-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, newer.ID, payments[0].ID)
	assert.Equal(t, older.ID, payments[1].ID)

	payments, err = s.payments.ListByContractor(s.ctx, "contractor-1")
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	payments, err = s.payments.ListByCustomer(s.ctx, "customer-2")
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func (s *RepositoryTestSuite) TestJobGetByID() {
	t := s.T()

	jobID := s.seedJob("50.00")

	job, err := s.jobs.GetByID(s.ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, "Fix the roof", job.Name)
	assert.Equal(t, model.JobStateReadyForReviewAndPay, job.State)
	require.NotNil(t, job.Price)
	assert.True(t, job.Price.Equal(decimal.RequireFromString("50.00")))

	_, err = s.jobs.GetByID(s.ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func (s *RepositoryTestSuite) TestJobWithoutPrice() {
	t := s.T()

	id := uuid.New()
	_, err := s.pool.Exec(s.ctx,
		`INSERT INTO job (id, name, state, customer_id) VALUES ($1, $2, $3, $4)`,
		id, "Unpriced job", "OPEN", "customer-1")
	require.NoError(t, err)

	job, err := s.jobs.GetByID(s.ctx, id)
	require.NoError(t, err)
	assert.Nil(t, job.Price)
	assert.Empty(t, job.ContractorID)
}

func (s *RepositoryTestSuite) TestPayeeUpsertAndGet() {
	t := s.T()

	info := &model.PayeeInfo{
		ContractorID:  "contractor-1",
		PayPalEmail:   "contractor@example.com",
		DefaultMethod: "PayPal",
	}
	require.NoError(t, s.payees.Upsert(s.ctx, info))

	stored, err := s.payees.GetByContractorID(s.ctx, "contractor-1")
	require.NoError(t, err)
	assert.Equal(t, "contractor@example.com", stored.PayPalEmail)
	assert.Nil(t, stored.UpdatedAt)

	info.PayPalEmail = "new@example.com"
	require.NoError(t, s.payees.Upsert(s.ctx, info))

	stored, err = s.payees.GetByContractorID(s.ctx, "contractor-1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.PayPalEmail)
	assert.NotNil(t, stored.UpdatedAt)

	_, err = s.payees.GetByContractorID(s.ctx, "contractor-2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
