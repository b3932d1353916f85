package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"invoice-system/internal/entities"
	"invoice-system/pkg/database/postgresql"
	apperrors "invoice-system/pkg/errors"
)

// Runs against a real database when TEST_DATABASE_URL is set.
type StoreSuite struct {
	suite.Suite
	pool     *pgxpool.Pool
	invoices InvoiceRepositoryInterface
	logs     StatusLogRepositoryInterface
	audit    AuditRepositoryInterface
	tx       TxManagerInterface
	userID   uuid.UUID
}

func TestStoreSuite(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, &StoreSuite{})
}

func (s *StoreSuite) SetupSuite() {
	ctx := context.Background()
	pool, err := postgresql.ConnectDB(ctx, os.Getenv("TEST_DATABASE_URL"), zap.NewNop())
	s.Require().NoError(err)
	s.Require().NoError(postgresql.Migrate(ctx, pool))

	s.pool = pool
	s.invoices = NewInvoiceRepository(pool)
	s.logs = NewStatusLogRepository(pool)
	s.audit = NewAuditRepository(pool)
	s.tx = NewTxManager(pool)
}

func (s *StoreSuite) TearDownSuite() {
	s.pool.Close()
}

func (s *StoreSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `ALTER TABLE invoice_status_log DISABLE TRIGGER trg_invoice_status_log_append_only`)
	s.Require().NoError(err)
	_, err = s.pool.Exec(ctx, `TRUNCATE TABLE invoice_status_log, invoices, customers, users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
	_, err = s.pool.Exec(ctx, `ALTER TABLE invoice_status_log ENABLE TRIGGER trg_invoice_status_log_append_only`)
	s.Require().NoError(err)

	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password) VALUES ('Test User', 'user@example.com', 'x') RETURNING id`,
	).Scan(&s.userID)
	s.Require().NoError(err)
}

func (s *StoreSuite) newInvoice(status entities.InvoiceStatus) *entities.Invoice {
	inv, err := s.invoices.Create(context.Background(), entities.Invoice{
		CustomerID: uuid.New(),
		Amount:     1500,
		Status:     status,
		Date:       time.Now().UTC(),
	})
	s.Require().NoError(err)
	return inv
}

func (s *StoreSuite) TestCreateAndFind() {
	inv := s.newInvoice(entities.InvoiceStatusPending)

	found, err := s.invoices.FindByID(context.Background(), inv.ID)
	s.Require().NoError(err)
	s.Equal(entities.InvoiceStatusPending, found.Status)
	s.EqualValues(1, found.Version)

	_, err = s.invoices.FindByID(context.Background(), uuid.New())
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreSuite) TestUpdateStatusBumpsVersion() {
	ctx := context.Background()
	inv := s.newInvoice(entities.InvoiceStatusPending)

	updated, err := s.invoices.UpdateStatus(ctx, nil, inv.ID, entities.InvoiceStatusPaid, nil)
	s.Require().NoError(err)
	s.Equal(entities.InvoiceStatusPaid, updated.Status)
	s.Equal(inv.Version+1, updated.Version)

	stale := inv.Version
	_, err = s.invoices.UpdateStatus(ctx, nil, inv.ID, entities.InvoiceStatusCanceled, &stale)
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.invoices.UpdateStatus(ctx, nil, uuid.New(), entities.InvoiceStatusPaid, &stale)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreSuite) TestAppendListInInsertionOrder() {
	ctx := context.Background()
	inv := s.newInvoice(entities.InvoiceStatusPending)
	today := time.Now().UTC()

	for _, st := range []entities.InvoiceStatus{entities.InvoiceStatusPaid, entities.InvoiceStatusPending} {
		entry := &entities.StatusLogEntry{
			InvoiceID: inv.ID,
			UserID:    uuid.NullUUID{UUID: s.userID, Valid: true},
			Date:      today,
			Status:    st,
			Action:    entities.StatusActionChange,
		}
		s.Require().NoError(s.logs.Append(ctx, nil, entry))
		s.NotZero(entry.ID)
	}
	s.Require().NoError(s.logs.Append(ctx, nil, &entities.StatusLogEntry{
		InvoiceID: inv.ID, Date: today, Status: entities.InvoiceStatusPaid, Action: entities.StatusActionRestore,
	}))

	items, err := s.logs.ListByInvoice(ctx, inv.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.Equal(entities.InvoiceStatusPaid, items[0].Status)
	s.Equal("Test User", items[0].UserName.String)
	s.Equal(entities.StatusActionRestore, items[2].Action)
	s.False(items[2].UserID.Valid)
	s.False(items[2].UserName.Valid)
	s.Less(items[0].ID, items[1].ID)
}

func (s *StoreSuite) TestLogIsAppendOnly() {
	ctx := context.Background()
	inv := s.newInvoice(entities.InvoiceStatusPending)
	s.Require().NoError(s.logs.Append(ctx, nil, &entities.StatusLogEntry{
		InvoiceID: inv.ID, Date: time.Now().UTC(), Status: entities.InvoiceStatusPaid, Action: entities.StatusActionChange,
	}))

	_, err := s.pool.Exec(ctx, `UPDATE invoice_status_log SET status = 'canceled'`)
	s.Error(err)
	_, err = s.pool.Exec(ctx, `DELETE FROM invoice_status_log`)
	s.Error(err)
}

func (s *StoreSuite) TestTransactionRollsBackBothWrites() {
	ctx := context.Background()
	inv := s.newInvoice(entities.InvoiceStatusPending)

	err := s.tx.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.invoices.UpdateStatus(ctx, tx, inv.ID, entities.InvoiceStatusPaid, nil); err != nil {
			return err
		}
		// invalid action violates the CHECK constraint
		return s.logs.Append(ctx, tx, &entities.StatusLogEntry{
			InvoiceID: inv.ID, Date: time.Now().UTC(), Status: entities.InvoiceStatusPaid, Action: "bogus",
		})
	})
	s.Error(err)

	found, err := s.invoices.FindByID(ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(entities.InvoiceStatusPending, found.Status)
}

func (s *StoreSuite) TestFindMismatches() {
	ctx := context.Background()
	consistent := s.newInvoice(entities.InvoiceStatusPending)
	drifted := s.newInvoice(entities.InvoiceStatusPending)

	for _, inv := range []*entities.Invoice{consistent, drifted} {
		_, err := s.invoices.UpdateStatus(ctx, nil, inv.ID, entities.InvoiceStatusPaid, nil)
		s.Require().NoError(err)
		s.Require().NoError(s.logs.Append(ctx, nil, &entities.StatusLogEntry{
			InvoiceID: inv.ID, Date: time.Now().UTC(), Status: entities.InvoiceStatusPaid, Action: entities.StatusActionChange,
		}))
	}
	// status moved without a log entry
	_, err := s.invoices.UpdateStatus(ctx, nil, drifted.ID, entities.InvoiceStatusCanceled, nil)
	s.Require().NoError(err)

	items, err := s.audit.FindMismatches(ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(drifted.ID, items[0].InvoiceID)
	s.Equal(entities.InvoiceStatusCanceled, items[0].InvoiceStatus)
	s.Equal(entities.InvoiceStatusPaid, items[0].LoggedStatus)
}
