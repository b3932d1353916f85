package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"invoice-system/internal/dto"
	"invoice-system/internal/entities"
	"invoice-system/internal/repositories"
	"invoice-system/internal/services"
	"invoice-system/pkg/config"
	"invoice-system/pkg/validation"
)

// SeedUsers creates the dashboard users. Existing emails are skipped.
func SeedUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("▶️  Seeding users...")
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		tag, err := db.Exec(ctx,
			`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) ON CONFLICT (email) DO NOTHING`,
			u.Name, u.Email, string(hash))
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.Email, err)
		}
		if tag.RowsAffected() == 0 {
			log.Printf("  - user %s already exists, skipping", u.Email)
		}
	}
	log.Println("✅ Users seeded.")
	return nil
}

// SeedInvoices creates customers and invoices. Paid invoices start pending and are moved
// to paid through the status transition service, so their history has a system entry.
// It does nothing when any invoice exists.
func SeedInvoices(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) error {
	log.Println("▶️  Seeding customers and invoices...")

	var seeded bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices)`).Scan(&seeded); err != nil {
		return fmt.Errorf("check existing invoices: %w", err)
	}
	if seeded {
		log.Println("  - invoices already exist, skipping")
		return nil
	}

	customerIDs := make(map[string]uuid.UUID, len(customers))
	for _, c := range customers {
		id, err := ensureCustomer(ctx, db, c)
		if err != nil {
			return err
		}
		customerIDs[c.Email] = id
	}

	invoiceRepo := repositories.NewInvoiceRepository(db)
	transitions := services.NewStatusTransitionService(
		repositories.NewTxManager(db),
		invoiceRepo,
		repositories.NewStatusLogRepository(db),
		validation.New(),
		cfg.Audit,
		nil,
		logger,
	)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, inv := range invoices {
		invoice := entities.Invoice{
			CustomerID: customerIDs[inv.CustomerEmail],
			Amount:     inv.Amount,
			Status:     entities.InvoiceStatusPending,
			Date:       today,
		}
		if inv.DueInDays != 0 {
			invoice.DueDate = null.TimeFrom(today.AddDate(0, 0, inv.DueInDays))
		}

		created, err := invoiceRepo.Create(ctx, invoice)
		if err != nil {
			return fmt.Errorf("insert invoice for %s: %w", inv.CustomerEmail, err)
		}

		if inv.Paid {
			err := transitions.ApplyStatusChange(ctx, dto.StatusChangeDTO{
				InvoiceID: created.ID,
				Status:    string(entities.InvoiceStatusPaid),
				Action:    string(entities.StatusActionChange),
			}, entities.SystemActor())
			if err != nil {
				return fmt.Errorf("mark invoice %s paid: %w", created.ID, err)
			}
		}
	}

	log.Printf("✅ %d customers and %d invoices seeded.", len(customers), len(invoices))
	return nil
}

func ensureCustomer(ctx context.Context, db *pgxpool.Pool, c seedCustomer) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `SELECT id FROM customers WHERE email = $1`, c.Email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("look up customer %s: %w", c.Email, err)
	}

	err = db.QueryRow(ctx,
		`INSERT INTO customers (name, email) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Email).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert customer %s: %w", c.Email, err)
	}
	return id, nil
}
