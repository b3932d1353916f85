package main

import (
	"context"
	"flag"
	"log"

	"invoice-system/pkg/config"
	"invoice-system/pkg/database/postgresql"
	applogger "invoice-system/pkg/logger"
	"invoice-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 Invoice database seeder")
	log.Println("======================================================")

	runMigrate := flag.Bool("migrate", false, "Apply the embedded migrations")
	runUsers := flag.Bool("users", false, "Create dashboard users")
	runInvoices := flag.Bool("invoices", false, "Create customers and invoices")
	runAll := flag.Bool("all", false, "Same as -migrate -users -invoices")

	flag.Parse()

	if !*runMigrate && !*runUsers && !*runInvoices && !*runAll {
		log.Println("❌ No step selected.")
		log.Println("")
		log.Println("Flags:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Examples:")
		log.Println("  go run ./seeders/cmd/seed -migrate")
		log.Println("  go run ./seeders/cmd/seed -users -invoices")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	ctx := context.Background()
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer logger.Sync()

	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		log.Fatalf("❌ could not connect: %v", err)
	}
	defer dbPool.Close()

	if *runAll || *runMigrate {
		if err := postgresql.Migrate(ctx, dbPool); err != nil {
			log.Fatalf("❌ migrations failed: %v", err)
		}
		log.Println("✅ Migrations applied.")
	}

	if *runAll || *runUsers {
		if err := seeders.SeedUsers(ctx, dbPool); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	if *runAll || *runInvoices {
		if err := seeders.SeedInvoices(ctx, dbPool, cfg, logger); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	log.Println("✅ Done.")
	log.Println("======================================================")
}
