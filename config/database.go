package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			date DATE NOT NULL,
			merchant_raw VARCHAR(255) NOT NULL,
			merchant_normalized VARCHAR(255) NOT NULL,
			amount_minor BIGINT NOT NULL,
			category VARCHAR(50) NOT NULL DEFAULT 'OTHER',
			alternate_category VARCHAR(50),
			current_installment INTEGER,
			total_installments INTEGER,
			origin VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL,
			related_transaction_id UUID,
			original_free_text TEXT,
			note TEXT,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW(),
			CHECK (origin IN ('manual', 'imported')),
			CHECK (status IN ('provisional', 'confirmed')),
			CHECK ((current_installment IS NULL) = (total_installments IS NULL))
		)`,

		`CREATE TABLE IF NOT EXISTS recurring_charges (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			label VARCHAR(255) NOT NULL,
			category VARCHAR(50),
			monthly_avg_minor BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS planned_purchases (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			label VARCHAR(255) NOT NULL,
			total_amount_minor BIGINT NOT NULL,
			periods INTEGER NOT NULL CHECK (periods >= 1),
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS label_mappings (
			normalized_label VARCHAR(255) PRIMARY KEY,
			category VARCHAR(50) NOT NULL,
			source VARCHAR(20) DEFAULT 'USER',
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS reconciliation_runs (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			month VARCHAR(7) NOT NULL,
			total_manual INTEGER NOT NULL,
			total_imported INTEGER NOT NULL,
			auto_matches INTEGER NOT NULL,
			suggested_matches INTEGER NOT NULL,
			unmatched INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_status_origin ON transactions(status, origin)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_installments ON transactions(total_installments) WHERE total_installments IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_reconciliation_runs_month ON reconciliation_runs(month)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
