package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the pipeline tables. Monetary columns are integer
// cents; dollar conversion happens at the repository boundary.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS claims (
	tracking_number TEXT PRIMARY KEY,
	claim_date TIMESTAMPTZ,
	property_address TEXT NOT NULL DEFAULT '',
	lease_start_date TIMESTAMPTZ,
	lease_end_date TIMESTAMPTZ,
	move_out_date TIMESTAMPTZ,
	monthly_rent_cents BIGINT,
	property_management_company TEXT NOT NULL DEFAULT '',
	group_number TEXT NOT NULL DEFAULT '',
	treaty_number TEXT NOT NULL DEFAULT '',
	policy TEXT NOT NULL DEFAULT '',
	max_benefit_cents BIGINT,
	status TEXT NOT NULL DEFAULT '',
	approved_benefit_cents BIGINT,
	documents JSONB NOT NULL DEFAULT '[]'::jsonb,
	analysis_files JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS claim_results (
	tracking_number TEXT PRIMARY KEY,
	tenant_name TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	max_benefit_cents BIGINT NOT NULL DEFAULT 0,
	monthly_rent_cents BIGINT NOT NULL DEFAULT 0,
	is_first_month_rent_paid BOOLEAN NOT NULL DEFAULT FALSE,
	first_month_rent_paid_evidence TEXT NOT NULL DEFAULT '',
	is_first_month_premium_paid BOOLEAN NOT NULL DEFAULT FALSE,
	first_month_premium_paid_evidence TEXT NOT NULL DEFAULT '',
	missing_required_documents JSONB NOT NULL DEFAULT '[]'::jsonb,
	submitted_documents JSONB NOT NULL DEFAULT '[]'::jsonb,
	approved_charges JSONB NOT NULL DEFAULT '[]'::jsonb,
	approved_charges_total_cents BIGINT NOT NULL DEFAULT 0,
	excluded_charges JSONB NOT NULL DEFAULT '[]'::jsonb,
	final_payout_cents BIGINT NOT NULL DEFAULT 0,
	decision_summary TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pipeline_jobs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	csv_content TEXT NOT NULL,
	batch_size INT NOT NULL DEFAULT 0,
	row_limit INT NOT NULL DEFAULT 0,
	claims_processed INT NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);
CREATE INDEX IF NOT EXISTS idx_claim_results_status ON claim_results(status);
CREATE INDEX IF NOT EXISTS idx_pipeline_jobs_created_at ON pipeline_jobs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
