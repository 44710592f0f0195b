package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// invoices must exist before documents because of the foreign key.
var steps = []migrationStep{
	{
		Name: "create_table_invoices",
		SQL: `CREATE TABLE IF NOT EXISTS invoices (
  id             BIGSERIAL   PRIMARY KEY,
  invoice_number TEXT        NOT NULL,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                BIGSERIAL   PRIMARY KEY,
  invoice_id        BIGINT      REFERENCES invoices (id),
  filename          TEXT        NOT NULL,
  original_filename TEXT        NOT NULL,
  file_size         BIGINT      NOT NULL CHECK (file_size >= 0),
  mime_type         TEXT        NOT NULL,
  document_type     TEXT        NOT NULL DEFAULT 'invoice',
  status            TEXT        NOT NULL DEFAULT 'uploaded',
  uploaded_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  validated_at      TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_audit_logs",
		SQL: `CREATE TABLE IF NOT EXISTS audit_logs (
  id          BIGSERIAL   PRIMARY KEY,
  entity_type TEXT        NOT NULL,
  entity_id   BIGINT      NOT NULL,
  action      TEXT        NOT NULL,
  details     JSONB,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_invoice_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_invoice_id ON documents (invoice_id);`,
	},
	{
		Name: "create_index_documents_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents (uploaded_at);`,
	},
	{
		Name: "create_index_audit_logs_entity",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations
// if it doesn't. Safe to call on every startup.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	start := time.Now()

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("migration sentinel check failed", "error", err)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("migration step failed",
				"migration_step", step.Name,
				"error", err)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("migration step applied",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds())
	}

	log.Info("migration complete", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
