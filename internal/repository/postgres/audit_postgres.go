package postgres

import (
	"context"
	"database/sql"

	"docsvc/internal/model"
	"docsvc/internal/repository"
)

// AuditLogPostgres is a PostgreSQL implementation of repository.AuditLogRepository.
type AuditLogPostgres struct {
	db *sql.DB
}

// NewAuditLogPostgres creates a new AuditLogPostgres repository.
func NewAuditLogPostgres(db *sql.DB) *AuditLogPostgres {
	return &AuditLogPostgres{db: db}
}

var _ repository.AuditLogRepository = (*AuditLogPostgres)(nil)

// Create appends one audit trail entry.
func (r *AuditLogPostgres) Create(ctx context.Context, entry *model.AuditLogEntry) error {
	const q = `
		INSERT INTO audit_logs (entity_type, entity_id, action, details)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, q,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		entry.Details,
	)
	return err
}
