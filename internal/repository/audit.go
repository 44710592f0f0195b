package repository

import (
	"context"

	"docsvc/internal/model"
)

// AuditLogRepository appends trail records. Append-only: no read, update or
// delete operations are exposed.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLogEntry) error
}
