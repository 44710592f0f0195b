package repository

import (
	"context"

	"docsvc/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row
	// including database-assigned fields (id, uploaded_at).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document joined with its invoice number, if any.
	FindByID(ctx context.Context, id int64) (*model.DocumentWithInvoice, error)

	// ListRecent returns up to limit documents, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.DocumentWithInvoice, error)

	// FindByInvoiceID returns all documents attached to an invoice.
	FindByInvoiceID(ctx context.Context, invoiceID int64) ([]model.Document, error)

	// SetValidatedByInvoice bulk-transitions every document of an invoice to
	// status 'validated' and stamps validated_at.
	SetValidatedByInvoice(ctx context.Context, invoiceID int64) error

	// SetDeleted transitions a single document to status 'deleted' and
	// stamps validated_at as the finalization time. The row itself is kept.
	SetDeleted(ctx context.Context, id int64) error
}
