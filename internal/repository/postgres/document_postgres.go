package postgres

import (
	"context"
	"database/sql"

	"docsvc/internal/model"
	"docsvc/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, invoice_id, filename, original_filename, file_size, mime_type, document_type, status, uploaded_at, validated_at`

func scanDocument(row interface{ Scan(...any) error }, d *model.Document) error {
	return row.Scan(
		&d.ID,
		&d.InvoiceID,
		&d.Filename,
		&d.OriginalFilename,
		&d.FileSize,
		&d.MimeType,
		&d.DocumentType,
		&d.Status,
		&d.UploadedAt,
		&d.ValidatedAt,
	)
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (invoice_id, filename, original_filename, file_size, mime_type, document_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.InvoiceID,
		doc.Filename,
		doc.OriginalFilename,
		doc.FileSize,
		doc.MimeType,
		doc.DocumentType,
		doc.Status,
	)
	var out model.Document
	if err := scanDocument(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by id, joined with its invoice number.
func (r *DocumentPostgres) FindByID(ctx context.Context, id int64) (*model.DocumentWithInvoice, error) {
	const q = `
		SELECT d.id, d.invoice_id, d.filename, d.original_filename, d.file_size, d.mime_type,
		       d.document_type, d.status, d.uploaded_at, d.validated_at, i.invoice_number
		FROM documents d
		LEFT JOIN invoices i ON d.invoice_id = i.id
		WHERE d.id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.DocumentWithInvoice
	if err := row.Scan(
		&d.ID,
		&d.InvoiceID,
		&d.Filename,
		&d.OriginalFilename,
		&d.FileSize,
		&d.MimeType,
		&d.DocumentType,
		&d.Status,
		&d.UploadedAt,
		&d.ValidatedAt,
		&d.InvoiceNumber,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListRecent returns the newest documents first, joined with invoice numbers.
func (r *DocumentPostgres) ListRecent(ctx context.Context, limit int) ([]model.DocumentWithInvoice, error) {
	const q = `
		SELECT d.id, d.invoice_id, d.filename, d.original_filename, d.file_size, d.mime_type,
		       d.document_type, d.status, d.uploaded_at, d.validated_at, i.invoice_number
		FROM documents d
		LEFT JOIN invoices i ON d.invoice_id = i.id
		ORDER BY d.uploaded_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentWithInvoice, 0)
	for rows.Next() {
		var d model.DocumentWithInvoice
		if err := rows.Scan(
			&d.ID,
			&d.InvoiceID,
			&d.Filename,
			&d.OriginalFilename,
			&d.FileSize,
			&d.MimeType,
			&d.DocumentType,
			&d.Status,
			&d.UploadedAt,
			&d.ValidatedAt,
			&d.InvoiceNumber,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByInvoiceID returns all documents attached to an invoice.
func (r *DocumentPostgres) FindByInvoiceID(ctx context.Context, invoiceID int64) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE invoice_id = $1
	`
	rows, err := r.db.QueryContext(ctx, q, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetValidatedByInvoice bulk-updates every document of an invoice.
func (r *DocumentPostgres) SetValidatedByInvoice(ctx context.Context, invoiceID int64) error {
	const q = `UPDATE documents SET status = 'validated', validated_at = now() WHERE invoice_id = $1`
	_, err := r.db.ExecContext(ctx, q, invoiceID)
	return err
}

// SetDeleted marks a single document deleted and stamps validated_at as
// the finalization time; the row is retained.
func (r *DocumentPostgres) SetDeleted(ctx context.Context, id int64) error {
	const q = `UPDATE documents SET status = 'deleted', validated_at = now() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
