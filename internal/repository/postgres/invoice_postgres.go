package postgres

import (
	"context"
	"database/sql"

	"docsvc/internal/model"
	"docsvc/internal/repository"
)

// InvoicePostgres is a read-only PostgreSQL implementation of
// repository.InvoiceRepository.
type InvoicePostgres struct {
	db *sql.DB
}

// NewInvoicePostgres creates a new InvoicePostgres repository.
func NewInvoicePostgres(db *sql.DB) *InvoicePostgres {
	return &InvoicePostgres{db: db}
}

var _ repository.InvoiceRepository = (*InvoicePostgres)(nil)

// FindByID fetches a single invoice by id.
func (r *InvoicePostgres) FindByID(ctx context.Context, id int64) (*model.Invoice, error) {
	const q = `SELECT id, invoice_number, created_at FROM invoices WHERE id = $1`
	row := r.db.QueryRowContext(ctx, q, id)
	var inv model.Invoice
	if err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.CreatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}
