package repository

import (
	"context"

	"docsvc/internal/model"
)

// InvoiceRepository reads invoices owned by the procurement system.
// This service never writes to the invoices table.
type InvoiceRepository interface {
	// FindByID returns an invoice by id, or sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id int64) (*model.Invoice, error)
}
