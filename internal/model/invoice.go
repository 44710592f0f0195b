package model

import "time"

// Invoice is owned by the procurement system; this service only reads it to
// attach documents and resolve invoice numbers.
type Invoice struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	CreatedAt     time.Time `json:"created_at"`
}
