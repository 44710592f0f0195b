package model

import "time"

// Document lifecycle statuses. A document is never hard-deleted; the row
// stays and only Status moves forward.
const (
	StatusUploaded  = "uploaded"
	StatusValidated = "validated"
	StatusDeleted   = "deleted"
)

// Document represents an uploaded file's metadata.
// Pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID               int64      `json:"id"`
	InvoiceID        *int64     `json:"invoice_id"`
	Filename         string     `json:"filename"`
	OriginalFilename string     `json:"original_filename"`
	FileSize         int64      `json:"file_size"`
	MimeType         string     `json:"mime_type"`
	DocumentType     string     `json:"document_type"`
	Status           string     `json:"status"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	ValidatedAt      *time.Time `json:"validated_at"`
}

// DocumentWithInvoice is a Document joined with the number of the invoice
// it belongs to, if any.
type DocumentWithInvoice struct {
	Document
	InvoiceNumber *string `json:"invoice_number"`
}
