package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"docsvc/internal/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var documentCols = []string{
	"id", "invoice_id", "filename", "original_filename", "file_size",
	"mime_type", "document_type", "status", "uploaded_at", "validated_at",
}

var joinedCols = append(append([]string{}, documentCols...), "invoice_number")

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	invoiceID := int64(7)
	doc := &model.Document{
		InvoiceID:        &invoiceID,
		Filename:         "a1b2c3d4e5f6.pdf",
		OriginalFilename: "invoice.pdf",
		FileSize:         2000000,
		MimeType:         "application/pdf",
		DocumentType:     "invoice",
		Status:           model.StatusUploaded,
	}

	rows := sqlmock.NewRows(documentCols).
		AddRow(int64(1), invoiceID, doc.Filename, doc.OriginalFilename, doc.FileSize,
			doc.MimeType, doc.DocumentType, doc.Status, now, nil)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.InvoiceID, doc.Filename, doc.OriginalFilename, doc.FileSize,
			doc.MimeType, doc.DocumentType, doc.Status).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(1), result.ID)
	assert.Equal(t, model.StatusUploaded, result.Status)
	assert.Equal(t, int64(2000000), result.FileSize)
	assert.Nil(t, result.ValidatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found with invoice number", func(t *testing.T) {
		invNum := "INV-2026-0007"
		rows := sqlmock.NewRows(joinedCols).
			AddRow(int64(1), int64(7), "a1b2.pdf", "invoice.pdf", int64(100),
				"application/pdf", "invoice", model.StatusUploaded, now, nil, invNum)
		mock.ExpectQuery("FROM documents d").
			WithArgs(int64(1)).
			WillReturnRows(rows)

		d, err := repo.FindByID(ctx, 1)
		assert.NoError(t, err)
		require.NotNil(t, d)
		require.NotNil(t, d.InvoiceNumber)
		assert.Equal(t, invNum, *d.InvoiceNumber)
	})

	t.Run("found without invoice", func(t *testing.T) {
		rows := sqlmock.NewRows(joinedCols).
			AddRow(int64(2), nil, "c3d4.bin", "blob", int64(5),
				"application/octet-stream", "other", model.StatusUploaded, now, nil, nil)
		mock.ExpectQuery("FROM documents d").
			WithArgs(int64(2)).
			WillReturnRows(rows)

		d, err := repo.FindByID(ctx, 2)
		assert.NoError(t, err)
		require.NotNil(t, d)
		assert.Nil(t, d.InvoiceID)
		assert.Nil(t, d.InvoiceNumber)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("FROM documents d").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		d, err := repo.FindByID(ctx, 99)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, d)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_ListRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := sqlmock.NewRows(joinedCols).
		AddRow(int64(2), nil, "b.pdf", "b.pdf", int64(2), "application/pdf",
			"invoice", model.StatusUploaded, now, nil, nil).
		AddRow(int64(1), nil, "a.pdf", "a.pdf", int64(1), "application/pdf",
			"invoice", model.StatusUploaded, now.Add(-time.Minute), nil, nil)

	mock.ExpectQuery("FROM documents d").
		WithArgs(100).
		WillReturnRows(rows)

	items, err := repo.ListRecent(ctx, 100)
	assert.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByInvoiceID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	invoiceID := int64(7)

	t.Run("returns documents", func(t *testing.T) {
		rows := sqlmock.NewRows(documentCols).
			AddRow(int64(1), invoiceID, "a.pdf", "a.pdf", int64(100), "application/pdf",
				"invoice", model.StatusUploaded, now, nil)
		mock.ExpectQuery("WHERE invoice_id").
			WithArgs(invoiceID).
			WillReturnRows(rows)

		items, err := repo.FindByInvoiceID(ctx, invoiceID)
		assert.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		mock.ExpectQuery("WHERE invoice_id").
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows(documentCols))

		items, err := repo.FindByInvoiceID(ctx, 8)
		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_SetValidatedByInvoice(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectExec("UPDATE documents SET status = 'validated'").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.SetValidatedByInvoice(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_SetDeleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET status = 'deleted', validated_at").
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetDeleted(context.Background(), 1))
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec("UPDATE documents SET status = 'deleted', validated_at").
			WithArgs(int64(2)).
			WillReturnError(errors.New("connection reset"))

		assert.Error(t, repo.SetDeleted(context.Background(), 2))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
