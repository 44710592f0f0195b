package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"docsvc/internal/config"
	"docsvc/internal/model"
	repoMocks "docsvc/internal/repository/mocks"
	storeMocks "docsvc/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceMocks struct {
	store    *storeMocks.MockStorage
	docs     *repoMocks.MockDocumentRepository
	invoices *repoMocks.MockInvoiceRepository
	audits   *repoMocks.MockAuditLogRepository
}

// newTestService builds a service with mocked collaborators, no simulated
// delays, and a scheduler whose timers never fire.
func newTestService(t *testing.T) (*documentService, serviceMocks) {
	t.Helper()
	m := serviceMocks{
		store:    new(storeMocks.MockStorage),
		docs:     new(repoMocks.MockDocumentRepository),
		invoices: new(repoMocks.MockInvoiceRepository),
		audits:   new(repoMocks.MockAuditLogRepository),
	}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))

	sched := NewScheduler(m.store, m.docs, m.audits, log)
	// Park scheduled deletions forever so upload tests never race the mocks.
	sched.sleep = func(time.Duration) { select {} }

	cfg := config.UploadConfig{MaxFileSize: 10 * 1024 * 1024, CleanupDelay: 30 * time.Second}
	svc := NewDocumentService(m.store, m.docs, m.invoices, m.audits, sched, log, cfg, "/tmp/documents").(*documentService)
	svc.sleep = func(time.Duration) {}
	return svc, m
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		svc, m := newTestService(t)
		payload := bytes.Repeat([]byte("a"), 2048)
		invoiceID := int64(7)

		m.store.On("Write", mock.Anything, mock.MatchedBy(func(name string) bool {
			return strings.HasSuffix(name, ".pdf") && len(name) == len("a1b2c3d4e5f6.pdf")
		}), payload).Return("/tmp/documents/stored.pdf", nil)

		m.docs.On("Create", mock.Anything, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.OriginalFilename == "invoice.pdf" &&
				doc.FileSize == int64(len(payload)) &&
				doc.Status == model.StatusUploaded &&
				doc.InvoiceID != nil && *doc.InvoiceID == invoiceID
		})).Return(&model.Document{ID: 1, FileSize: int64(len(payload)), Status: model.StatusUploaded}, nil)

		m.audits.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditLogEntry) bool {
			return e.EntityType == "document" && e.EntityID == 1 && e.Action == "uploaded"
		})).Return(nil)

		res, err := svc.Upload(ctx, UploadInput{
			Data:             payload,
			OriginalFilename: "invoice.pdf",
			ContentType:      "application/pdf",
			InvoiceID:        &invoiceID,
		})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.Success)
		assert.Equal(t, int64(1), res.Document.ID)
		assert.Equal(t, "/tmp/documents/stored.pdf", res.FilePath)
		assert.Regexp(t, `^DOC-\d{8}-[0-9A-F]{8}$`, res.Reference)
		assert.Equal(t, 30, res.CleanupScheduledSeconds)
		assert.GreaterOrEqual(t, res.Processing.TotalMS, int64(0))

		m.store.AssertExpectations(t)
		m.docs.AssertExpectations(t)
		m.audits.AssertExpectations(t)
	})

	t.Run("empty filename", func(t *testing.T) {
		svc, m := newTestService(t)

		res, err := svc.Upload(ctx, UploadInput{Data: []byte("x")})

		assert.ErrorIs(t, err, ErrEmptyFilename)
		assert.Nil(t, res)
		m.store.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("oversize payload rejected before write", func(t *testing.T) {
		svc, m := newTestService(t)
		svc.cfg.MaxFileSize = 10

		res, err := svc.Upload(ctx, UploadInput{
			Data:             bytes.Repeat([]byte("a"), 11),
			OriginalFilename: "big.pdf",
		})

		assert.ErrorIs(t, err, ErrFileTooLarge)
		assert.Nil(t, res)
		m.store.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
		m.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("write failure creates no row", func(t *testing.T) {
		svc, m := newTestService(t)

		m.store.On("Write", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("disk full"))

		res, err := svc.Upload(ctx, UploadInput{Data: []byte("x"), OriginalFilename: "a.pdf"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Nil(t, res)
		m.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("db failure removes the written file", func(t *testing.T) {
		svc, m := newTestService(t)

		m.store.On("Write", mock.Anything, mock.Anything, mock.Anything).
			Return("/tmp/documents/orphan.pdf", nil)
		m.docs.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("db fail"))
		m.store.On("Remove", mock.Anything, "/tmp/documents/orphan.pdf").Return(nil)

		res, err := svc.Upload(ctx, UploadInput{Data: []byte("x"), OriginalFilename: "a.pdf"})

		assert.Error(t, err)
		assert.Nil(t, res)
		m.store.AssertExpectations(t)
		m.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("audit failure does not fail the upload", func(t *testing.T) {
		svc, m := newTestService(t)

		m.store.On("Write", mock.Anything, mock.Anything, mock.Anything).
			Return("/tmp/documents/ok.pdf", nil)
		m.docs.On("Create", mock.Anything, mock.Anything).
			Return(&model.Document{ID: 2, Status: model.StatusUploaded}, nil)
		m.audits.On("Create", mock.Anything, mock.Anything).
			Return(errors.New("audit insert failed"))

		res, err := svc.Upload(ctx, UploadInput{Data: []byte("x"), OriginalFilename: "a.pdf"})

		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Document.ID)
	})
}

func TestDocumentService_RegisterMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("all fields supplied", func(t *testing.T) {
		svc, m := newTestService(t)
		invoiceID := int64(3)

		m.docs.On("Create", mock.Anything, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.OriginalFilename == "contract.pdf" &&
				doc.FileSize == 500000 &&
				strings.HasPrefix(doc.Filename, "DOC-")
		})).Return(&model.Document{ID: 5, FileSize: 500000}, nil)

		res, err := svc.RegisterMetadata(ctx, MetadataInput{
			InvoiceID:    &invoiceID,
			Filename:     "contract.pdf",
			FileSize:     500000,
			DocumentType: "contract",
			MimeType:     "application/pdf",
		})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Regexp(t, `^DOC-\d{8}-[0-9A-F]{8}$`, res.Reference)
		assert.GreaterOrEqual(t, res.ProcessingTimeMS, int64(0))
		m.docs.AssertExpectations(t)
	})

	t.Run("missing fields synthesized", func(t *testing.T) {
		svc, m := newTestService(t)

		m.docs.On("Create", mock.Anything, mock.MatchedBy(func(doc *model.Document) bool {
			return strings.HasPrefix(doc.OriginalFilename, "document_") &&
				strings.HasSuffix(doc.OriginalFilename, ".pdf") &&
				doc.FileSize >= 100000 && doc.FileSize <= 5000000 &&
				doc.MimeType == "application/pdf" &&
				doc.DocumentType == "invoice"
		})).Return(&model.Document{ID: 6}, nil)

		res, err := svc.RegisterMetadata(ctx, MetadataInput{})

		require.NoError(t, err)
		assert.NotNil(t, res.Document)
		m.docs.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, m := newTestService(t)
		m.docs.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))

		res, err := svc.RegisterMetadata(ctx, MetadataInput{Filename: "a.pdf", FileSize: 1})
		assert.Error(t, err)
		assert.Nil(t, res)
	})
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		svc, m := newTestService(t)
		want := &model.DocumentWithInvoice{Document: model.Document{ID: 1}}
		m.docs.On("FindByID", ctx, int64(1)).Return(want, nil)

		got, err := svc.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("not found maps sql.ErrNoRows", func(t *testing.T) {
		svc, m := newTestService(t)
		m.docs.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)

		got, err := svc.Get(ctx, 99)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
		assert.Nil(t, got)
	})

	t.Run("generic repository error", func(t *testing.T) {
		svc, m := newTestService(t)
		m.docs.On("FindByID", ctx, int64(2)).Return(nil, errors.New("db fail"))

		got, err := svc.Get(ctx, 2)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDocumentNotFound)
		assert.Nil(t, got)
	})
}

func TestDocumentService_ListRecent(t *testing.T) {
	ctx := context.Background()

	t.Run("limit clamped to 100", func(t *testing.T) {
		svc, m := newTestService(t)
		m.docs.On("ListRecent", ctx, 100).Return([]model.DocumentWithInvoice{}, nil)

		_, err := svc.ListRecent(ctx, 0)
		assert.NoError(t, err)
		_, err = svc.ListRecent(ctx, 500)
		assert.NoError(t, err)
		m.docs.AssertExpectations(t)
	})

	t.Run("explicit limit passed through", func(t *testing.T) {
		svc, m := newTestService(t)
		m.docs.On("ListRecent", ctx, 5).
			Return([]model.DocumentWithInvoice{{Document: model.Document{ID: 1}}}, nil)

		items, err := svc.ListRecent(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}
