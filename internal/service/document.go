package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docsvc/internal/config"
	"docsvc/internal/model"
	"docsvc/internal/repository"
	"docsvc/internal/storage"
)

var (
	ErrEmptyFilename    = errors.New("no file selected")
	ErrFileTooLarge     = errors.New("file too large")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
)

// UploadInput carries a binary payload and its metadata into the pipeline.
type UploadInput struct {
	Data             []byte
	OriginalFilename string
	ContentType      string
	DocumentType     string
	InvoiceID        *int64
}

// StepTimings reports how long each pipeline step took, in milliseconds.
type StepTimings struct {
	WriteMS      int64 `json:"write_ms"`
	ScanMS       int64 `json:"scan_ms"`
	ValidationMS int64 `json:"validation_ms"`
	DatabaseMS   int64 `json:"database_ms"`
	TotalMS      int64 `json:"total_ms"`
}

// UploadResult is returned for binary uploads. Success is always true on
// the happy path; failures never produce a result.
type UploadResult struct {
	Success                 bool            `json:"success"`
	Document                *model.Document `json:"document"`
	Reference               string          `json:"reference"`
	FilePath                string          `json:"file_path"`
	Processing              StepTimings     `json:"processing"`
	CleanupScheduledSeconds int             `json:"cleanup_scheduled_seconds"`
}

// MetadataInput is the legacy metadata-only upload body. Absent fields are
// synthesized.
type MetadataInput struct {
	InvoiceID    *int64
	Filename     string
	FileSize     int64
	DocumentType string
	MimeType     string
}

// MetadataResult is returned for legacy metadata-only uploads.
type MetadataResult struct {
	Success          bool            `json:"success"`
	Document         *model.Document `json:"document"`
	Reference        string          `json:"reference"`
	ProcessingTimeMS int64           `json:"processing_time_ms"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload runs the full pipeline: write to storage, simulated scan and
	// format validation, metadata + audit persistence, cleanup scheduling.
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)

	// RegisterMetadata is the legacy path: no file is written and no
	// cleanup is scheduled, only a document row is inserted.
	RegisterMetadata(ctx context.Context, in MetadataInput) (*MetadataResult, error)

	// Get returns a single document joined with its invoice number.
	Get(ctx context.Context, id int64) (*model.DocumentWithInvoice, error)

	// ListRecent returns up to limit documents, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.DocumentWithInvoice, error)

	// Validate evaluates all documents of an invoice and, when no
	// error-level issue is found, marks them validated.
	Validate(ctx context.Context, invoiceID int64) (*ValidationReport, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	invoices  repository.InvoiceRepository
	audits    repository.AuditLogRepository
	scheduler *Scheduler
	log       *slog.Logger
	cfg       config.UploadConfig
	uploadDir string
	tracer    trace.Tracer

	// sleep is swapped out in tests to skip the simulated delays.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	invoices repository.InvoiceRepository,
	audits repository.AuditLogRepository,
	scheduler *Scheduler,
	log *slog.Logger,
	cfg config.UploadConfig,
	uploadDir string,
) DocumentService {
	return &documentService{
		store:     store,
		docs:      docs,
		invoices:  invoices,
		audits:    audits,
		scheduler: scheduler,
		log:       log,
		cfg:       cfg,
		uploadDir: uploadDir,
		tracer:    otel.Tracer("docsvc/internal/service"),
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// scanDelay models virus-scan latency: ~300ms per MB, capped at 1.5s.
func scanDelay(size int64) time.Duration {
	secs := math.Min(float64(size)/1_000_000*0.3, 1.5)
	return time.Duration(secs * float64(time.Second))
}

// formatValidationDelay is a uniform random delay in [100ms, 300ms).
func formatValidationDelay() time.Duration {
	return 100*time.Millisecond + rand.N(200*time.Millisecond)
}

// legacyProcessingDelay models the metadata-only path: ~500ms per MB, capped at 2s.
func legacyProcessingDelay(size int64) time.Duration {
	secs := math.Min(float64(size)/1_000_000*0.5, 2.0)
	return time.Duration(secs * float64(time.Second))
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	totalStart := time.Now()

	if in.OriginalFilename == "" {
		return nil, ErrEmptyFilename
	}
	size := int64(len(in.Data))
	if size > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: maximum size is %dMB", ErrFileTooLarge, s.cfg.MaxFileSize/(1024*1024))
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	documentType := in.DocumentType
	if documentType == "" {
		documentType = "invoice"
	}

	rn := storage.ResolveName(s.uploadDir, in.OriginalFilename, s.now(), storage.NewSuffix())

	s.log.Info("processing document upload",
		"original_filename", in.OriginalFilename,
		"file_size", size,
		"mime_type", contentType)

	// Step 1: write payload to storage. Failure here leaves nothing behind.
	writeStart := time.Now()
	wctx, span := s.tracer.Start(ctx, "document.write",
		trace.WithAttributes(attribute.Int64("file.size", size)))
	location, err := s.store.Write(wctx, rn.StoredName, in.Data)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	writeMS := time.Since(writeStart).Milliseconds()
	s.log.Info("file written", "path", location, "write_ms", writeMS)

	// Step 2: simulated virus scan, size-proportional. Always clean.
	scanStart := time.Now()
	scan := scanDelay(size)
	_, span = s.tracer.Start(ctx, "document.scan",
		trace.WithAttributes(attribute.Int64("scan.delay_ms", scan.Milliseconds())))
	s.sleep(scan)
	span.End()
	scanMS := time.Since(scanStart).Milliseconds()
	s.log.Info("virus scan completed", "scan_ms", scanMS, "result", "clean")

	// Step 3: simulated format validation. Always valid.
	validationStart := time.Now()
	_, span = s.tracer.Start(ctx, "document.validate_format")
	s.sleep(formatValidationDelay())
	span.End()
	validationMS := time.Since(validationStart).Milliseconds()
	s.log.Info("format validation completed", "validation_ms", validationMS, "result", "valid")

	// Step 4: persist metadata, then the audit entry. A failed audit insert
	// is logged but does not fail the upload: the document row is already
	// durable at that point.
	dbStart := time.Now()
	dctx, span := s.tracer.Start(ctx, "document.persist")
	stored, err := s.docs.Create(dctx, &model.Document{
		InvoiceID:        in.InvoiceID,
		Filename:         rn.StoredName,
		OriginalFilename: in.OriginalFilename,
		FileSize:         size,
		MimeType:         contentType,
		DocumentType:     documentType,
		Status:           model.StatusUploaded,
	})
	if err != nil {
		span.End()
		// Remove the just-written file so a failed upload leaves no orphan.
		if rmErr := s.store.Remove(ctx, location); rmErr != nil {
			s.log.Error("failed to remove file after db error", "path", location, "error", rmErr)
		}
		return nil, fmt.Errorf("store metadata: %w", err)
	}
	details := fmt.Sprintf(`{"filename": %q, "size": %d, "path": %q}`, in.OriginalFilename, size, location)
	if err := s.audits.Create(dctx, &model.AuditLogEntry{
		EntityType: "document",
		EntityID:   stored.ID,
		Action:     "uploaded",
		Details:    details,
	}); err != nil {
		s.log.Error("audit log insert failed", "document_id", stored.ID, "error", err)
	}
	span.End()
	dbMS := time.Since(dbStart).Milliseconds()
	s.log.Info("metadata stored", "document_id", stored.ID, "database_ms", dbMS)

	// Step 5: arm the cleanup timer. Fire-and-forget.
	s.scheduler.Schedule(location, stored.ID, s.cfg.CleanupDelay)

	totalMS := time.Since(totalStart).Milliseconds()
	s.log.Info("document upload complete", "reference", rn.Reference, "total_ms", totalMS)

	return &UploadResult{
		Success:   true,
		Document:  stored,
		Reference: rn.Reference,
		FilePath:  location,
		Processing: StepTimings{
			WriteMS:      writeMS,
			ScanMS:       scanMS,
			ValidationMS: validationMS,
			DatabaseMS:   dbMS,
			TotalMS:      totalMS,
		},
		CleanupScheduledSeconds: int(s.cfg.CleanupDelay.Seconds()),
	}, nil
}

func (s *documentService) RegisterMetadata(ctx context.Context, in MetadataInput) (*MetadataResult, error) {
	filename := in.Filename
	if filename == "" {
		filename = fmt.Sprintf("document_%s.pdf", storage.NewSuffix()[:8])
	}
	size := in.FileSize
	if size <= 0 {
		// Synthesize a plausible file size for callers that never had one.
		size = 100_000 + rand.Int64N(4_900_001)
	}
	documentType := in.DocumentType
	if documentType == "" {
		documentType = "invoice"
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	delay := legacyProcessingDelay(size)
	_, span := s.tracer.Start(ctx, "document.process_metadata",
		trace.WithAttributes(attribute.Int64("file.size", size)))
	s.sleep(delay)
	span.End()

	rn := storage.ResolveName(s.uploadDir, filename, s.now(), storage.NewSuffix())

	// No file exists on this path, so the reference doubles as the stored
	// filename and no cleanup is scheduled.
	stored, err := s.docs.Create(ctx, &model.Document{
		InvoiceID:        in.InvoiceID,
		Filename:         rn.Reference,
		OriginalFilename: filename,
		FileSize:         size,
		MimeType:         mimeType,
		DocumentType:     documentType,
		Status:           model.StatusUploaded,
	})
	if err != nil {
		return nil, fmt.Errorf("store metadata: %w", err)
	}

	s.log.Info("metadata-only upload complete", "document_id", stored.ID, "reference", rn.Reference)

	return &MetadataResult{
		Success:          true,
		Document:         stored,
		Reference:        rn.Reference,
		ProcessingTimeMS: delay.Milliseconds(),
	}, nil
}

// Get returns a document by id, joined with its invoice number.
func (s *documentService) Get(ctx context.Context, id int64) (*model.DocumentWithInvoice, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// ListRecent returns the newest documents first.
func (s *documentService) ListRecent(ctx context.Context, limit int) ([]model.DocumentWithInvoice, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.docs.ListRecent(ctx, limit)
}
