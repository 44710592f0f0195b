package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"docsvc/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; business logic lives in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api/documents")
	api.Post("/upload", UploadDocument(docSvc))
	api.Post("/validate", ValidateDocuments(docSvc))
	api.Get("/", ListDocuments(docSvc))
	api.Get("/:id", GetDocument(docSvc))
}

// HealthCheck verifies store connectivity with a trivial roundtrip.
//
// @Summary Health check
// @Success 200 {object} map[string]any
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "document-service",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// LivenessProbe is a plain liveness check with no dependencies.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// metadataUploadBody is the legacy JSON upload body used when no file part
// is present.
type metadataUploadBody struct {
	InvoiceID    *int64 `json:"invoice_id"`
	Filename     string `json:"filename"`
	FileSize     int64  `json:"file_size"`
	DocumentType string `json:"document_type"`
	MimeType     string `json:"mime_type"`
}

// UploadDocument handles multipart file uploads and, when no file part is
// present, the legacy metadata-only JSON body.
//
// @Summary Upload a document
// @Accept multipart/form-data
// @Success 201 {object} service.UploadResult
// @Router /api/documents/upload [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			// Legacy path: metadata-only JSON body.
			var body metadataUploadBody
			if len(c.Body()) > 0 {
				if err := c.BodyParser(&body); err != nil {
					return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
				}
			}
			res, err := svc.RegisterMetadata(c.UserContext(), service.MetadataInput{
				InvoiceID:    body.InvoiceID,
				Filename:     body.Filename,
				FileSize:     body.FileSize,
				DocumentType: body.DocumentType,
				MimeType:     body.MimeType,
			})
			if err != nil {
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			}
			return c.Status(fiber.StatusCreated).JSON(res)
		}

		var invoiceID *int64
		if raw := c.FormValue("invoice_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_INVOICE_ID", "invoice_id must be numeric")
			}
			invoiceID = &id
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		res, err := svc.Upload(c.UserContext(), service.UploadInput{
			Data:             data,
			OriginalFilename: fh.Filename,
			ContentType:      fh.Header.Get("Content-Type"),
			DocumentType:     c.FormValue("document_type"),
			InvoiceID:        invoiceID,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyFilename):
				return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", err.Error())
			case errors.Is(err, service.ErrFileTooLarge):
				return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", err.Error())
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			}
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetDocument returns a single document joined with its invoice number.
//
// @Summary Get document by id
// @Success 200 {object} model.DocumentWithInvoice
// @Router /api/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrDocumentNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return c.JSON(doc)
	}
}

// validateBody is the request body for document validation.
type validateBody struct {
	InvoiceID *int64 `json:"invoice_id"`
}

// ValidateDocuments runs the validation checks for an invoice's documents.
//
// @Summary Validate invoice documents
// @Success 200 {object} service.ValidationReport
// @Router /api/documents/validate [post]
func ValidateDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body validateBody
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
			}
		}
		if body.InvoiceID == nil {
			return writeError(c, fiber.StatusBadRequest, "INVOICE_ID_REQUIRED", "invoice ID required")
		}

		report, err := svc.Validate(c.UserContext(), *body.InvoiceID)
		if err != nil {
			if errors.Is(err, service.ErrInvoiceNotFound) {
				return writeError(c, fiber.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return c.JSON(report)
	}
}

// ListDocuments returns the most recent documents, newest first.
//
// @Summary List recent documents
// @Success 200 {object} map[string]any
// @Router /api/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListRecent(c.UserContext(), 100)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return c.JSON(fiber.Map{
			"documents": docs,
			"count":     len(docs),
		})
	}
}
