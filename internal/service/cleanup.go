package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"docsvc/internal/model"
	"docsvc/internal/repository"
	"docsvc/internal/storage"
)

// Scheduler arms one deletion timer per uploaded file. Timers live in
// process memory only: a restart silently drops anything still pending.
// A durable version would persist fire times and re-arm them on startup.
type Scheduler struct {
	store  storage.Storage
	docs   repository.DocumentRepository
	audits repository.AuditLogRepository
	log    *slog.Logger

	sleep func(time.Duration)
}

// NewScheduler constructs a Scheduler.
func NewScheduler(
	store storage.Storage,
	docs repository.DocumentRepository,
	audits repository.AuditLogRepository,
	log *slog.Logger,
) *Scheduler {
	return &Scheduler{
		store:  store,
		docs:   docs,
		audits: audits,
		log:    log,
		sleep:  time.Sleep,
	}
}

// Schedule arranges deletion of the stored file after delay, then updates
// the document row and appends an audit entry. Fire-and-forget: the caller
// returns immediately and never learns the outcome. There is no way to
// cancel once armed.
func (s *Scheduler) Schedule(location string, docID int64, delay time.Duration) {
	go func() {
		s.sleep(delay)
		s.fire(location, docID)
	}()
	s.log.Info("cleanup scheduled", "path", location, "document_id", docID,
		"delay_seconds", int(delay.Seconds()))
}

// fire runs one deletion sequence: stat, remove, status update, audit entry.
// Every failure is logged and swallowed; nothing retries and the file
// removal is never re-attempted.
func (s *Scheduler) fire(location string, docID int64) {
	ctx := context.Background()

	size, err := s.store.Stat(ctx, location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("cleanup: file not found", "path", location, "document_id", docID)
		} else {
			s.log.Error("cleanup: stat failed", "path", location, "document_id", docID, "error", err)
		}
		return
	}

	if err := s.store.Remove(ctx, location); err != nil {
		s.log.Error("cleanup: error deleting file", "path", location, "error", err)
		return
	}
	s.log.Info("cleanup: deleted file", "path", location, "file_size", size)

	if err := s.docs.SetDeleted(ctx, docID); err != nil {
		s.log.Error("cleanup: database update failed", "document_id", docID, "error", err)
		return
	}
	details := fmt.Sprintf(`{"reason": "scheduled_cleanup", "file_size": %d}`, size)
	if err := s.audits.Create(ctx, &model.AuditLogEntry{
		EntityType: "document",
		EntityID:   docID,
		Action:     "deleted",
		Details:    details,
	}); err != nil {
		s.log.Error("cleanup: audit log insert failed", "document_id", docID, "error", err)
		return
	}
	s.log.Info("cleanup: updated database", "document_id", docID)
}
