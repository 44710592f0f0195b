package storage

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResolvedName is the output of ResolveName: where an upload will live on
// disk and the human-readable reference handed back to the caller.
type ResolvedName struct {
	Suffix     string
	StoredName string
	Path       string
	Reference  string
}

// NewSuffix returns 12 hex characters of fresh randomness. Each upload gets
// its own suffix, so concurrent writers never share a filename.
func NewSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ResolveName derives the stored filename, absolute path and document
// reference for an upload. Pure function: the caller supplies the suffix
// (see NewSuffix) and the current time.
//
// The stored name keeps the original extension, defaulting to .bin when the
// original has none. The reference format is DOC-YYYYMMDD-XXXXXXXX.
func ResolveName(root, originalFilename string, now time.Time, suffix string) ResolvedName {
	ext := filepath.Ext(originalFilename)
	if ext == "" {
		ext = ".bin"
	}
	stored := suffix + ext
	return ResolvedName{
		Suffix:     suffix,
		StoredName: stored,
		Path:       filepath.Join(root, stored),
		Reference:  "DOC-" + now.Format("20060102") + "-" + strings.ToUpper(suffix[:8]),
	}
}
