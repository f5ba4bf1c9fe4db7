// Package ingest imports order workbooks from directories and watches an
// inbox directory for new ones.
package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/order-assistant/constants"
	"github.com/joseph-ayodele/order-assistant/internal/entity"
)

// Importer imports one workbook already on disk.
type Importer interface {
	ImportFile(ctx context.Context, path string) (*entity.Order, error)
}

// FileResult is the per-file import outcome.
type FileResult struct {
	Path        string `json:"path"`
	OrderID     int64  `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	Items       int    `json:"items,omitempty"`
	Duplicate   bool   `json:"duplicate,omitempty"`
	Err         string `json:"error,omitempty"`
}

// DirStats summarizes a directory import.
type DirStats struct {
	Scanned    uint32 `json:"scanned"`
	Matched    uint32 `json:"matched"`
	Succeeded  uint32 `json:"succeeded"`
	Duplicates uint32 `json:"duplicates"`
	Failed     uint32 `json:"failed"`
}

// IsHidden reports whether the base name starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// isLockFile matches the owner files office suites leave next to open
// workbooks (~$name.xlsx).
func isLockFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}

// Candidate reports whether path looks like an importable workbook.
func Candidate(path string) bool {
	return constants.IsAllowedExt(filepath.Ext(path)) && !isLockFile(path)
}
