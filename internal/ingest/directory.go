package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/order-assistant/internal/common"
)

type Ingestor struct {
	importer Importer
	logger   *slog.Logger
}

func NewIngestor(imp Importer, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{importer: imp, logger: logger}
}

// ImportPath imports a single workbook.
func (in *Ingestor) ImportPath(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path}
	order, err := in.importer.ImportFile(ctx, path)
	if err != nil {
		res.Err = common.UserMessage(err)
		res.Duplicate = errors.Is(err, common.ErrConflict)
		return res
	}
	res.OrderID = order.ID
	res.OrderNumber = order.OrderNumber
	res.Items = len(order.Items)
	return res
}

// ImportDirectory walks root and imports every workbook it finds. Hidden
// files and directories are skipped when skipHidden is set. Per-file
// failures are reported in the results; only an unusable root fails the
// call.
func (in *Ingestor) ImportDirectory(ctx context.Context, root string, skipHidden bool) ([]FileResult, DirStats, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, DirStats{}, common.NewAppError("INVALID_PATH", "root path is required", common.ErrInvalidInput)
	}

	start := time.Now()
	var (
		results []FileResult
		stats   DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Scanned++
			stats.Failed++
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipHidden && IsHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if skipHidden && IsHidden(path) {
			return nil
		}
		if !Candidate(path) {
			return nil
		}
		stats.Matched++

		r := in.ImportPath(ctx, path)
		results = append(results, r)
		switch {
		case r.Err == "":
			stats.Succeeded++
		case r.Duplicate:
			stats.Duplicates++
		default:
			stats.Failed++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stats, common.NewAppError("NOT_FOUND", fmt.Sprintf("directory not found: %s", root), common.ErrNotFound)
		}
		return results, stats, fmt.Errorf("walk %s: %w", root, err)
	}

	in.logger.Info("ingest.directory.done", "root", root, "scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "duplicates", stats.Duplicates, "failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds())
	return results, stats, nil
}
