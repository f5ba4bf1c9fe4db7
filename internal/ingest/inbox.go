package ingest

import (
	"context"
	"time"
)

// WatchInbox imports every workbook that appears under dir until ctx ends.
// Files already present are imported first. onResult, when set, sees every
// outcome.
func (in *Ingestor) WatchInbox(ctx context.Context, dir string, debounce time.Duration, onResult func(FileResult)) error {
	events, errs, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    debounce,
		Logger:      in.logger,
	})
	if err != nil {
		return err
	}
	in.logger.Info("ingest.inbox.watching", "dir", dir, "debounce_ms", debounce.Milliseconds())

	for {
		select {
		case path, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			r := in.ImportPath(ctx, path)
			switch {
			case r.Err == "":
				in.logger.Info("ingest.inbox.imported", "path", path, "order_id", r.OrderID, "order_number", r.OrderNumber)
			case r.Duplicate:
				in.logger.Info("ingest.inbox.duplicate", "path", path, "error", r.Err)
			default:
				in.logger.Warn("ingest.inbox.failed", "path", path, "error", r.Err)
			}
			if onResult != nil {
				onResult(r)
			}
		case err, ok := <-errs:
			if ok {
				in.logger.Warn("ingest.inbox.watch_error", "error", err)
			} else {
				errs = nil
			}
		}
	}
}
