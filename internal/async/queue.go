package async

import (
	"context"
	"time"
)

// Job asks for the audio of one order to be rendered ahead of assembly.
type Job struct {
	OrderID     int64
	Force       bool // re-render files that already exist
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
