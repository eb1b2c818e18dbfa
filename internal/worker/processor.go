package worker

import (
	"context"

	"github.com/Favour-nine/Gradr/internal/queue"
)

// Processor performs the actual work for a claimed job. A nil error marks the
// job done; any error counts as a failed attempt and is recorded on the job.
type Processor interface {
	Process(ctx context.Context, job *queue.Job) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, job *queue.Job) error

func (f ProcessorFunc) Process(ctx context.Context, job *queue.Job) error {
	return f(ctx, job)
}
