package contracts

import "context"

type AsyncWorker interface {
	// Run starts the consumer loop until ctx is done.
	Run(ctx context.Context) error
	// ProcessJob handles one queued job, acknowledging it on success.
	ProcessJob(ctx context.Context, jobID string, raw []byte) error
}
