package ports

import "context"

// RunOptions configures one orchestrator invocation.
type RunOptions struct {
	CSVContent string
	RowLimit   int
	BatchSize  int
	JobID      string
}

// PipelineRunner is the inbound contract for running the claim-processing
// pipeline end to end. It returns the number of claims that produced a
// persisted result.
type PipelineRunner interface {
	Run(ctx context.Context, opts RunOptions) (int, error)
}
