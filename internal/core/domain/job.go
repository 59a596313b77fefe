package domain

import "time"

// JobStatus tracks the lifecycle of one pipeline invocation:
// pending -> processing -> completed | failed.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// PipelineJob is a progress marker for one orchestrator run, mutated only by
// the orchestrator. It is not a saga: the input payload plus the running
// processed count is all the durable state there is.
type PipelineJob struct {
	ID              string
	Status          JobStatus
	CSVContent      string
	BatchSize       int
	RowLimit        int
	ClaimsProcessed int
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
