package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

const jobColumns = `
id, status, csv_content, batch_size, row_limit, claims_processed, error_message, created_at, updated_at`

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.PipelineJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pipeline_jobs (`+jobColumns+`
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		job.ID, string(job.Status), job.CSVContent, job.BatchSize, job.RowLimit,
		job.ClaimsProcessed, job.ErrorMessage, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create pipeline job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.PipelineJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+jobColumns+`
FROM pipeline_jobs
WHERE id = $1
`, id)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get pipeline job", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("get pipeline job by id: %w", err)
	}
	return &job, nil
}

func (r *JobRepository) List(ctx context.Context) ([]domain.PipelineJob, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM pipeline_jobs
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list pipeline jobs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PipelineJob, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pipeline job: %w", err)
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pipeline jobs: %w", err)
	}
	return out, nil
}

func (r *JobRepository) MarkProcessing(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, domain.JobProcessing, `
UPDATE pipeline_jobs
SET status = $2, updated_at = $3
WHERE id = $1
`, string(domain.JobProcessing), time.Now().UTC())
}

func (r *JobRepository) MarkCompleted(ctx context.Context, id string, claimsProcessed int) error {
	return r.setStatus(ctx, id, domain.JobCompleted, `
UPDATE pipeline_jobs
SET status = $2, claims_processed = $3, updated_at = $4
WHERE id = $1
`, string(domain.JobCompleted), claimsProcessed, time.Now().UTC())
}

func (r *JobRepository) MarkFailed(ctx context.Context, id, message string) error {
	return r.setStatus(ctx, id, domain.JobFailed, `
UPDATE pipeline_jobs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, string(domain.JobFailed), message, time.Now().UTC())
}

func (r *JobRepository) IncrementProcessed(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE pipeline_jobs
SET claims_processed = claims_processed + 1, updated_at = $2
WHERE id = $1
`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("increment claims processed: %w", err)
	}
	return requireJobFound(result, id, "increment claims processed")
}

func (r *JobRepository) setStatus(ctx context.Context, id string, status domain.JobStatus, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("mark pipeline job %s: %w", status, err)
	}
	return requireJobFound(result, id, fmt.Sprintf("mark pipeline job %s", status))
}

func requireJobFound(result sql.Result, id, operation string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrJobNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}

func scanJob(row rowScanner) (domain.PipelineJob, error) {
	var job domain.PipelineJob
	var status string
	err := row.Scan(
		&job.ID, &status, &job.CSVContent, &job.BatchSize, &job.RowLimit,
		&job.ClaimsProcessed, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return domain.PipelineJob{}, err
	}
	job.Status = domain.JobStatus(status)
	return job, nil
}
