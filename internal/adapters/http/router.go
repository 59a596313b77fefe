package httpadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sdiops/claims-pipeline/internal/config"
	"github.com/sdiops/claims-pipeline/internal/core/domain"
	"github.com/sdiops/claims-pipeline/internal/core/ports"
	"github.com/sdiops/claims-pipeline/internal/core/usecase"
	"github.com/sdiops/claims-pipeline/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg      config.Config
	jobs     ports.JobStore
	claims   ports.ClaimStore
	results  ports.ResultStore
	queue    ports.JobQueue
	accuracy *usecase.EvaluateAccuracyUseCase
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	jobs ports.JobStore,
	claims ports.ClaimStore,
	results ports.ResultStore,
	queue ports.JobQueue,
	accuracy *usecase.EvaluateAccuracyUseCase,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	if cfg.DefaultBatchSize <= 0 {
		cfg.DefaultBatchSize = 50
	}
	return &Router{
		cfg:      cfg,
		jobs:     jobs,
		claims:   claims,
		results:  results,
		queue:    queue,
		accuracy: accuracy,
		metrics:  httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/pipeline/jobs", rt.pipelineJobs)
	mux.HandleFunc("/v1/pipeline/jobs/", rt.getJobByID)
	mux.HandleFunc("/v1/claims", rt.listClaims)
	mux.HandleFunc("/v1/claims/results", rt.listResults)
	mux.HandleFunc("/v1/accuracy/report", rt.accuracyReport)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	if rt.cfg.APIMaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, backpressureWait)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) pipelineJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.submitJob(w, r)
	case http.MethodGet:
		rt.listJobs(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

type submitJobRequest struct {
	CSVContent string `json:"csvContent"`
	BatchSize  int    `json:"batchSize"`
	RowLimit   int    `json:"rowLimit"`
}

func (rt *Router) submitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.CSVContent) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "csvContent is required"})
		return
	}
	if req.BatchSize < 0 || req.RowLimit < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batchSize and rowLimit must not be negative"})
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = rt.cfg.DefaultBatchSize
	}
	if req.RowLimit == 0 {
		req.RowLimit = rt.cfg.DefaultRowLimit
	}

	now := time.Now().UTC()
	job := domain.PipelineJob{
		ID:         uuid.NewString(),
		Status:     domain.JobPending,
		CSVContent: req.CSVContent,
		BatchSize:  req.BatchSize,
		RowLimit:   req.RowLimit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := rt.jobs.Create(r.Context(), &job); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if err := rt.queue.PublishJob(r.Context(), job.ID); err != nil {
		// The job row stays pending; an operator can republish it.
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": fmt.Sprintf("queue job: %v", err)})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordJobSubmitted(serviceName)
	}
	writeJSON(w, http.StatusAccepted, jobToDTO(job))
}

func (rt *Router) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := rt.jobs.List(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	out := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, jobToDTO(job))
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": out})
}

func (rt *Router) getJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/pipeline/jobs/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job id is required"})
		return
	}

	job, err := rt.jobs.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, jobToDTO(*job))
}

func (rt *Router) listClaims(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	claims, err := rt.claims.ListAll(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	out := make([]claimDTO, 0, len(claims))
	for _, claim := range claims {
		out = append(out, claimToDTO(claim))
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": out})
}

func (rt *Router) listResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	results, err := rt.results.ListAll(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	out := make([]resultDTO, 0, len(results))
	for _, result := range results {
		out = append(out, resultToDTO(result))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

// accuracyReport renders the evaluation as plain text by default, or as a
// spreadsheet with ?format=xlsx.
func (rt *Router) accuracyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	report, err := rt.accuracy.Evaluate(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if report == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no claims with ground truth to evaluate"})
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		workbook, err := report.BuildWorkbook()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		defer workbook.Close()

		var buf bytes.Buffer
		if err := workbook.Write(&buf); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="accuracy-report.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.FormatText()))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
