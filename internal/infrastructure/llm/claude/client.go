// Package claude talks to the Anthropic API: the Files endpoint for document
// uploads and the Messages endpoint for the two claim-analysis phases.
package claude

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
	"github.com/sdiops/claims-pipeline/internal/infrastructure/resilience"
	"github.com/sdiops/claims-pipeline/internal/rules"
)

const (
	apiVersion    = "2023-06-01"
	filesAPIBeta  = "files-api-2025-04-14"
	opUpload      = "claude.upload"
	opAnalyzeInit = "claude.analyze_initial"
	opAnalyzeChrg = "claude.analyze_charges"
)

type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

// Client implements ports.FileUploader and ports.ClaimAnalyzer over the
// Anthropic HTTP API. All outbound calls run through the shared resilience
// executor.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	rules      *rules.RuleSet
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config, ruleSet *rules.RuleSet, executor *resilience.Executor) *Client {
	if ruleSet == nil {
		ruleSet = rules.Default()
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		rules:      ruleSet,
		httpClient: &http.Client{Timeout: 180 * time.Second},
		executor:   executor,
	}
}

// Upload pushes one document to the Files endpoint and returns the opaque
// file handle. The body is buffered so a retried attempt re-sends the same
// bytes.
func (c *Client) Upload(ctx context.Context, filename, mimeType string, data io.Reader) (domain.AnalysisFile, error) {
	payload, err := io.ReadAll(data)
	if err != nil {
		return domain.AnalysisFile{}, fmt.Errorf("read document body: %w", err)
	}

	var wire fileWire
	err = c.execute(ctx, opUpload, func(ctx context.Context) error {
		return c.postMultipart(ctx, "/v1/files", filename, mimeType, payload, &wire, opUpload)
	})
	if err != nil {
		return domain.AnalysisFile{}, err
	}
	return wire.toDomain()
}

// AnalyzeInitial runs Phase 1 against the claim's uploaded documents.
func (c *Client) AnalyzeInitial(ctx context.Context, claim domain.ClaimRecord) (domain.InitialAnalysis, error) {
	if len(claim.AnalysisFiles) == 0 {
		return domain.InitialAnalysis{}, fmt.Errorf("no analysis files for claim %s", claim.TrackingNumber)
	}

	raw, err := c.createMessage(ctx, opAnalyzeInit, buildInitialPrompt(claim, c.rules), claim)
	if err != nil {
		return domain.InitialAnalysis{}, err
	}
	return parseInitialAnalysis(raw)
}

// AnalyzeCharges runs Phase 2 for a claim approved in Phase 1.
func (c *Client) AnalyzeCharges(ctx context.Context, claim domain.ClaimRecord, initial domain.ClaimResult) (domain.ChargesAnalysis, error) {
	if len(claim.AnalysisFiles) == 0 {
		return domain.ChargesAnalysis{}, fmt.Errorf("no analysis files for claim %s", claim.TrackingNumber)
	}

	raw, err := c.createMessage(ctx, opAnalyzeChrg, buildChargesPrompt(claim, initial, c.rules), claim)
	if err != nil {
		return domain.ChargesAnalysis{}, err
	}
	return parseChargesAnalysis(raw)
}

// createMessage sends one Messages request carrying the prompt plus a
// document block per uploaded file, and returns the model's text output.
func (c *Client) createMessage(ctx context.Context, operation, prompt string, claim domain.ClaimRecord) (string, error) {
	content := make([]map[string]any, 0, len(claim.AnalysisFiles)+1)
	content = append(content, map[string]any{
		"type": "text",
		"text": prompt,
	})
	for _, file := range claim.AnalysisFiles {
		content = append(content, map[string]any{
			"type": "document",
			"source": map[string]any{
				"type":    "file",
				"file_id": file.ID,
			},
		})
	}

	request := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}

	var response messageWire
	err := c.execute(ctx, operation, func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/messages", request, &response, operation)
	})
	if err != nil {
		return "", err
	}

	if response.StopReason != nil && *response.StopReason == "max_tokens" {
		slog.Warn("model response truncated",
			"operation", operation,
			"tracking_number", claim.TrackingNumber,
		)
	}

	text, err := response.firstText()
	if err != nil {
		return "", fmt.Errorf("%s for claim %s: %w", operation, claim.TrackingNumber, err)
	}
	return text, nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return wrapTemporaryIfNeeded(operation, fn(ctx))
	}
	return wrapTemporaryIfNeeded(operation, c.executor.Execute(ctx, operation, fn, classifyClaudeError))
}
