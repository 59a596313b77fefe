package config

import "testing"

func TestLoadUsesPipelineDefaults(t *testing.T) {
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("CLAUDE_MODEL", "")
	t.Setenv("CLAUDE_MAX_TOKENS", "")
	t.Setenv("DEFAULT_BATCH_SIZE", "")
	t.Setenv("UPLOAD_RATE_PER_SECOND", "")

	cfg := Load()
	if cfg.NATSSubject != "pipeline.jobs" {
		t.Fatalf("expected default subject pipeline.jobs, got %q", cfg.NATSSubject)
	}
	if cfg.ClaudeModel != "claude-sonnet-4-5" {
		t.Fatalf("expected default model claude-sonnet-4-5, got %q", cfg.ClaudeModel)
	}
	if cfg.ClaudeMaxTokens != 4096 {
		t.Fatalf("expected default max tokens 4096, got %d", cfg.ClaudeMaxTokens)
	}
	if cfg.DefaultBatchSize != 50 {
		t.Fatalf("expected default batch size 50, got %d", cfg.DefaultBatchSize)
	}
	if cfg.UploadRatePerSecond != 5 {
		t.Fatalf("expected default upload rate 5, got %d", cfg.UploadRatePerSecond)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CLAUDE_BASE_URL", "http://localhost:9100")
	t.Setenv("CLAUDE_MAX_TOKENS", "2048")
	t.Setenv("DEFAULT_ROW_LIMIT", "25")
	t.Setenv("DOCUMENTS_PATH", "/srv/claims/docs")

	cfg := Load()
	if cfg.ClaudeBaseURL != "http://localhost:9100" {
		t.Fatalf("expected base url override, got %q", cfg.ClaudeBaseURL)
	}
	if cfg.ClaudeMaxTokens != 2048 {
		t.Fatalf("expected max tokens 2048, got %d", cfg.ClaudeMaxTokens)
	}
	if cfg.DefaultRowLimit != 25 {
		t.Fatalf("expected row limit 25, got %d", cfg.DefaultRowLimit)
	}
	if cfg.DocumentsPath != "/srv/claims/docs" {
		t.Fatalf("expected documents path override, got %q", cfg.DocumentsPath)
	}
}

func TestLoadFallsBackOnBadInt(t *testing.T) {
	t.Setenv("CLAUDE_MAX_TOKENS", "not-a-number")

	cfg := Load()
	if cfg.ClaudeMaxTokens != 4096 {
		t.Fatalf("expected fallback max tokens 4096, got %d", cfg.ClaudeMaxTokens)
	}
}
