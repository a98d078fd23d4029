package llm

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func scoreSchema() *Schema {
	return &Schema{
		Name: "test-score",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"score":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"feedback": map[string]any{"type": "string"},
			},
			"required":             []any{"score", "feedback"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse_NilSchemaAcceptsAnything(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema must skip validation, got %v", err)
	}
}

func TestValidateResponse_Valid(t *testing.T) {
	raw := json.RawMessage(`{"score":0.8,"feedback":"solid"}`)
	if err := validateResponse(scoreSchema(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_InvalidJSON(t *testing.T) {
	err := validateResponse(scoreSchema(), json.RawMessage(`{broken`))
	var invResp *ErrInvalidResponse
	if !errors.As(err, &invResp) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_SchemaViolations(t *testing.T) {
	for _, raw := range []string{
		`{"score":1.5,"feedback":"out of range"}`,
		`{"feedback":"missing score"}`,
		`{"score":0.5,"feedback":"ok","extra":true}`,
	} {
		err := validateResponse(scoreSchema(), json.RawMessage(raw))
		var invResp *ErrInvalidResponse
		if !errors.As(err, &invResp) {
			t.Errorf("payload %s: expected ErrInvalidResponse, got %v", raw, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("openai provider without key must not validate")
	}

	cfg.OpenAI.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Provider = "mock"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock provider needs no key: %v", err)
	}

	cfg.Provider = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown provider must not validate")
	}
}

func TestConfigFromEnv_DeepseekRemap(t *testing.T) {
	t.Setenv("SQLDRILL_LLM_PROVIDER", "deepseek")
	t.Setenv("SQLDRILL_DEEPSEEK_API_KEY", "sk-ds")
	t.Setenv("SQLDRILL_OPENAI_API_KEY", "")
	t.Setenv("SQLDRILL_OPENAI_MODEL", "")
	t.Setenv("SQLDRILL_OPENAI_BASE_URL", "")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" {
		t.Fatalf("deepseek should remap to openai, got %q", cfg.Provider)
	}
	if cfg.OpenAI.BaseURL != deepseekBaseURL {
		t.Fatalf("unexpected base URL %q", cfg.OpenAI.BaseURL)
	}
	if cfg.OpenAI.APIKey != "sk-ds" {
		t.Fatalf("deepseek key not applied: %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "deepseek-chat" {
		t.Fatalf("unexpected model %q", cfg.OpenAI.Model)
	}
}

func TestConfigFromEnv_Timeout(t *testing.T) {
	t.Setenv("SQLDRILL_LLM_TIMEOUT", "5s")
	if cfg := ConfigFromEnv(); cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout %v, want 5s", cfg.Timeout)
	}

	// Unparsable and non-positive values keep the default.
	t.Setenv("SQLDRILL_LLM_TIMEOUT", "soon")
	if cfg := ConfigFromEnv(); cfg.Timeout != DefaultConfig().Timeout {
		t.Fatalf("timeout %v, want default", cfg.Timeout)
	}
	t.Setenv("SQLDRILL_LLM_TIMEOUT", "-1s")
	if cfg := ConfigFromEnv(); cfg.Timeout != DefaultConfig().Timeout {
		t.Fatalf("timeout %v, want default", cfg.Timeout)
	}
}
