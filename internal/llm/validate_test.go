package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var gradeTestSchema = &Schema{
	Name: "grade-test",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"feedback": map[string]any{"type": "string"},
		},
		"required": []any{"score", "feedback"},
	},
}

func TestValidateResponseAccepts(t *testing.T) {
	raw := json.RawMessage(`{"score": 0.8, "feedback": "solid answer"}`)
	if err := validateResponse(gradeTestSchema, raw); err != nil {
		t.Fatalf("validateResponse: %v", err)
	}
}

func TestValidateResponseRejectsMissingField(t *testing.T) {
	raw := json.RawMessage(`{"score": 0.8}`)
	err := validateResponse(gradeTestSchema, raw)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestValidateResponseRejectsOutOfRange(t *testing.T) {
	raw := json.RawMessage(`{"score": 1.5, "feedback": "x"}`)
	err := validateResponse(gradeTestSchema, raw)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestValidateResponseRejectsMalformedJSON(t *testing.T) {
	raw := json.RawMessage(`{"score": `)
	err := validateResponse(gradeTestSchema, raw)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema should skip validation, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"openai without key", Config{Provider: "openai"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "cohere"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestDiscoverConfigFallbackOrder(t *testing.T) {
	for _, v := range []string{
		"MLTUTOR_LLM_PROVIDER", "MLTUTOR_GEMINI_API_KEY", "MLTUTOR_OPENAI_API_KEY",
		"MLTUTOR_ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(v, "")
	}

	if _, ok := DiscoverConfig(); ok {
		t.Fatal("DiscoverConfig found credentials in a clean environment")
	}

	t.Setenv("ANTHROPIC_API_KEY", "ak")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "anthropic" {
		t.Fatalf("provider = %q, ok = %v, want anthropic", cfg.Provider, ok)
	}

	// Gemini outranks Anthropic when both are present.
	t.Setenv("GEMINI_API_KEY", "gk")
	cfg, ok = DiscoverConfig()
	if !ok || cfg.Provider != "gemini" {
		t.Fatalf("provider = %q, ok = %v, want gemini", cfg.Provider, ok)
	}

	// Explicit MLTUTOR configuration wins over discovery.
	t.Setenv("MLTUTOR_LLM_PROVIDER", "openai")
	t.Setenv("MLTUTOR_OPENAI_API_KEY", "ok")
	cfg, ok = DiscoverConfig()
	if !ok || cfg.Provider != "openai" {
		t.Fatalf("provider = %q, ok = %v, want openai", cfg.Provider, ok)
	}
}
