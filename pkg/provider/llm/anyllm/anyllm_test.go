package anyllm

import (
	"strings"
	"testing"

	"github.com/skitlabs/lampoon/pkg/provider/llm"
)

// ── convertMessage ────────────────────────────────────────────────────────────

// TestConvertMessage_System checks that system-role messages are converted correctly.
func TestConvertMessage_System(t *testing.T) {
	m := llm.Message{Role: "system", Content: "You are an expert parody writer."}
	got := convertMessage(m)
	if got.Role != "system" {
		t.Errorf("expected role system, got %q", got.Role)
	}
	if got.ContentString() != "You are an expert parody writer." {
		t.Errorf("unexpected content: %q", got.ContentString())
	}
}

// TestConvertMessage_User checks that user-role messages are converted correctly.
func TestConvertMessage_User(t *testing.T) {
	m := llm.Message{Role: "user", Content: "YUKARI in Dorm: exam week"}
	got := convertMessage(m)
	if got.Role != "user" {
		t.Errorf("expected role user, got %q", got.Role)
	}
	if got.ContentString() != "YUKARI in Dorm: exam week" {
		t.Errorf("unexpected content: %q", got.ContentString())
	}
}

// TestConvertMessage_WithName checks that the Name field is preserved.
func TestConvertMessage_WithName(t *testing.T) {
	m := llm.Message{Role: "assistant", Content: "Hi!", Name: "narrator"}
	got := convertMessage(m)
	if got.Name != "narrator" {
		t.Errorf("expected name narrator, got %q", got.Name)
	}
}

// ── buildParams ───────────────────────────────────────────────────────────────

// TestBuildParams_SystemPromptPrepended checks that SystemPrompt becomes the
// first message.
func TestBuildParams_SystemPromptPrepended(t *testing.T) {
	p := &Provider{name: "openai", model: "gpt-4o"}
	params := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "Stay in character.",
		Messages: []llm.Message{
			{Role: "user", Content: "Go."},
		},
	})

	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != "system" {
		t.Errorf("expected first message role system, got %q", params.Messages[0].Role)
	}
	if params.Messages[1].Role != "user" {
		t.Errorf("expected second message role user, got %q", params.Messages[1].Role)
	}
	if params.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", params.Model)
	}
}

// TestBuildParams_SamplingKnobs checks temperature and max token forwarding.
func TestBuildParams_SamplingKnobs(t *testing.T) {
	p := &Provider{name: "anthropic", model: "claude-3-5-sonnet-latest"}
	params := p.buildParams(llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: "hi"}},
		Temperature: 1.0,
		MaxTokens:   4000,
	})

	if params.Temperature == nil || *params.Temperature != 1.0 {
		t.Errorf("expected temperature pointer to 1.0, got %v", params.Temperature)
	}
	if params.MaxTokens == nil || *params.MaxTokens != 4000 {
		t.Errorf("expected max tokens pointer to 4000, got %v", params.MaxTokens)
	}
}

// TestBuildParams_ZeroKnobsOmitted checks that zero values map to nil pointers
// so the backend applies its own defaults.
func TestBuildParams_ZeroKnobsOmitted(t *testing.T) {
	p := &Provider{name: "ollama", model: "llama3"}
	params := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})

	if params.Temperature != nil {
		t.Errorf("expected nil temperature, got %v", *params.Temperature)
	}
	if params.MaxTokens != nil {
		t.Errorf("expected nil max tokens, got %v", *params.MaxTokens)
	}
}

// ── New ───────────────────────────────────────────────────────────────────────

// TestNew_EmptyProviderName checks input validation.
func TestNew_EmptyProviderName(t *testing.T) {
	_, err := New("", "gpt-4o")
	if err == nil {
		t.Fatal("expected error for empty provider name")
	}
}

// TestNew_EmptyModel checks input validation.
func TestNew_EmptyModel(t *testing.T) {
	_, err := New("openai", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

// TestNew_UnsupportedProvider checks that unknown backends are rejected with a
// helpful message.
func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("watson", "some-model")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "watson") {
		t.Errorf("expected error to name the provider, got: %v", err)
	}
}

// ── CountTokens / modelCapabilities ───────────────────────────────────────────

// TestCountTokens_Approximation checks the chars/4 heuristic with per-message
// overhead.
func TestCountTokens_Approximation(t *testing.T) {
	p := &Provider{name: "openai", model: "gpt-4o"}
	// 8 chars -> 2 tokens, plus 4 overhead.
	got, err := p.CountTokens([]llm.Message{{Role: "user", Content: "12345678"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 6 {
		t.Errorf("expected 6 tokens, got %d", got)
	}
}

// TestModelCapabilities_KnownFamilies spot-checks the capability table.
func TestModelCapabilities_KnownFamilies(t *testing.T) {
	cases := []struct {
		model         string
		contextWindow int
		maxOutput     int
	}{
		{"gpt-4o", 128_000, 16_384},
		{"gpt-4", 8_192, 4_096},
		{"gpt-3.5-turbo", 16_385, 4_096},
		{"o1-mini", 128_000, 65_536},
		{"claude-3-5-sonnet-latest", 200_000, 8_192},
		{"claude-3-opus-20240229", 200_000, 4_096},
		{"gemini-1.5-pro", 2_097_152, 8_192},
		{"gemini-2.0-flash", 1_048_576, 8_192},
		{"some-unknown-model", 128_000, 4_096},
	}

	for _, tc := range cases {
		caps := modelCapabilities(tc.model)
		if caps.ContextWindow != tc.contextWindow {
			t.Errorf("%s: expected context window %d, got %d", tc.model, tc.contextWindow, caps.ContextWindow)
		}
		if caps.MaxOutputTokens != tc.maxOutput {
			t.Errorf("%s: expected max output %d, got %d", tc.model, tc.maxOutput, caps.MaxOutputTokens)
		}
		if caps.SupportsTopP {
			t.Errorf("%s: unified adapter must not report TopP support", tc.model)
		}
	}
}
