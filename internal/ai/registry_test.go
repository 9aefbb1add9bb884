package ai

import (
	"strings"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		provider string
		model    string
		want     Kind
	}{
		{"anthropic", "claude-3-5-sonnet", KindAnthropic},
		{"Anthropic", "claude-3-haiku", KindAnthropic},
		{"openai", "gpt-4o", KindOpenAIChat},
		{"openai", "gpt-3.5-turbo", KindOpenAIChat},
		{"openai", "gpt-5", KindOpenAIResponses},
		{"openai", "gpt-5-mini", KindOpenAIResponses},
		{"openai", "gpt-5-chat-latest", KindOpenAIResponses},
		{"openai", "gpt-5-thinking-nano", KindOpenAIResponses},
	}
	for _, tc := range cases {
		got, err := Classify(tc.provider, tc.model)
		if err != nil {
			t.Fatalf("Classify(%q, %q): %v", tc.provider, tc.model, err)
		}
		if got != tc.want {
			t.Fatalf("Classify(%q, %q) = %q, want %q", tc.provider, tc.model, got, tc.want)
		}
	}
}

func TestClassify_UnsupportedProvider(t *testing.T) {
	_, err := Classify("mistral", "mistral-large")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "unsupported provider") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistry_For(t *testing.T) {
	reg := NewRegistry()
	var gotKey string
	reg.Register(KindAnthropic, func(apiKey string) Provider {
		gotKey = apiKey
		return &AnthropicProvider{}
	})

	p, err := reg.For("anthropic", "claude-3-5-sonnet", "sk-abc")
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if p == nil || gotKey != "sk-abc" {
		t.Fatalf("factory not invoked with key, got %q", gotKey)
	}

	if _, err := reg.For("openai", "gpt-4o", "k"); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry("", "", 10*time.Second)
	for _, tc := range []struct{ provider, model string }{
		{"anthropic", "claude-3-5-sonnet"},
		{"openai", "gpt-4o"},
		{"openai", "gpt-5-mini"},
	} {
		if _, err := reg.For(tc.provider, tc.model, "k"); err != nil {
			t.Fatalf("For(%q, %q): %v", tc.provider, tc.model, err)
		}
	}
}
