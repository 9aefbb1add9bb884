package ai

import (
	"strings"
	"testing"
)

func TestContextualUserText(t *testing.T) {
	req := Request{UserText: "what is the refund policy?"}
	if got := contextualUserText(req); got != req.UserText {
		t.Fatalf("no contexts must pass through, got %q", got)
	}

	req.Contexts = []string{"refunds within 30 days", "contact support first"}
	got := contextualUserText(req)
	if !strings.HasPrefix(got, "Use the following context to help answer the question:") {
		t.Fatalf("missing preamble: %q", got)
	}
	if !strings.Contains(got, "[Context 1]: refunds within 30 days") {
		t.Fatalf("missing first context: %q", got)
	}
	if !strings.Contains(got, "[Context 2]: contact support first") {
		t.Fatalf("missing second context: %q", got)
	}
	if !strings.HasSuffix(got, "User question: what is the refund policy?") {
		t.Fatalf("question must come last: %q", got)
	}
}

func TestEffectiveSystemPrompt(t *testing.T) {
	req := Request{SystemPrompt: "Be brief."}
	if got := effectiveSystemPrompt(req); got != "Be brief." {
		t.Fatalf("unexpected: %q", got)
	}
	req.Suggestions = true
	got := effectiveSystemPrompt(req)
	if !strings.HasPrefix(got, "Be brief.") || !strings.Contains(got, SuggestionsDelimiter) {
		t.Fatalf("suggestions instruction missing: %q", got)
	}
}

func TestSplitSuggestions(t *testing.T) {
	answer, sugg := SplitSuggestions("plain reply")
	if answer != "plain reply" || sugg != nil {
		t.Fatalf("unexpected: %q %v", answer, sugg)
	}

	reply := "Here is the answer.\n" + SuggestionsDelimiter + "\n- How do I start?\n2. What does it cost?\n\n"
	answer, sugg = SplitSuggestions(reply)
	if answer != "Here is the answer." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if len(sugg) != 2 || sugg[0] != "How do I start?" || sugg[1] != "What does it cost?" {
		t.Fatalf("unexpected suggestions: %v", sugg)
	}
}

func TestTemperatureFloat(t *testing.T) {
	if temperatureFloat(70) != 0.7 {
		t.Fatalf("70 -> %v", temperatureFloat(70))
	}
	if temperatureFloat(0) != 0 {
		t.Fatalf("0 -> %v", temperatureFloat(0))
	}
	if temperatureFloat(100) != 1.0 {
		t.Fatalf("100 -> %v", temperatureFloat(100))
	}
}

func TestBuildInput(t *testing.T) {
	req := Request{
		SystemPrompt: "Be helpful.",
		History: []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
		Contexts: []string{"shipping takes 3 days"},
		UserText: "when will it arrive?",
	}
	got := buildInput(req)

	wantOrder := []string{
		"System instructions: Be helpful.",
		"Previous conversation:",
		"User: hi",
		"Assistant: hello",
		"Relevant context:",
		"[1]: shipping takes 3 days",
		"User: when will it arrive?",
	}
	pos := -1
	for _, want := range wantOrder {
		i := strings.Index(got, want)
		if i < 0 {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
		if i < pos {
			t.Fatalf("%q out of order in:\n%s", want, got)
		}
		pos = i
	}
}

func TestBuildInput_Minimal(t *testing.T) {
	got := buildInput(Request{UserText: "hello"})
	if got != "User: hello" {
		t.Fatalf("unexpected: %q", got)
	}
}
