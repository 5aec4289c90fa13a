package util

import "testing"

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("History: {{.history}} Query: {{.query}}", map[string]any{
		"history": "<human>hi</human>",
		"query":   "what is a slice?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "History: <human>hi</human> Query: what is a slice?"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderTemplateNoMarkers(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "plain text" {
		t.Errorf("got %q", out)
	}
}

func TestRenderTemplateDoesNotEscapeMarkup(t *testing.T) {
	// Tagged history markup must pass through verbatim.
	out, err := RenderTemplate("{{.h}}", map[string]any{"h": "<assistant>a < b</assistant>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "<assistant>a < b</assistant>"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderTemplateInvalid(t *testing.T) {
	if _, err := RenderTemplate("{{.unterminated", nil); err == nil {
		t.Error("expected parse error")
	}
}
