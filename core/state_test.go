package core

import (
	"strings"
	"testing"
)

func TestNewState_GatesDefaultOpen(t *testing.T) {
	s := NewState("what is a protocol?")
	if !s.IsDataValid || !s.IsSafe || !s.IsQueryValid {
		t.Fatalf("expected all gates open, got %+v", s)
	}
	if s.UserQuery.Role != RoleHuman {
		t.Errorf("expected human query, got %q", s.UserQuery.Role)
	}
	if s.RouterResult != nil {
		t.Error("router result should be unset before routing")
	}
}

func TestState_SetRouterResultImmutable(t *testing.T) {
	s := NewState("q")
	if err := s.SetRouterResult(RouterResult{Route: RouteRetrieval, Confidence: ConfidenceHigh}); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if err := s.SetRouterResult(RouterResult{Route: RouteOffTopic, Confidence: ConfidenceLow}); err == nil {
		t.Fatal("expected error on second set")
	}
	if !s.RouteIs(RouteRetrieval) {
		t.Errorf("route overwritten: %+v", s.RouterResult)
	}
}

func TestState_FragmentRoundTrip(t *testing.T) {
	s := NewState("q")
	s.Messages = []Message{HumanMessage("hi"), AssistantMessage("hello")}
	s.FullHistory = []Message{SystemMessage("old summary")}
	s.NumCompressions = 2

	frag := s.Fragment()

	restored := NewState("next")
	restored.SeedFragment(frag)
	if len(restored.Messages) != 2 || len(restored.FullHistory) != 1 || restored.NumCompressions != 2 {
		t.Fatalf("fragment not restored: %+v", restored)
	}

	// mutation safety (fragment slices are copies)
	frag.Messages[0].Content = "changed"
	if s.Messages[0].Content != "hi" {
		t.Error("fragment should not alias state messages")
	}
}

func TestSerializeHistory_Tags(t *testing.T) {
	history := SerializeHistory([]Message{
		HumanMessage("how do I define a protocol?"),
		AssistantMessage("use defprotocol"),
		SystemMessage("earlier turns summarized"),
	})
	for _, want := range []string{
		"<human>how do I define a protocol?</human>\n",
		"<assistant>use defprotocol</assistant>\n",
		"<previous-conversation>earlier turns summarized</previous-conversation>\n",
	} {
		if !strings.Contains(history, want) {
			t.Errorf("missing %q in %q", want, history)
		}
	}
	if SerializeHistory(nil) != "" {
		t.Error("empty window should serialize to empty string")
	}
}

func TestRouteAndConfidence_Valid(t *testing.T) {
	for _, r := range []Route{RouteRetrieval, RouteNonRetrieval, RouteOffTopic} {
		if !r.Valid() {
			t.Errorf("route %q should be valid", r)
		}
	}
	if Route("sideways").Valid() {
		t.Error("unknown route should be invalid")
	}
	if Confidence("absolute").Valid() {
		t.Error("unknown confidence should be invalid")
	}
}
