package core

import (
	"encoding/json"
	"testing"

	"pkt.systems/flowdeck/schema"
)

func TestReduceStreamingRound(t *testing.T) {
	state := schema.AgentStreamState{}
	state = Reduce(state, schema.StreamEvent{Type: schema.EventTextStart})
	if state.Status != schema.StatusStreaming {
		t.Fatalf("expected streaming status, got %q", state.Status)
	}
	state = Reduce(state, schema.StreamEvent{Type: schema.EventTextDelta, Text: "Hel"})
	state = Reduce(state, schema.StreamEvent{Type: schema.EventTextDelta, Text: "lo"})
	if state.StreamingText != "Hello" {
		t.Fatalf("expected accumulated text, got %q", state.StreamingText)
	}
	state = Reduce(state, schema.StreamEvent{Type: schema.EventTextEnd})
	if state.StreamingText != "" {
		t.Fatalf("expected cleared text after end, got %q", state.StreamingText)
	}
	if state.Status != schema.StatusStreaming {
		t.Fatalf("text end must not touch status, got %q", state.Status)
	}
}

func TestReduceThinking(t *testing.T) {
	state := Reduce(schema.AgentStreamState{}, schema.StreamEvent{Type: schema.EventThinkingDelta, Text: "hmm"})
	if state.Status != schema.StatusThinking || state.ThinkingText != "hmm" {
		t.Fatalf("unexpected state: %+v", state)
	}
	state = Reduce(state, schema.StreamEvent{Type: schema.EventThinkingEnd})
	if state.ThinkingText != "" {
		t.Fatalf("expected cleared thinking text, got %q", state.ThinkingText)
	}
}

func TestReduceToolLifecycle(t *testing.T) {
	state := Reduce(schema.AgentStreamState{}, schema.StreamEvent{
		Type: schema.EventToolStart,
		Tool: &schema.ToolEvent{ID: "t1", Name: "grep", Input: json.RawMessage(`{"q":"x"}`)},
	})
	if state.Status != schema.StatusToolUse {
		t.Fatalf("expected tool_use status, got %q", state.Status)
	}
	if len(state.ToolCalls) != 1 || state.ToolCalls[0].Name != "grep" {
		t.Fatalf("unexpected tool calls: %+v", state.ToolCalls)
	}

	state = Reduce(state, schema.StreamEvent{
		Type: schema.EventToolUpdate,
		Tool: &schema.ToolEvent{ID: "t1", Output: "match 1\n"},
	})
	state = Reduce(state, schema.StreamEvent{
		Type: schema.EventToolUpdate,
		Tool: &schema.ToolEvent{ID: "t1", Output: "match 2\n"},
	})
	if state.ToolCalls[0].Output != "match 1\nmatch 2\n" {
		t.Fatalf("unexpected tool output: %q", state.ToolCalls[0].Output)
	}

	state = Reduce(state, schema.StreamEvent{
		Type: schema.EventToolEnd,
		Tool: &schema.ToolEvent{ID: "t1", Result: "2 matches"},
	})
	if !state.ToolCalls[0].IsComplete || state.ToolCalls[0].Result != "2 matches" {
		t.Fatalf("unexpected completed call: %+v", state.ToolCalls[0])
	}

	// A duplicate end must be idempotent.
	again := Reduce(state, schema.StreamEvent{
		Type: schema.EventToolEnd,
		Tool: &schema.ToolEvent{ID: "t1", Result: "2 matches"},
	})
	if !again.Equal(state) {
		t.Fatalf("duplicate tool end changed state: %+v vs %+v", again, state)
	}
}

func TestReduceUnknownToolIDIgnored(t *testing.T) {
	state := schema.AgentStreamState{
		ToolCalls: []schema.ToolCallState{{ID: "t1", Name: "edit"}},
	}
	next := Reduce(state, schema.StreamEvent{
		Type: schema.EventToolUpdate,
		Tool: &schema.ToolEvent{ID: "t9", Output: "noise"},
	})
	if !next.Equal(state) {
		t.Fatalf("update for unknown id changed state")
	}
	next = Reduce(state, schema.StreamEvent{
		Type: schema.EventToolEnd,
		Tool: &schema.ToolEvent{ID: "t9"},
	})
	if !next.Equal(state) {
		t.Fatalf("end for unknown id changed state")
	}
}

func TestReduceTurnEndClearsToolCalls(t *testing.T) {
	state := schema.AgentStreamState{
		Status:    schema.StatusToolUse,
		ToolCalls: []schema.ToolCallState{{ID: "t1", Name: "edit", IsComplete: true}},
	}
	state = Reduce(state, schema.StreamEvent{Type: schema.EventTurnEnd})
	if state.ToolCalls != nil {
		t.Fatalf("expected tool calls cleared, got %+v", state.ToolCalls)
	}
	if state.Status != schema.StatusToolUse {
		t.Fatalf("turn end must not touch status, got %q", state.Status)
	}
}

func TestReduceStatusAndUsage(t *testing.T) {
	state := Reduce(schema.AgentStreamState{}, schema.StreamEvent{Type: schema.EventStatus, Status: schema.StatusAwaitingQA})
	if state.Status != schema.StatusAwaitingQA {
		t.Fatalf("unexpected status: %q", state.Status)
	}
	state = Reduce(state, schema.StreamEvent{Type: schema.EventStatus})
	if state.Status != schema.StatusAwaitingQA {
		t.Fatalf("empty status must be ignored, got %q", state.Status)
	}
	state = Reduce(state, schema.StreamEvent{
		Type:  schema.EventContextUsage,
		Usage: &schema.ContextUsage{UsedPercent: 42.5},
	})
	if state.ContextUsage == nil || state.ContextUsage.UsedPercent != 42.5 {
		t.Fatalf("unexpected usage: %+v", state.ContextUsage)
	}
}

func TestReduceSessionReset(t *testing.T) {
	state := schema.AgentStreamState{
		Status:        schema.StatusStreaming,
		StreamingText: "partial",
		ToolCalls:     []schema.ToolCallState{{ID: "t1"}},
		ContextUsage:  &schema.ContextUsage{UsedPercent: 10},
	}
	state = Reduce(state, schema.StreamEvent{Type: schema.EventSessionReset})
	if !state.Equal(schema.AgentStreamState{}) {
		t.Fatalf("expected zero state after reset, got %+v", state)
	}
}

func TestReduceUnknownEvent(t *testing.T) {
	state := schema.AgentStreamState{Status: schema.StatusThinking, ThinkingText: "x"}
	next := Reduce(state, schema.StreamEvent{Type: "something.new"})
	if !next.Equal(state) {
		t.Fatalf("unknown event changed state")
	}
}

func TestReduceDoesNotShareToolSlices(t *testing.T) {
	orig := schema.AgentStreamState{
		ToolCalls: []schema.ToolCallState{{ID: "t1", Name: "grep"}},
	}
	next := Reduce(orig, schema.StreamEvent{
		Type: schema.EventToolEnd,
		Tool: &schema.ToolEvent{ID: "t1"},
	})
	if orig.ToolCalls[0].IsComplete {
		t.Fatalf("input state mutated through shared slice")
	}
	if !next.ToolCalls[0].IsComplete {
		t.Fatalf("expected completed call in output")
	}
}
