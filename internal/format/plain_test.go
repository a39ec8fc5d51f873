package format

import (
	"testing"

	"pkt.systems/flowdeck/schema"
)

func TestFormatEntryChat(t *testing.T) {
	renderer := NewPlainRenderer()
	lines := renderer.FormatEntry(schema.ConversationEntry{
		Kind:    schema.EntryChat,
		Role:    schema.RoleUser,
		Content: "hello\nworld",
	})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "user: hello" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
}

func TestFormatEntryQARequest(t *testing.T) {
	renderer := NewPlainRenderer()
	lines := renderer.FormatEntry(schema.ConversationEntry{
		Kind: schema.EntryQA,
		QARequest: &schema.QARequest{
			RequestID: "r1",
			Questions: []schema.QAQuestion{
				{ID: "q1", Prompt: "Which database?", Type: schema.QAMultipleChoice, Options: []string{"sqlite", "postgres"}},
			},
		},
	})
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	if lines[1] != "  Which database?" {
		t.Fatalf("unexpected prompt line: %q", lines[1])
	}
}

func TestFormatStreamState(t *testing.T) {
	renderer := NewPlainRenderer()
	lines := renderer.FormatStreamState(schema.AgentStreamState{
		Status: schema.StatusToolUse,
		ToolCalls: []schema.ToolCallState{
			{ID: "t1", Name: "grep", IsComplete: true},
			{ID: "t2", Name: "edit"},
		},
	})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "status: tool_use" {
		t.Fatalf("unexpected status line: %q", lines[0])
	}
	if lines[1] != "tool grep done" || lines[2] != "tool edit running" {
		t.Fatalf("unexpected tool lines: %v", lines[1:])
	}
}
