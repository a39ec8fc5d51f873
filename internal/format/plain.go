package format

import (
	"fmt"
	"strings"

	"pkt.systems/flowdeck/schema"
)

// PlainRenderer formats reconciled conversation state as plain text lines.
type PlainRenderer struct{}

// NewPlainRenderer returns a default plain-text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// FormatEntry converts a conversation entry into display lines.
func (p *PlainRenderer) FormatEntry(entry schema.ConversationEntry) []string {
	switch entry.Kind {
	case schema.EntryChat:
		role := string(entry.Role)
		if role == "" {
			role = "agent"
		}
		lines := splitLines(entry.Content)
		if len(lines) == 0 {
			return nil
		}
		out := make([]string, 0, len(lines))
		for i, line := range lines {
			if i == 0 {
				out = append(out, fmt.Sprintf("%s: %s", role, line))
				continue
			}
			out = append(out, strings.Repeat(" ", len(role)+2)+line)
		}
		return out
	case schema.EntrySystem:
		if entry.Content == "" {
			return nil
		}
		return []string{fmt.Sprintf("-- %s", entry.Content)}
	case schema.EntryQA:
		return p.formatQAEntry(entry)
	default:
		return nil
	}
}

// FormatStreamState summarizes the live stream state into display lines.
func (p *PlainRenderer) FormatStreamState(state schema.AgentStreamState) []string {
	var out []string
	out = append(out, fmt.Sprintf("status: %s", statusLabel(state.Status)))
	for _, call := range state.ToolCalls {
		out = append(out, formatToolCall(call))
	}
	if state.StreamingText != "" {
		out = append(out, splitLines(state.StreamingText)...)
	}
	if state.ContextUsage != nil {
		out = append(out, fmt.Sprintf("context: %.0f%% used", state.ContextUsage.UsedPercent))
	}
	return out
}

// FormatQARequest converts a clarification request into display lines.
func (p *PlainRenderer) FormatQARequest(request schema.QARequest) []string {
	out := []string{fmt.Sprintf("question (%s):", request.RequestID)}
	for _, question := range request.Questions {
		out = append(out, fmt.Sprintf("  %s", question.Prompt))
		for _, option := range question.Options {
			out = append(out, fmt.Sprintf("    - %s", option))
		}
	}
	return out
}

func (p *PlainRenderer) formatQAEntry(entry schema.ConversationEntry) []string {
	if entry.QARequest != nil {
		return p.FormatQARequest(*entry.QARequest)
	}
	if entry.QAResponse != nil {
		out := []string{fmt.Sprintf("answer (%s):", entry.QAResponse.RequestID)}
		for _, answer := range entry.QAResponse.Answers {
			out = append(out, fmt.Sprintf("  %s", answer.Value))
		}
		return out
	}
	return nil
}

func formatToolCall(call schema.ToolCallState) string {
	label := call.Name
	if label == "" {
		label = string(call.ID)
	}
	switch {
	case call.IsError:
		return fmt.Sprintf("tool %s failed", label)
	case call.IsComplete:
		return fmt.Sprintf("tool %s done", label)
	default:
		return fmt.Sprintf("tool %s running", label)
	}
}

func statusLabel(status schema.AgentStatus) string {
	if status == "" {
		return string(schema.StatusIdle)
	}
	return string(status)
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
