package schema

import (
	"bytes"
	"encoding/json"
)

// ContextUsage is the last reported share of the context window in use.
type ContextUsage struct {
	UsedPercent float64 `json:"used_percent"`
}

// ToolCallState tracks one in-flight or recently completed tool call.
type ToolCallState struct {
	ID         ToolCallID      `json:"id"`
	Name       string          `json:"name,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     string          `json:"output,omitempty"`
	IsComplete bool            `json:"is_complete,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`
	Result     string          `json:"result,omitempty"`
}

// Equal reports whether two tool call states are identical.
func (t ToolCallState) Equal(other ToolCallState) bool {
	return t.ID == other.ID &&
		t.Name == other.Name &&
		bytes.Equal(t.Input, other.Input) &&
		t.Output == other.Output &&
		t.IsComplete == other.IsComplete &&
		t.IsError == other.IsError &&
		t.Result == other.Result
}

// AgentStreamState is the live view of one conversation's agent run.
// It is replaced wholesale on identity change and on session reset.
type AgentStreamState struct {
	Status        AgentStatus     `json:"status,omitempty"`
	StreamingText string          `json:"streaming_text,omitempty"`
	ThinkingText  string          `json:"thinking_text,omitempty"`
	ToolCalls     []ToolCallState `json:"tool_calls,omitempty"`
	ContextUsage  *ContextUsage   `json:"context_usage,omitempty"`
}

// Active reports whether the agent is busy. Always derived, never stored.
func (s AgentStreamState) Active() bool {
	return s.Status.Busy()
}

// Clone returns a deep copy of the state.
func (s AgentStreamState) Clone() AgentStreamState {
	out := s
	if len(s.ToolCalls) > 0 {
		out.ToolCalls = make([]ToolCallState, len(s.ToolCalls))
		for i, call := range s.ToolCalls {
			out.ToolCalls[i] = call
			out.ToolCalls[i].Input = append(json.RawMessage(nil), call.Input...)
		}
	}
	if s.ContextUsage != nil {
		usage := *s.ContextUsage
		out.ContextUsage = &usage
	}
	return out
}

// Equal reports whether two states are identical.
func (s AgentStreamState) Equal(other AgentStreamState) bool {
	if s.Status != other.Status ||
		s.StreamingText != other.StreamingText ||
		s.ThinkingText != other.ThinkingText {
		return false
	}
	if len(s.ToolCalls) != len(other.ToolCalls) {
		return false
	}
	for i, call := range s.ToolCalls {
		if !call.Equal(other.ToolCalls[i]) {
			return false
		}
	}
	if (s.ContextUsage == nil) != (other.ContextUsage == nil) {
		return false
	}
	if s.ContextUsage != nil && *s.ContextUsage != *other.ContextUsage {
		return false
	}
	return true
}
