package core

import (
	"encoding/json"

	"pkt.systems/flowdeck/schema"
)

// Reduce folds one push event onto an agent stream state. It is pure and
// total: an event the reducer does not recognize returns the state
// unchanged. Events must already be filtered to the owning task identity
// by the caller; the reducer itself is identity-agnostic.
func Reduce(state schema.AgentStreamState, event schema.StreamEvent) schema.AgentStreamState {
	switch event.Type {
	case schema.EventStatus:
		if event.Status == "" {
			return state
		}
		state.Status = event.Status
		return state
	case schema.EventTextStart:
		state.StreamingText = ""
		state.ThinkingText = ""
		state.Status = schema.StatusStreaming
		return state
	case schema.EventTextDelta:
		state.StreamingText += event.Text
		return state
	case schema.EventTextEnd:
		// Status is left alone: the agent may continue with further tool
		// calls or turns, and resetting it here flickers the view to idle.
		state.StreamingText = ""
		return state
	case schema.EventThinkingDelta:
		state.ThinkingText += event.Text
		state.Status = schema.StatusThinking
		return state
	case schema.EventThinkingEnd:
		state.ThinkingText = ""
		return state
	case schema.EventToolStart:
		if event.Tool == nil || event.Tool.ID == "" {
			return state
		}
		calls := cloneToolCalls(state.ToolCalls)
		calls = append(calls, schema.ToolCallState{
			ID:    event.Tool.ID,
			Name:  event.Tool.Name,
			Input: append(json.RawMessage(nil), event.Tool.Input...),
		})
		state.ToolCalls = calls
		state.Status = schema.StatusToolUse
		return state
	case schema.EventToolUpdate:
		if event.Tool == nil || event.Tool.Output == "" {
			return state
		}
		index := findToolCall(state.ToolCalls, event.Tool.ID)
		if index < 0 {
			// Update for an unknown or expired tool call id.
			return state
		}
		calls := cloneToolCalls(state.ToolCalls)
		calls[index].Output += event.Tool.Output
		state.ToolCalls = calls
		return state
	case schema.EventToolEnd:
		if event.Tool == nil {
			return state
		}
		index := findToolCall(state.ToolCalls, event.Tool.ID)
		if index < 0 {
			return state
		}
		calls := cloneToolCalls(state.ToolCalls)
		calls[index].IsComplete = true
		calls[index].IsError = event.Tool.IsError
		calls[index].Result = event.Tool.Result
		state.ToolCalls = calls
		return state
	case schema.EventTurnEnd:
		// The turn's tool calls are persisted elsewhere by now and must
		// not double-render.
		state.ToolCalls = nil
		return state
	case schema.EventContextUsage:
		if event.Usage == nil {
			return state
		}
		usage := *event.Usage
		state.ContextUsage = &usage
		return state
	case schema.EventSessionReset:
		return schema.AgentStreamState{}
	default:
		return state
	}
}

func findToolCall(calls []schema.ToolCallState, id schema.ToolCallID) int {
	if id == "" {
		return -1
	}
	for i, call := range calls {
		if call.ID == id {
			return i
		}
	}
	return -1
}

func cloneToolCalls(calls []schema.ToolCallState) []schema.ToolCallState {
	if len(calls) == 0 {
		return nil
	}
	out := make([]schema.ToolCallState, len(calls))
	copy(out, calls)
	return out
}
