package schema

import "encoding/json"

// StreamEventType is the top-level type of a push event.
type StreamEventType string

const (
	// EventStatus carries an agent status change.
	EventStatus StreamEventType = "status"
	// EventTextStart indicates streamed message text is starting.
	EventTextStart StreamEventType = "text.start"
	// EventTextDelta carries a streamed message text fragment.
	EventTextDelta StreamEventType = "text.delta"
	// EventTextEnd indicates streamed message text finished.
	EventTextEnd StreamEventType = "text.end"
	// EventThinkingDelta carries a reasoning text fragment.
	EventThinkingDelta StreamEventType = "thinking.delta"
	// EventThinkingEnd indicates reasoning text finished.
	EventThinkingEnd StreamEventType = "thinking.end"
	// EventToolStart indicates a tool call started.
	EventToolStart StreamEventType = "tool.start"
	// EventToolUpdate carries incremental tool output.
	EventToolUpdate StreamEventType = "tool.update"
	// EventToolEnd indicates a tool call finished.
	EventToolEnd StreamEventType = "tool.end"
	// EventTurnEnd indicates a complete agent turn finished.
	EventTurnEnd StreamEventType = "turn.end"
	// EventMessage carries a persisted conversation entry.
	EventMessage StreamEventType = "message"
	// EventQARequest carries a clarification request.
	EventQARequest StreamEventType = "qa.request"
	// EventContextUsage carries a context window usage report.
	EventContextUsage StreamEventType = "context.usage"
	// EventSessionReset indicates the server reset the agent session.
	EventSessionReset StreamEventType = "session.reset"
)

// StreamEvent is the normalized push event shape. Every event is tagged
// with the owning workspace and task identity so routing and stale-identity
// filtering can happen before any state is touched.
type StreamEvent struct {
	Type        StreamEventType    `json:"type"`
	WorkspaceID WorkspaceID        `json:"workspace_id,omitempty"`
	TaskID      TaskID             `json:"task_id,omitempty"`
	Status      AgentStatus        `json:"status,omitempty"`
	Text        string             `json:"text,omitempty"`
	Tool        *ToolEvent         `json:"tool,omitempty"`
	Entry       *ConversationEntry `json:"entry,omitempty"`
	Request     *QARequest         `json:"request,omitempty"`
	Usage       *ContextUsage      `json:"usage,omitempty"`
	Raw         json.RawMessage    `json:"-"`
}

// ToolEvent captures tool call payloads from tool.* events.
type ToolEvent struct {
	ID      ToolCallID      `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	Output  string          `json:"output,omitempty"`
	IsError bool            `json:"is_error,omitempty"`
	Result  string          `json:"result,omitempty"`
}
