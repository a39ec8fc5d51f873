package schema

// AgentStatus describes the current state of an agent run.
type AgentStatus string

const (
	// StatusIdle indicates no agent run is in progress.
	StatusIdle AgentStatus = "idle"
	// StatusStreaming indicates the agent is streaming message text.
	StatusStreaming AgentStatus = "streaming"
	// StatusThinking indicates the agent is streaming reasoning text.
	StatusThinking AgentStatus = "thinking"
	// StatusToolUse indicates the agent is executing a tool call.
	StatusToolUse AgentStatus = "tool_use"
	// StatusPostHooks indicates post-turn hooks are running.
	StatusPostHooks AgentStatus = "post_hooks"
	// StatusAwaitingInput indicates the agent is waiting for the next prompt.
	StatusAwaitingInput AgentStatus = "awaiting_input"
	// StatusAwaitingQA indicates the agent is blocked on a clarification request.
	StatusAwaitingQA AgentStatus = "awaiting_qa"
	// StatusCompleted indicates the agent run finished.
	StatusCompleted AgentStatus = "completed"
	// StatusError indicates the agent run failed.
	StatusError AgentStatus = "error"
)

// Busy reports whether the status counts as working. awaiting_qa is
// paused for the user, not working.
func (s AgentStatus) Busy() bool {
	switch s {
	case StatusIdle, StatusCompleted, StatusError, StatusAwaitingQA, "":
		return false
	}
	return true
}
