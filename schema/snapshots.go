package schema

// ConversationSnapshot is an authoritative point-in-time view of one
// conversation, fetched over request/response rather than push.
type ConversationSnapshot struct {
	TaskID       TaskID              `json:"task_id"`
	Entries      []ConversationEntry `json:"entries,omitempty"`
	Status       AgentStatus         `json:"status,omitempty"`
	ContextUsage *ContextUsage       `json:"context_usage,omitempty"`
}

// StreamStateEvent reports a reconciled agent stream state change.
type StreamStateEvent struct {
	WorkspaceID WorkspaceID
	TaskID      TaskID
	State       AgentStreamState
	Active      bool
}

// EntriesEvent reports a change to the merged conversation entry list.
type EntriesEvent struct {
	WorkspaceID WorkspaceID
	TaskID      TaskID
	Entries     []ConversationEntry
}

// QAStateEvent reports a change to the active clarification request.
// Request is nil when no request is open.
type QAStateEvent struct {
	WorkspaceID WorkspaceID
	TaskID      TaskID
	Request     *QARequest
}

// LoadErrorEvent reports a failed conversation snapshot load. The
// conversation stays in its pre-load state until a later load succeeds.
type LoadErrorEvent struct {
	WorkspaceID WorkspaceID
	TaskID      TaskID
	Err         error
}
