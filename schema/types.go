package schema

// WorkspaceID identifies a workspace session.
type WorkspaceID string

// TaskID identifies a conversation identity (a task or planning session).
type TaskID string

// EntryID identifies a persisted conversation entry.
type EntryID string

// ToolCallID identifies a tool invocation within a turn.
type ToolCallID string

// RequestID identifies a clarification request.
type RequestID string
