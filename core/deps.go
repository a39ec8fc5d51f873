package core

import (
	"context"

	"pkt.systems/flowdeck/schema"
	"pkt.systems/pslog"
)

// Backend is the request/response side of the board server: authoritative
// conversation snapshots and the clarification request/response operations.
// The transport behind it is supplied by the embedding application.
type Backend interface {
	// LoadConversation fetches the authoritative snapshot for a task.
	LoadConversation(ctx context.Context, taskID schema.TaskID) (schema.ConversationSnapshot, error)
	// PendingQARequest fetches the open clarification request for a task,
	// or nil when none is pending.
	PendingQARequest(ctx context.Context, taskID schema.TaskID) (*schema.QARequest, error)
	// SubmitQAResponse answers a clarification request.
	SubmitQAResponse(ctx context.Context, taskID schema.TaskID, response schema.QAResponse) error
}

// ServiceDeps captures dependencies for a session service.
type ServiceDeps struct {
	Backend   Backend
	EventSink EventSink
	Logger    pslog.Logger
}
