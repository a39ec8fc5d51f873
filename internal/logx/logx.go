package logx

import (
	"context"

	"pkt.systems/flowdeck/schema"
	"pkt.systems/pslog"
)

type contextKey int

const (
	workspaceKey contextKey = iota
	taskKey
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithWorkspace annotates the logger with the workspace id if present.
func WithWorkspace(ctx context.Context, workspaceID schema.WorkspaceID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if workspaceID != "" {
		if current, ok := ctx.Value(workspaceKey).(schema.WorkspaceID); ok && current == workspaceID {
			return log
		}
		log = log.With("workspace", workspaceID)
	}
	return log
}

// WithWorkspaceTask annotates the logger with workspace and task identifiers.
func WithWorkspaceTask(ctx context.Context, workspaceID schema.WorkspaceID, taskID schema.TaskID) pslog.Logger {
	log := WithWorkspace(ctx, workspaceID)
	if taskID != "" {
		if current, ok := ctx.Value(taskKey).(schema.TaskID); ok && current == taskID {
			return log
		}
		log = log.With("task", taskID)
	}
	return log
}

// WithRequest annotates the logger with a clarification request id when available.
func WithRequest(log pslog.Logger, requestID schema.RequestID) pslog.Logger {
	if requestID != "" {
		log = log.With("request", requestID)
	}
	return log
}

// ContextWithWorkspace stores the workspace marker on the context for log
// de-duplication.
func ContextWithWorkspace(ctx context.Context, workspaceID schema.WorkspaceID) context.Context {
	if ctx == nil || workspaceID == "" {
		return ctx
	}
	return context.WithValue(ctx, workspaceKey, workspaceID)
}

// ContextWithTask stores the task marker on the context for log de-duplication.
func ContextWithTask(ctx context.Context, taskID schema.TaskID) context.Context {
	if ctx == nil || taskID == "" {
		return ctx
	}
	return context.WithValue(ctx, taskKey, taskID)
}

// ContextWithWorkspaceTask stores workspace/task markers on the context.
func ContextWithWorkspaceTask(ctx context.Context, workspaceID schema.WorkspaceID, taskID schema.TaskID) context.Context {
	return ContextWithTask(ContextWithWorkspace(ctx, workspaceID), taskID)
}

// ContextWithWorkspaceTaskLogger attaches the logger and workspace/task
// markers to the context.
func ContextWithWorkspaceTaskLogger(ctx context.Context, log pslog.Logger, workspaceID schema.WorkspaceID, taskID schema.TaskID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithWorkspaceTask(ctx, workspaceID, taskID)
}
