package core

import (
	"sync"

	"pkt.systems/flowdeck/schema"
)

// Registry owns one session service per workspace. It replaces the
// process-global callback table of earlier designs: created when the
// engine starts, torn down with it, so nothing leaks across sessions in a
// long-lived server process.
type Registry struct {
	mu       sync.Mutex
	sessions map[schema.WorkspaceID]Service
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[schema.WorkspaceID]Service)}
}

// Get returns the session for the workspace, if one exists.
func (r *Registry) Get(workspaceID schema.WorkspaceID) (Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.sessions[workspaceID]
	return svc, ok
}

// Put stores a session for the workspace, replacing any previous one.
// The replaced session, if any, is returned so the caller can close it.
func (r *Registry) Put(workspaceID schema.WorkspaceID, svc Service) (Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.sessions[workspaceID]
	r.sessions[workspaceID] = svc
	return prev, ok
}

// Remove deletes and returns the session for the workspace.
func (r *Registry) Remove(workspaceID schema.WorkspaceID) (Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.sessions[workspaceID]
	if ok {
		delete(r.sessions, workspaceID)
	}
	return svc, ok
}

// Drain removes and returns all sessions.
func (r *Registry) Drain() []Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Service, 0, len(r.sessions))
	for id, svc := range r.sessions {
		out = append(out, svc)
		delete(r.sessions, id)
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
