package core

import "pkt.systems/flowdeck/schema"

// QALifecycle tracks at most one outstanding clarification request for a
// single conversation identity. A request can be observed through a push
// event, a push-delivered message, or an HTTP poll; the monotonic resolved
// set guarantees it closes exactly once no matter which channel reports
// first, and that a stale duplicate never reopens a closed request.
type QALifecycle struct {
	active     *schema.QARequest
	lastStatus schema.AgentStatus
	resolved   map[schema.RequestID]struct{}
}

// NewQALifecycle returns a closed lifecycle with an empty resolved set.
func NewQALifecycle() *QALifecycle {
	return &QALifecycle{resolved: make(map[schema.RequestID]struct{})}
}

// Active returns a copy of the open request, or nil when closed.
func (l *QALifecycle) Active() *schema.QARequest {
	if l.active == nil {
		return nil
	}
	request := l.active.Clone()
	return &request
}

// Resolved reports whether the request id has ever closed. Resolved ids
// never leave the set for the lifetime of the conversation identity.
func (l *QALifecycle) Resolved(id schema.RequestID) bool {
	_, ok := l.resolved[id]
	return ok
}

// ObserveRequest applies a request sighting from any channel. A request
// whose id has already resolved never reopens. Reports whether the active
// request changed.
func (l *QALifecycle) ObserveRequest(request schema.QARequest) bool {
	if request.RequestID == "" {
		return false
	}
	if l.Resolved(request.RequestID) {
		return false
	}
	if l.active != nil && l.active.RequestID == request.RequestID {
		return false
	}
	clone := request.Clone()
	l.active = &clone
	return true
}

// ObserveEntry inspects a conversation entry for clarification metadata:
// a request payload opens the lifecycle, a response payload resolves it.
// Reports whether the lifecycle state changed.
func (l *QALifecycle) ObserveEntry(entry schema.ConversationEntry) bool {
	if entry.QAResponse != nil {
		return l.resolve(entry.QAResponse.RequestID)
	}
	if entry.QARequest != nil {
		return l.ObserveRequest(*entry.QARequest)
	}
	return false
}

// ObserveStatus clears a request that was abandoned rather than answered:
// the agent left awaiting_qa without a matching response, for example after
// a forced stop. Abandoned ids are not marked resolved, so an identical
// request id may legitimately reopen later. Reports whether the active
// request changed.
func (l *QALifecycle) ObserveStatus(status schema.AgentStatus) bool {
	prev := l.lastStatus
	l.lastStatus = status
	if prev == schema.StatusAwaitingQA && status != schema.StatusAwaitingQA && l.active != nil {
		l.active = nil
		return true
	}
	return false
}

// Abandon clears the active request without resolving it.
func (l *QALifecycle) Abandon() bool {
	if l.active == nil {
		return false
	}
	l.active = nil
	return true
}

func (l *QALifecycle) resolve(id schema.RequestID) bool {
	if id == "" {
		return false
	}
	changed := false
	if _, ok := l.resolved[id]; !ok {
		l.resolved[id] = struct{}{}
		changed = true
	}
	if l.active != nil && l.active.RequestID == id {
		l.active = nil
		changed = true
	}
	return changed
}
