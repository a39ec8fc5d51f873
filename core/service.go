package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"pkt.systems/flowdeck/internal/logx"
	"pkt.systems/flowdeck/schema"
	"pkt.systems/pslog"
)

// Service reconciles push events and HTTP snapshots into one consistent
// view of a workspace's active conversation: the live agent stream state,
// the merged entry list, and the clarification request lifecycle.
type Service interface {
	// SelectTask switches the active conversation identity. All state for
	// the previous identity is torn down and a fresh snapshot load begins.
	SelectTask(ctx context.Context, taskID schema.TaskID) error
	// HandleEvent applies one push event. Events for a stale identity are
	// discarded.
	HandleEvent(ctx context.Context, event schema.StreamEvent)
	// SubmitQAResponse answers the clarification request and optimistically
	// resolves it ahead of the server echo.
	SubmitQAResponse(ctx context.Context, response schema.QAResponse) error
	// ResolveQARequestLocally marks a request resolved without a server
	// round trip. Reports whether the lifecycle state changed.
	ResolveQARequestLocally(requestID schema.RequestID) bool
	// StreamState returns a copy of the reconciled agent stream state.
	StreamState() schema.AgentStreamState
	// Entries returns the merged, ordered conversation entry list.
	Entries() []schema.ConversationEntry
	// ActiveQARequest returns the open clarification request, or nil.
	ActiveQARequest() *schema.QARequest
	// TaskID returns the active conversation identity, or empty.
	TaskID() schema.TaskID
	// Close tears the session down. The service is unusable afterwards.
	Close()
}

// service implements Service for one workspace.
type service struct {
	cfg       schema.EngineConfig
	workspace schema.WorkspaceID
	backend   Backend
	sink      EventSink
	logger    pslog.Logger

	mu      sync.Mutex
	current *scope
	closed  bool
}

// NewService constructs a session service for a workspace.
func NewService(workspaceID schema.WorkspaceID, cfg schema.EngineConfig, deps ServiceDeps) (Service, error) {
	if err := schema.ValidateWorkspaceID(workspaceID); err != nil {
		return nil, err
	}
	normalized, err := schema.NormalizeEngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	if deps.Backend == nil {
		return nil, errors.New("backend dependency is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	logger = logger.With("workspace", workspaceID)
	return &service{
		cfg:       normalized,
		workspace: workspaceID,
		backend:   deps.Backend,
		sink:      deps.EventSink,
		logger:    logger,
	}, nil
}

func (s *service) SelectTask(ctx context.Context, taskID schema.TaskID) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	if err := schema.ValidateTaskID(taskID); err != nil {
		return err
	}
	log := s.logger.With("task", taskID)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return schema.ErrSessionClosed
	}
	if s.current != nil && s.current.taskID == taskID {
		s.mu.Unlock()
		log.Debug("service task reselect ignored")
		return nil
	}
	prev := s.current
	sc := newScope(taskID, s.cfg.EntryBufferMax)
	s.current = sc
	s.mu.Unlock()

	if prev != nil {
		prev.poller.Stop()
		log.Debug("service task state discarded", "previous", prev.taskID)
	}
	log.Info("service task selected")
	s.emitStreamState(taskID, schema.AgentStreamState{})
	s.emitEntries(taskID, nil)
	s.emitQAState(taskID, nil)

	ctx = logx.ContextWithWorkspaceTaskLogger(ctx, log, s.workspace, taskID)
	go s.loadSnapshot(ctx, taskID)
	return nil
}

// loadSnapshot fetches the authoritative snapshot and applies it, unless
// the identity changed while the request was in flight. Late responses are
// discarded instead of cancelled, since the transport may not support
// cancellation.
func (s *service) loadSnapshot(ctx context.Context, taskID schema.TaskID) {
	log := logx.WithWorkspaceTask(ctx, s.workspace, taskID)
	snapshot, err := s.backend.LoadConversation(ctx, taskID)

	s.mu.Lock()
	sc := s.current
	if s.closed || sc == nil || sc.taskID != taskID {
		s.mu.Unlock()
		log.Debug("service snapshot discarded", "reason", "stale identity")
		return
	}
	if err != nil {
		s.mu.Unlock()
		log.Warn("service snapshot load failed", "err", err)
		s.emitLoadError(taskID, err)
		return
	}
	sc.snapshot = append([]schema.ConversationEntry(nil), snapshot.Entries...)
	sc.hydrated = true
	qaChanged := false
	for _, entry := range snapshot.Entries {
		if sc.qa.ObserveEntry(entry) {
			qaChanged = true
		}
	}
	streamChanged := false
	if snapshot.Status != "" {
		sc.stream.Status = snapshot.Status
		streamChanged = true
		if sc.qa.ObserveStatus(snapshot.Status) {
			qaChanged = true
		}
	}
	if snapshot.ContextUsage != nil {
		usage := *snapshot.ContextUsage
		sc.stream.ContextUsage = &usage
		streamChanged = true
	}
	stream := sc.stream.Clone()
	entries := sc.entries()
	active := sc.qa.Active()
	needPoll := snapshot.Status == schema.StatusAwaitingQA && active == nil
	s.mu.Unlock()

	log.Info("service snapshot loaded", "entries", len(entries), "status", snapshot.Status)
	s.emitEntries(taskID, entries)
	if streamChanged {
		s.emitStreamState(taskID, stream)
	}
	if qaChanged {
		s.emitQAState(taskID, active)
	}
	if needPoll {
		// Last known status is awaiting_qa but no request is known
		// locally; the qa.request push was likely missed.
		s.startPoller(taskID)
	}
}

func (s *service) HandleEvent(ctx context.Context, event schema.StreamEvent) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logx.WithWorkspaceTask(ctx, s.workspace, event.TaskID)

	s.mu.Lock()
	sc := s.current
	if s.closed || sc == nil || event.TaskID != sc.taskID {
		s.mu.Unlock()
		log.Trace("service event discarded", "type", event.Type, "reason", "stale identity")
		return
	}
	taskID := sc.taskID
	var streamChanged, entriesChanged, qaChanged, startPoll, stopPoll bool
	switch event.Type {
	case schema.EventMessage:
		if event.Entry != nil {
			if sc.bufferEntry(*event.Entry) {
				entriesChanged = true
			}
			if sc.qa.ObserveEntry(*event.Entry) {
				qaChanged = true
			}
		}
	case schema.EventQARequest:
		if event.Request != nil && sc.qa.ObserveRequest(*event.Request) {
			qaChanged = true
		}
	default:
		next := Reduce(sc.stream, event)
		if !next.Equal(sc.stream) {
			sc.stream = next
			streamChanged = true
		}
	}
	switch event.Type {
	case schema.EventStatus:
		if sc.qa.ObserveStatus(event.Status) {
			qaChanged = true
		}
	case schema.EventToolStart:
		if event.Tool != nil && event.Tool.Name == s.cfg.QAToolName {
			startPoll = true
		}
	case schema.EventSessionReset:
		stopPoll = true
		if sc.qa.Abandon() {
			qaChanged = true
		}
	}
	if sc.qa.Active() != nil && sc.poller.Running() {
		stopPoll = true
	}
	stream := sc.stream.Clone()
	var entries []schema.ConversationEntry
	if entriesChanged {
		entries = sc.entries()
	}
	active := sc.qa.Active()
	poller := sc.poller
	s.mu.Unlock()

	if stopPoll {
		poller.Stop()
	}
	if streamChanged {
		s.emitStreamState(taskID, stream)
	}
	if entriesChanged {
		s.emitEntries(taskID, entries)
	}
	if qaChanged {
		s.emitQAState(taskID, active)
	}
	if startPoll {
		s.startPoller(taskID)
	}
}

func (s *service) SubmitQAResponse(ctx context.Context, response schema.QAResponse) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	if response.RequestID == "" {
		return schema.ErrInvalidRequest
	}
	s.mu.Lock()
	sc := s.current
	if s.closed {
		s.mu.Unlock()
		return schema.ErrSessionClosed
	}
	if sc == nil {
		s.mu.Unlock()
		return schema.ErrNoActiveTask
	}
	taskID := sc.taskID
	s.mu.Unlock()

	log := logx.WithRequest(s.logger.With("task", taskID), response.RequestID)
	if err := s.backend.SubmitQAResponse(ctx, taskID, response); err != nil {
		log.Warn("service qa submit failed", "err", err)
		return err
	}
	log.Info("service qa submit ok")
	// Resolve ahead of the server echo through the same entry-observed
	// path, so the echo arrives as a duplicate.
	s.observeLocalResolution(taskID, response.RequestID)
	return nil
}

func (s *service) ResolveQARequestLocally(requestID schema.RequestID) bool {
	if requestID == "" {
		return false
	}
	s.mu.Lock()
	sc := s.current
	if s.closed || sc == nil {
		s.mu.Unlock()
		return false
	}
	taskID := sc.taskID
	s.mu.Unlock()
	return s.observeLocalResolution(taskID, requestID)
}

// observeLocalResolution feeds a synthetic response entry through the QA
// lifecycle. The entry is not buffered into the merged list; the server
// echo carries the canonical entry.
func (s *service) observeLocalResolution(taskID schema.TaskID, requestID schema.RequestID) bool {
	entry := schema.ConversationEntry{
		ID:         schema.EntryID(newID()),
		Kind:       schema.EntryQA,
		Timestamp:  time.Now().UTC(),
		QAResponse: &schema.QAResponse{RequestID: requestID},
	}
	s.mu.Lock()
	sc := s.current
	if s.closed || sc == nil || sc.taskID != taskID {
		s.mu.Unlock()
		return false
	}
	changed := sc.qa.ObserveEntry(entry)
	active := sc.qa.Active()
	poller := sc.poller
	s.mu.Unlock()
	if changed {
		logx.WithRequest(s.logger.With("task", taskID), requestID).Debug("service qa resolved locally")
		poller.Stop()
		s.emitQAState(taskID, active)
	}
	return changed
}

// pollTick runs one recovery poll. It reports whether polling should stop:
// the identity went stale, a request is already known, or the endpoint
// returned one (open or already resolved). Transport failures are internal
// and retried on the next tick.
func (s *service) pollTick(ctx context.Context, taskID schema.TaskID) bool {
	s.mu.Lock()
	sc := s.current
	if s.closed || sc == nil || sc.taskID != taskID {
		s.mu.Unlock()
		return true
	}
	if sc.qa.Active() != nil {
		s.mu.Unlock()
		return true
	}
	s.mu.Unlock()

	log := s.logger.With("task", taskID)
	request, err := s.backend.PendingQARequest(ctx, taskID)
	if err != nil {
		log.Debug("service qa poll failed", "err", err)
		return false
	}
	if request == nil {
		return false
	}

	s.mu.Lock()
	sc = s.current
	if s.closed || sc == nil || sc.taskID != taskID {
		s.mu.Unlock()
		return true
	}
	changed := sc.qa.ObserveRequest(*request)
	active := sc.qa.Active()
	s.mu.Unlock()
	if changed {
		logx.WithRequest(log, request.RequestID).Info("service qa request recovered by poll")
		s.emitQAState(taskID, active)
	}
	return true
}

func (s *service) startPoller(taskID schema.TaskID) {
	s.mu.Lock()
	sc := s.current
	if s.closed || sc == nil || sc.taskID != taskID {
		s.mu.Unlock()
		return
	}
	if sc.poller == nil {
		sc.poller = newPoller(s.cfg.PollInterval, s.logger.With("task", taskID), func(ctx context.Context) bool {
			return s.pollTick(ctx, taskID)
		})
	}
	poller := sc.poller
	s.mu.Unlock()
	poller.Start(pslog.ContextWithLogger(context.Background(), s.logger))
}

func (s *service) StreamState() schema.AgentStreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return schema.AgentStreamState{}
	}
	return s.current.stream.Clone()
}

func (s *service) Entries() []schema.ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.entries()
}

func (s *service) ActiveQARequest() *schema.QARequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.qa.Active()
}

func (s *service) TaskID() schema.TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.taskID
}

func (s *service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sc := s.current
	s.current = nil
	s.mu.Unlock()
	if sc != nil {
		sc.poller.Stop()
	}
	s.logger.Info("service closed")
}

func (s *service) emitStreamState(taskID schema.TaskID, state schema.AgentStreamState) {
	if s.sink == nil {
		return
	}
	s.sink.OnStreamState(schema.StreamStateEvent{
		WorkspaceID: s.workspace,
		TaskID:      taskID,
		State:       state,
		Active:      state.Active(),
	})
}

func (s *service) emitEntries(taskID schema.TaskID, entries []schema.ConversationEntry) {
	if s.sink == nil {
		return
	}
	s.sink.OnEntries(schema.EntriesEvent{
		WorkspaceID: s.workspace,
		TaskID:      taskID,
		Entries:     entries,
	})
}

func (s *service) emitQAState(taskID schema.TaskID, request *schema.QARequest) {
	if s.sink == nil {
		return
	}
	s.sink.OnQAState(schema.QAStateEvent{
		WorkspaceID: s.workspace,
		TaskID:      taskID,
		Request:     request,
	})
}

func (s *service) emitLoadError(taskID schema.TaskID, err error) {
	if s.sink == nil {
		return
	}
	s.sink.OnLoadError(schema.LoadErrorEvent{
		WorkspaceID: s.workspace,
		TaskID:      taskID,
		Err:         err,
	})
}
