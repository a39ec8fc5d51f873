// Package flowdeck reconciles unreliable push-event streams with
// authoritative snapshots into a consistent per-conversation view: the live
// agent stream state, the merged entry list, and the clarification request
// lifecycle.
package flowdeck

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/flowdeck/core"
	"pkt.systems/flowdeck/internal/eventbus"
	"pkt.systems/flowdeck/schema"
	"pkt.systems/pslog"
)

// Engine owns one session service per workspace and fans reconciled view
// updates out to subscribers.
type Engine interface {
	// OpenSession returns the session for the workspace, creating it on
	// first use.
	OpenSession(ctx context.Context, workspaceID schema.WorkspaceID) (core.Service, error)
	// Session returns an already open session, if any.
	Session(workspaceID schema.WorkspaceID) (core.Service, bool)
	// CloseSession tears down the workspace's session. Reports whether a
	// session existed.
	CloseSession(workspaceID schema.WorkspaceID) bool
	// Subscribe delivers reconciled view updates for the workspace until
	// cancel is called.
	Subscribe(workspaceID schema.WorkspaceID) (<-chan eventbus.Event, func())
	// Close tears down every session and the engine itself.
	Close()
}

// Config configures the engine.
type Config struct {
	Engine schema.EngineConfig
}

// Deps captures the engine's external dependencies.
type Deps struct {
	// Backend serves authoritative snapshots, the pending-request poll
	// endpoint, and response submission.
	Backend core.Backend
	// EventSink optionally receives every reconciled update in addition to
	// bus subscribers.
	EventSink core.EventSink
	// Logger is optional; a context logger is used when nil.
	Logger pslog.Logger
}

type engine struct {
	cfg      schema.EngineConfig
	backend  core.Backend
	extra    core.EventSink
	bus      *eventbus.Bus
	logger   pslog.Logger
	registry *core.Registry

	mu     sync.Mutex
	closed bool
}

// New constructs an engine.
func New(cfg Config, deps Deps) (Engine, error) {
	if deps.Backend == nil {
		return nil, errors.New("backend dependency is required")
	}
	normalized, err := schema.NormalizeEngineConfig(cfg.Engine)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &engine{
		cfg:      normalized,
		backend:  deps.Backend,
		extra:    deps.EventSink,
		bus:      eventbus.New(logger),
		logger:   logger,
		registry: core.NewRegistry(),
	}, nil
}

func (e *engine) OpenSession(ctx context.Context, workspaceID schema.WorkspaceID) (core.Service, error) {
	if ctx == nil {
		return nil, errors.New("missing context")
	}
	if err := schema.ValidateWorkspaceID(workspaceID); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, schema.ErrSessionClosed
	}
	if svc, ok := e.registry.Get(workspaceID); ok {
		return svc, nil
	}
	sink := e.sink()
	svc, err := core.NewService(workspaceID, e.cfg, core.ServiceDeps{
		Backend:   e.backend,
		EventSink: sink,
		Logger:    e.logger,
	})
	if err != nil {
		return nil, err
	}
	if prev, ok := e.registry.Put(workspaceID, svc); ok && prev != nil {
		prev.Close()
	}
	e.logger.With("workspace", workspaceID).Info("engine session opened")
	return svc, nil
}

func (e *engine) Session(workspaceID schema.WorkspaceID) (core.Service, bool) {
	return e.registry.Get(workspaceID)
}

func (e *engine) CloseSession(workspaceID schema.WorkspaceID) bool {
	svc, ok := e.registry.Remove(workspaceID)
	if !ok {
		return false
	}
	svc.Close()
	e.logger.With("workspace", workspaceID).Info("engine session closed")
	return true
}

func (e *engine) Subscribe(workspaceID schema.WorkspaceID) (<-chan eventbus.Event, func()) {
	return e.bus.Subscribe(workspaceID)
}

func (e *engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()
	for _, svc := range e.registry.Drain() {
		svc.Close()
	}
	e.logger.Info("engine closed")
}

func (e *engine) sink() core.EventSink {
	if e.extra == nil {
		return e.bus
	}
	return eventFanout{sinks: []core.EventSink{e.extra, e.bus}}
}
