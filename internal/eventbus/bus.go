package eventbus

import (
	"context"
	"sync"

	"pkt.systems/flowdeck/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventStream carries a reconciled agent stream state change.
	EventStream EventType = "stream"
	// EventEntries carries a merged conversation entry list change.
	EventEntries EventType = "entries"
	// EventQA carries a clarification request lifecycle change.
	EventQA EventType = "qa"
	// EventLoadError carries a failed snapshot load.
	EventLoadError EventType = "load_error"
)

// Event represents a reconciled view update emitted by a session service.
type Event struct {
	Type      EventType
	Stream    schema.StreamStateEvent
	Entries   schema.EntriesEvent
	QA        schema.QAStateEvent
	LoadError schema.LoadErrorEvent
}

// Bus fanouts reconciled view updates to per-workspace subscribers.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.WorkspaceID]map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.WorkspaceID]map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber for the workspace and returns a channel
// plus cancel.
func (b *Bus) Subscribe(workspaceID schema.WorkspaceID) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	workspaceSubs := b.subs[workspaceID]
	if workspaceSubs == nil {
		workspaceSubs = make(map[chan Event]struct{})
		b.subs[workspaceID] = workspaceSubs
	}
	workspaceSubs[ch] = struct{}{}
	count := len(workspaceSubs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.With("workspace", workspaceID).Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		if subs := b.subs[workspaceID]; subs != nil {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(b.subs, workspaceID)
			}
		}
		b.mu.Unlock()
		close(ch)
		if b.log != nil {
			b.log.With("workspace", workspaceID).Debug("eventbus unsubscribe")
		}
	}
}

// OnStreamState implements core.EventSink.
func (b *Bus) OnStreamState(event schema.StreamStateEvent) {
	b.publish(event.WorkspaceID, Event{Type: EventStream, Stream: event})
}

// OnEntries implements core.EventSink.
func (b *Bus) OnEntries(event schema.EntriesEvent) {
	b.publish(event.WorkspaceID, Event{Type: EventEntries, Entries: event})
}

// OnQAState implements core.EventSink.
func (b *Bus) OnQAState(event schema.QAStateEvent) {
	b.publish(event.WorkspaceID, Event{Type: EventQA, QA: event})
}

// OnLoadError implements core.EventSink.
func (b *Bus) OnLoadError(event schema.LoadErrorEvent) {
	b.publish(event.WorkspaceID, Event{Type: EventLoadError, LoadError: event})
}

func (b *Bus) publish(workspaceID schema.WorkspaceID, event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	workspaceSubs := b.subs[workspaceID]
	subs := make([]chan Event, 0, len(workspaceSubs))
	for sub := range workspaceSubs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 && b.log != nil {
		b.log.With("workspace", workspaceID).Trace("eventbus dropped", "count", dropped)
	}
}
