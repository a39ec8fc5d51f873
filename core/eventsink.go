package core

import "pkt.systems/flowdeck/schema"

// EventSink receives reconciled view updates from a session service.
type EventSink interface {
	OnStreamState(event schema.StreamStateEvent)
	OnEntries(event schema.EntriesEvent)
	OnQAState(event schema.QAStateEvent)
	OnLoadError(event schema.LoadErrorEvent)
}
