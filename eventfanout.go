package flowdeck

import (
	"pkt.systems/flowdeck/core"
	"pkt.systems/flowdeck/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnStreamState(event schema.StreamStateEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnStreamState(event)
	}
}

func (f eventFanout) OnEntries(event schema.EntriesEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnEntries(event)
	}
}

func (f eventFanout) OnQAState(event schema.QAStateEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnQAState(event)
	}
}

func (f eventFanout) OnLoadError(event schema.LoadErrorEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnLoadError(event)
	}
}
