package core

import "pkt.systems/flowdeck/schema"

// scope owns all reconciliation state for one conversation identity. A new
// scope replaces the old one wholesale on identity change; nothing carries
// over.
type scope struct {
	taskID      schema.TaskID
	stream      schema.AgentStreamState
	qa          *QALifecycle
	snapshot    []schema.ConversationEntry
	buffered    []schema.ConversationEntry
	bufferedIDs map[schema.EntryID]struct{}
	bufferMax   int
	hydrated    bool
	poller      *Poller
}

func newScope(taskID schema.TaskID, bufferMax int) *scope {
	return &scope{
		taskID:      taskID,
		qa:          NewQALifecycle(),
		bufferedIDs: make(map[schema.EntryID]struct{}),
		bufferMax:   bufferMax,
	}
}

// bufferEntry records a push-delivered entry for merging. Duplicates of
// already buffered or snapshot entries are dropped. Reports whether the
// merged entry list changed.
func (s *scope) bufferEntry(entry schema.ConversationEntry) bool {
	if entry.ID == "" {
		return false
	}
	if _, ok := s.bufferedIDs[entry.ID]; ok {
		return false
	}
	for _, existing := range s.snapshot {
		if existing.ID == entry.ID {
			return false
		}
	}
	s.bufferedIDs[entry.ID] = struct{}{}
	s.buffered = append(s.buffered, entry)
	if s.bufferMax > 0 && len(s.buffered) > s.bufferMax {
		trim := len(s.buffered) - s.bufferMax
		for _, dropped := range s.buffered[:trim] {
			delete(s.bufferedIDs, dropped.ID)
		}
		s.buffered = s.buffered[trim:]
	}
	return true
}

// entries returns the merged, ordered entry list.
func (s *scope) entries() []schema.ConversationEntry {
	return MergeEntries(s.snapshot, s.buffered)
}
