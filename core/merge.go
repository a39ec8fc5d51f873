package core

import (
	"sort"

	"pkt.systems/flowdeck/schema"
)

// MergeEntries merges an authoritative snapshot with push-buffered entries.
// The snapshot is the base truth for every id it contains; buffered entries
// fill the gaps on either side of the snapshot request. The result is
// ordered by timestamp ascending, with insertion order preserved for
// entries whose timestamps are equal or missing. Re-running with the same
// inputs yields the same output.
func MergeEntries(authoritative, buffered []schema.ConversationEntry) []schema.ConversationEntry {
	merged := make([]schema.ConversationEntry, 0, len(authoritative)+len(buffered))
	seen := make(map[schema.EntryID]struct{}, len(authoritative)+len(buffered))
	for _, entry := range authoritative {
		if entry.ID == "" {
			continue
		}
		if _, ok := seen[entry.ID]; ok {
			continue
		}
		seen[entry.ID] = struct{}{}
		merged = append(merged, entry)
	}
	for _, entry := range buffered {
		if entry.ID == "" {
			continue
		}
		if _, ok := seen[entry.ID]; ok {
			continue
		}
		seen[entry.ID] = struct{}{}
		merged = append(merged, entry)
	}
	sortEntries(merged)
	return merged
}

func sortEntries(entries []schema.ConversationEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Timestamp, entries[j].Timestamp
		if a.IsZero() || b.IsZero() {
			return false
		}
		return a.Before(b)
	})
}
