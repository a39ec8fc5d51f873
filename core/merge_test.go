package core

import (
	"testing"
	"time"

	"pkt.systems/flowdeck/schema"
)

func chatEntry(id schema.EntryID, content string, ts time.Time) schema.ConversationEntry {
	return schema.ConversationEntry{
		ID:        id,
		Kind:      schema.EntryChat,
		Role:      schema.RoleAgent,
		Content:   content,
		Timestamp: ts,
	}
}

func entryIDs(entries []schema.ConversationEntry) []schema.EntryID {
	out := make([]schema.EntryID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestMergeEntriesDeduplicates(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snapshot := []schema.ConversationEntry{
		chatEntry("e1", "one", base),
		chatEntry("e2", "two", base.Add(time.Second)),
	}
	buffered := []schema.ConversationEntry{
		chatEntry("e2", "two again", base.Add(time.Second)),
		chatEntry("e3", "three", base.Add(2*time.Second)),
	}
	merged := MergeEntries(snapshot, buffered)
	if len(merged) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(merged), entryIDs(merged))
	}
	// The snapshot copy wins for a shared id.
	if merged[1].Content != "two" {
		t.Fatalf("expected snapshot copy to win, got %q", merged[1].Content)
	}
}

func TestMergeEntriesOrdersByTimestamp(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snapshot := []schema.ConversationEntry{
		chatEntry("e3", "late", base.Add(5*time.Second)),
	}
	buffered := []schema.ConversationEntry{
		chatEntry("e1", "early", base),
	}
	merged := MergeEntries(snapshot, buffered)
	want := []schema.EntryID{"e1", "e3"}
	got := entryIDs(merged)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestMergeEntriesKeepsInsertionOrderForMissingTimestamps(t *testing.T) {
	snapshot := []schema.ConversationEntry{
		chatEntry("e1", "a", time.Time{}),
		chatEntry("e2", "b", time.Time{}),
	}
	buffered := []schema.ConversationEntry{
		chatEntry("e3", "c", time.Time{}),
	}
	merged := MergeEntries(snapshot, buffered)
	got := entryIDs(merged)
	if got[0] != "e1" || got[1] != "e2" || got[2] != "e3" {
		t.Fatalf("unexpected order for zero timestamps: %v", got)
	}
}

func TestMergeEntriesEqualTimestampsStable(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snapshot := []schema.ConversationEntry{
		chatEntry("e1", "a", ts),
		chatEntry("e2", "b", ts),
	}
	merged := MergeEntries(snapshot, nil)
	got := entryIDs(merged)
	if got[0] != "e1" || got[1] != "e2" {
		t.Fatalf("equal timestamps reordered: %v", got)
	}
}

func TestMergeEntriesIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snapshot := []schema.ConversationEntry{
		chatEntry("e2", "two", base.Add(time.Second)),
		chatEntry("e1", "one", base),
	}
	buffered := []schema.ConversationEntry{
		chatEntry("e3", "three", base.Add(2*time.Second)),
	}
	first := MergeEntries(snapshot, buffered)
	second := MergeEntries(snapshot, buffered)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("order differs at %d: %v vs %v", i, entryIDs(first), entryIDs(second))
		}
	}
}

func TestMergeEntriesSnapshotOnly(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snapshot := []schema.ConversationEntry{
		chatEntry("e2", "two", base.Add(time.Second)),
		chatEntry("e1", "one", base),
	}
	merged := MergeEntries(snapshot, nil)
	got := entryIDs(merged)
	if len(got) != 2 || got[0] != "e1" || got[1] != "e2" {
		t.Fatalf("expected sorted snapshot, got %v", got)
	}
}

func TestMergeEntriesSkipsEmptyIDs(t *testing.T) {
	merged := MergeEntries(
		[]schema.ConversationEntry{{Kind: schema.EntryChat, Content: "no id"}},
		[]schema.ConversationEntry{chatEntry("e1", "ok", time.Time{})},
	)
	if len(merged) != 1 || merged[0].ID != "e1" {
		t.Fatalf("unexpected merge result: %v", entryIDs(merged))
	}
}
