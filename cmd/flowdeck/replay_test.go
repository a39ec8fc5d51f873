package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("command %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestRootHasSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"replay": false, "config": false, "version": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected root command to include %s", name)
		}
	}
}

func TestReplayReconcilesStream(t *testing.T) {
	stream := writeTempFile(t, "stream.jsonl", strings.Join([]string{
		`{"type":"status","task_id":"t1","status":"streaming"}`,
		`{"type":"message","task_id":"t1","entry":{"id":"e2","kind":"chat","role":"agent","content":"working on it","timestamp":"2026-03-01T10:00:05Z"}}`,
		`not json at all`,
		`{"type":"text.delta","task_id":"t1","text":"partial answer"}`,
		`{"type":"context.usage","task_id":"t1","usage":{"used_percent":37}}`,
	}, "\n"))
	snapshot := writeTempFile(t, "snapshot.json", `{
		"task_id": "t1",
		"entries": [
			{"id":"e1","kind":"chat","role":"user","content":"please fix the bug","timestamp":"2026-03-01T10:00:00Z"},
			{"id":"e2","kind":"chat","role":"agent","content":"working on it","timestamp":"2026-03-01T10:00:05Z"}
		]
	}`)
	cfg := writeTempFile(t, "config.yaml", "config_version: 1\n")

	out := runCommand(t, "replay", "--config", cfg, "--workspace", "ws1", "--snapshot", snapshot, stream)

	if !strings.Contains(out, "user: please fix the bug") {
		t.Fatalf("missing snapshot entry in output:\n%s", out)
	}
	if strings.Count(out, "working on it") != 1 {
		t.Fatalf("duplicated entry in output:\n%s", out)
	}
	if !strings.Contains(out, "status: streaming") {
		t.Fatalf("missing stream status in output:\n%s", out)
	}
	if !strings.Contains(out, "partial answer") {
		t.Fatalf("missing streaming text in output:\n%s", out)
	}
	if !strings.Contains(out, "context: 37% used") {
		t.Fatalf("missing context usage in output:\n%s", out)
	}
}

func TestReplaySavesReconciledState(t *testing.T) {
	stream := writeTempFile(t, "stream.jsonl", strings.Join([]string{
		`{"type":"status","task_id":"t1","status":"awaiting_qa"}`,
		`{"type":"qa.request","task_id":"t1","request":{"request_id":"r1","questions":[{"id":"q1","prompt":"Which db?"}]}}`,
	}, "\n"))
	cfg := writeTempFile(t, "config.yaml", "config_version: 1\n")
	stateDir := t.TempDir()

	runCommand(t, "replay", "--config", cfg, "--workspace", "ws1", "--state-dir", stateDir, stream)

	data, err := os.ReadFile(filepath.Join(stateDir, "ws1.json"))
	if err != nil {
		t.Fatalf("read saved state: %v", err)
	}
	saved := string(data)
	if !strings.Contains(saved, `"task_id": "t1"`) {
		t.Fatalf("missing task id in saved state:\n%s", saved)
	}
	if !strings.Contains(saved, `"request_id": "r1"`) {
		t.Fatalf("missing open request in saved state:\n%s", saved)
	}
}

func TestReplayRequiresTaskID(t *testing.T) {
	stream := writeTempFile(t, "stream.jsonl", `{"type":"status","status":"idle"}`)
	cfg := writeTempFile(t, "config.yaml", "config_version: 1\n")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"replay", "--config", cfg, "--workspace", "ws1", stream})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for stream without task id")
	}
}

func TestConfigInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	out := runCommand(t, "config", "init", "--config", path)
	if !strings.Contains(out, path) {
		t.Fatalf("expected written path in output, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "config_version: 1") {
		t.Fatalf("unexpected config contents:\n%s", data)
	}
}

func TestVersionPrints(t *testing.T) {
	out := runCommand(t, "version")
	if !strings.Contains(out, "flowdeck") {
		t.Fatalf("unexpected version output: %q", out)
	}
}
