// Package statestore persists reconciled conversation views to disk so a
// replayed or interrupted session can be inspected later.
package statestore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"pkt.systems/flowdeck/schema"
	"pkt.systems/pslog"
)

// ViewSnapshot captures one workspace's reconciled view for persistence.
type ViewSnapshot struct {
	TaskID  schema.TaskID               `json:"task_id"`
	Stream  schema.AgentStreamState     `json:"stream"`
	Entries []schema.ConversationEntry  `json:"entries,omitempty"`
	Request *schema.QARequest           `json:"request,omitempty"`
}

// Store persists view snapshots to a directory, one file per workspace.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Load reads a workspace's view snapshot from disk.
func (s *Store) Load(workspaceID schema.WorkspaceID) (ViewSnapshot, bool, error) {
	path := s.pathForWorkspace(workspaceID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("state load miss", "workspace", workspaceID)
			}
			return ViewSnapshot{}, false, nil
		}
		if s.log != nil {
			s.log.Warn("state load failed", "workspace", workspaceID, "err", err)
		}
		return ViewSnapshot{}, false, err
	}
	var snapshot ViewSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		if s.log != nil {
			s.log.Warn("state load failed", "workspace", workspaceID, "err", err)
		}
		return ViewSnapshot{}, false, err
	}
	if s.log != nil {
		s.log.Debug("state load ok", "workspace", workspaceID, "entries", len(snapshot.Entries))
	}
	return snapshot, true, nil
}

// Save writes a workspace's view snapshot to disk atomically.
func (s *Store) Save(workspaceID schema.WorkspaceID, snapshot ViewSnapshot) error {
	path := s.pathForWorkspace(workspaceID)
	fail := func(err error) error {
		if s.log != nil {
			s.log.Warn("state save failed", "workspace", workspaceID, "err", err)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fail(err)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fail(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "state-*.json")
	if err != nil {
		return fail(err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fail(err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return fail(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fail(err)
	}
	if s.log != nil {
		s.log.Trace("state save ok", "workspace", workspaceID, "entries", len(snapshot.Entries))
	}
	return nil
}

func (s *Store) pathForWorkspace(workspaceID schema.WorkspaceID) string {
	name := sanitize(string(workspaceID))
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(s.dir, name+".json")
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}
