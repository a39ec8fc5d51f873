package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/flowdeck"
	"pkt.systems/flowdeck/internal/appconfig"
	"pkt.systems/flowdeck/internal/eventbus"
	"pkt.systems/flowdeck/internal/format"
	"pkt.systems/flowdeck/internal/statestore"
	"pkt.systems/flowdeck/internal/streamfile"
	"pkt.systems/flowdeck/schema"
	"pkt.systems/pslog"
)

func newReplayCmd() *cobra.Command {
	var cfgPath string
	var workspace string
	var task string
	var snapshotPath string
	var showRaw bool
	var stateDir string
	cmd := &cobra.Command{
		Use:   "replay <stream.jsonl>",
		Short: "Replay a recorded event stream and print the reconciled view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if workspace == "" {
				workspace = cfg.Replay.Workspace
			}
			if !cmd.Flags().Changed("show-raw") {
				showRaw = cfg.Replay.ShowRaw
			}
			if stateDir == "" {
				stateDir = cfg.Replay.StateDir
			}
			return runReplay(cmd, cfg, replayParams{
				streamPath:   args[0],
				workspace:    schema.WorkspaceID(workspace),
				task:         schema.TaskID(task),
				snapshotPath: snapshotPath,
				showRaw:      showRaw,
				stateDir:     stateDir,
			})
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace id")
	cmd.Flags().StringVarP(&task, "task", "t", "", "task id (default: first event's task)")
	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "authoritative snapshot JSON to merge")
	cmd.Flags().BoolVar(&showRaw, "show-raw", false, "print each event line before applying it")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "save the reconciled view under this directory")
	return cmd
}

type replayParams struct {
	streamPath   string
	workspace    schema.WorkspaceID
	task         schema.TaskID
	snapshotPath string
	showRaw      bool
	stateDir     string
}

// replayBackend serves a recorded snapshot in place of a live HTTP API.
// Polling finds nothing and responses cannot be submitted.
type replayBackend struct {
	snapshot schema.ConversationSnapshot
}

func (b *replayBackend) LoadConversation(ctx context.Context, taskID schema.TaskID) (schema.ConversationSnapshot, error) {
	return b.snapshot, nil
}

func (b *replayBackend) PendingQARequest(ctx context.Context, taskID schema.TaskID) (*schema.QARequest, error) {
	return nil, nil
}

func (b *replayBackend) SubmitQAResponse(ctx context.Context, taskID schema.TaskID, response schema.QAResponse) error {
	return errors.New("replay backend cannot submit responses")
}

func runReplay(cmd *cobra.Command, cfg appconfig.Config, params replayParams) error {
	ctx := cmd.Context()
	logger := pslog.Ctx(ctx)
	out := cmd.OutOrStdout()

	events, decodeErrs, err := loadStream(ctx, params.streamPath)
	if err != nil {
		return err
	}
	for _, decodeErr := range decodeErrs {
		logger.Warn("replay line skipped", "err", decodeErr)
	}
	if len(events) == 0 {
		return errors.New("stream contains no events")
	}

	taskID := params.task
	if taskID == "" {
		for _, event := range events {
			if event.TaskID != "" {
				taskID = event.TaskID
				break
			}
		}
	}
	if taskID == "" {
		return errors.New("no task id in stream; pass --task")
	}

	backend := &replayBackend{}
	if params.snapshotPath != "" {
		snapshot, err := loadSnapshot(params.snapshotPath)
		if err != nil {
			return err
		}
		backend.snapshot = snapshot
	}

	engine, err := flowdeck.New(flowdeck.Config{Engine: cfg.EngineSchema()}, flowdeck.Deps{
		Backend: backend,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	session, err := engine.OpenSession(ctx, params.workspace)
	if err != nil {
		return err
	}
	updates, cancel := engine.Subscribe(params.workspace)
	defer cancel()

	if err := session.SelectTask(ctx, taskID); err != nil {
		return err
	}
	if err := awaitHydration(ctx, updates); err != nil {
		return err
	}

	applied := 0
	for _, event := range events {
		if params.showRaw && len(event.Raw) > 0 {
			fmt.Fprintf(out, "> %s\n", event.Raw)
		}
		session.HandleEvent(ctx, event)
		applied++
	}
	logger.Info("replay applied", "events", applied, "skipped", len(decodeErrs))

	renderer := format.NewPlainRenderer()
	fmt.Fprintf(out, "task %s\n\n", taskID)
	for _, entry := range session.Entries() {
		for _, line := range renderer.FormatEntry(entry) {
			fmt.Fprintln(out, line)
		}
	}
	fmt.Fprintln(out)
	for _, line := range renderer.FormatStreamState(session.StreamState()) {
		fmt.Fprintln(out, line)
	}
	if request := session.ActiveQARequest(); request != nil {
		fmt.Fprintln(out)
		for _, line := range renderer.FormatQARequest(*request) {
			fmt.Fprintln(out, line)
		}
	}

	if params.stateDir != "" {
		store, err := statestore.NewStoreWithLogger(params.stateDir, logger)
		if err != nil {
			return err
		}
		if err := store.Save(params.workspace, statestore.ViewSnapshot{
			TaskID:  taskID,
			Stream:  session.StreamState(),
			Entries: session.Entries(),
			Request: session.ActiveQARequest(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func loadStream(ctx context.Context, path string) ([]schema.StreamEvent, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return streamfile.ReadAll(ctx, f)
}

func loadSnapshot(path string) (schema.ConversationSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.ConversationSnapshot{}, err
	}
	var snapshot schema.ConversationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return schema.ConversationSnapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return snapshot, nil
}

// awaitHydration waits for the post-load entries update. SelectTask emits an
// empty reset first and the snapshot result second.
func awaitHydration(ctx context.Context, updates <-chan eventbus.Event) error {
	seen := 0
	timeout := time.After(5 * time.Second)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return errors.New("timed out waiting for snapshot load")
		case update := <-updates:
			if update.Type != eventbus.EventLoadError && update.Type != eventbus.EventEntries {
				continue
			}
			if update.Type == eventbus.EventLoadError {
				return update.LoadError.Err
			}
			seen++
			if seen >= 2 {
				return nil
			}
		}
	}
}
