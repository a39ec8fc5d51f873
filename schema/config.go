package schema

import (
	"errors"
	"time"
)

// EngineConfig defines defaults and limits for the reconciliation engine.
type EngineConfig struct {
	// PollInterval paces the recovery poller for missed qa.request events.
	PollInterval time.Duration
	// QAToolName is the tool name that marks a clarification request run.
	QAToolName string
	// EntryBufferMax caps push-delivered entries buffered per conversation.
	EntryBufferMax int
}

// DefaultPollInterval is the default recovery poll pacing.
const DefaultPollInterval = 400 * time.Millisecond

// DefaultQAToolName is the clarification tool name.
const DefaultQAToolName = "ask_questions"

// DefaultEntryBufferMax is the default per-conversation entry buffer limit.
const DefaultEntryBufferMax = 1000

// NormalizeEngineConfig applies defaults and validates the config.
func NormalizeEngineConfig(cfg EngineConfig) (EngineConfig, error) {
	if cfg.PollInterval < 0 {
		return EngineConfig{}, errors.New("poll interval must not be negative")
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.QAToolName == "" {
		cfg.QAToolName = DefaultQAToolName
	}
	if cfg.EntryBufferMax <= 0 {
		cfg.EntryBufferMax = DefaultEntryBufferMax
	}
	return cfg, nil
}
