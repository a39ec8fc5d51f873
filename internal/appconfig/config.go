package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/flowdeck/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	Engine        EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Replay        ReplayConfig  `mapstructure:"replay" yaml:"replay"`
	Logging       LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// EngineConfig controls the reconciliation engine.
type EngineConfig struct {
	PollIntervalMS int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	QATool         string `mapstructure:"qa_tool" yaml:"qa_tool"`
	EntryBufferMax int    `mapstructure:"entry_buffer_max" yaml:"entry_buffer_max"`
}

// ReplayConfig controls the replay command.
type ReplayConfig struct {
	Workspace string `mapstructure:"workspace" yaml:"workspace"`
	ShowRaw   bool   `mapstructure:"show_raw" yaml:"show_raw"`
	StateDir  string `mapstructure:"state_dir" yaml:"state_dir"`
}

// LoggingConfig controls trace logging of discarded events.
type LoggingConfig struct {
	TraceDiscards bool `mapstructure:"trace_discards" yaml:"trace_discards"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Engine: EngineConfig{
			PollIntervalMS: int(schema.DefaultPollInterval / time.Millisecond),
			QATool:         schema.DefaultQAToolName,
			EntryBufferMax: schema.DefaultEntryBufferMax,
		},
		Replay: ReplayConfig{
			Workspace: "local",
			ShowRaw:   false,
		},
		Logging: LoggingConfig{
			TraceDiscards: false,
		},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flowdeck", "config.yaml"), nil
}

// EngineSchema converts the engine section to a schema.EngineConfig.
func (c Config) EngineSchema() schema.EngineConfig {
	return schema.EngineConfig{
		PollInterval:   time.Duration(c.Engine.PollIntervalMS) * time.Millisecond,
		QAToolName:     c.Engine.QATool,
		EntryBufferMax: c.Engine.EntryBufferMax,
	}
}
