package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	MediaDir string `koanf:"media_dir"` // directory the ingest pipeline scans
	TickMs   int    `koanf:"tick_ms"`   // controller tick interval
	LogLevel string `koanf:"log_level"` // logrus level name

	Playback  PlaybackConfig  `koanf:"playback"`
	Overlay   OverlayConfig   `koanf:"overlay"`
	Simulator SimulatorConfig `koanf:"simulator"`
}

// PlaybackConfig holds the controller policy knobs.
type PlaybackConfig struct {
	Mode            string `koanf:"mode"`              // "continuous", "single", "loop"
	PauseWhenHidden bool   `koanf:"pause_when_hidden"` // stop Continuous mode when hidden
	RetryCap        int    `koanf:"retry_cap"`         // bounded retries before full stop
	GraceMs         int    `koanf:"grace_ms"`          // host loading-lag tolerance
	SeekJumpMs      int    `koanf:"seek_jump_ms"`      // forward jump treated as a seek
	RestartDelayMs  int    `koanf:"restart_delay_ms"`  // settle time before a loop restart
}

// OverlayConfig holds the title overlay timing knobs.
type OverlayConfig struct {
	ShowDelayMs    int `koanf:"show_delay_ms"`    // delay before the title shows
	ClearLeadMs    int `koanf:"clear_lead_ms"`    // clear this long before item end
	FadeMs         int `koanf:"fade_ms"`          // total fade ramp length
	FadeSteps      int `koanf:"fade_steps"`       // opacity steps per ramp
	DurationPollMs int `koanf:"duration_poll_ms"` // retry interval while duration unknown
}

// SimulatorConfig configures the headless media source stand-in.
type SimulatorConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true (no host binding in headless runs)
	ItemMs  int   `koanf:"item_ms"` // simulated item duration
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.MediaDir != "" {
		cfg.MediaDir = expandPath(cfg.MediaDir)
	}
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.TickMs <= 0 {
		cfg.TickMs = 1000
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Playback.RetryCap <= 0 {
		cfg.Playback.RetryCap = 3
	}
	if cfg.Playback.GraceMs <= 0 {
		cfg.Playback.GraceMs = 5000
	}
	if cfg.Playback.SeekJumpMs <= 0 {
		cfg.Playback.SeekJumpMs = 5000
	}
	if cfg.Playback.RestartDelayMs <= 0 {
		cfg.Playback.RestartDelayMs = 1000
	}

	if cfg.Overlay.ShowDelayMs <= 0 {
		cfg.Overlay.ShowDelayMs = 1500
	}
	if cfg.Overlay.ClearLeadMs <= 0 {
		cfg.Overlay.ClearLeadMs = 3500
	}
	if cfg.Overlay.FadeMs <= 0 {
		cfg.Overlay.FadeMs = 1000
	}
	if cfg.Overlay.FadeSteps <= 0 {
		cfg.Overlay.FadeSteps = 20
	}
	if cfg.Overlay.DurationPollMs <= 0 {
		cfg.Overlay.DurationPollMs = 500
	}

	if cfg.Simulator.ItemMs <= 0 {
		cfg.Simulator.ItemMs = 20000
	}
}

// SimulatorEnabled returns the simulator toggle with its default applied.
func (c *Config) SimulatorEnabled() bool {
	if c.Simulator.Enabled == nil {
		return true
	}
	return *c.Simulator.Enabled
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/rotator/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rotator", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
