// Package config handles loading, defaulting, and validation of the wavetap
// TOML settings file. Every section maps to a typed struct so the rest of
// the codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfigPath overrides the settings file location when set.
const EnvConfigPath = "WAVETAP_CONFIG"

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Session SessionConfig `toml:"session" json:"session"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Audio   AudioConfig   `toml:"audio"   json:"audio"`
}

type SessionConfig struct {
	// BaseDir is the directory under which each run creates its
	// timestamped session directory.
	BaseDir string `toml:"base_dir" json:"base_dir"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
}

// AudioConfig selects the capture device and stream shape. Zero values
// mean "use the device default" and are resolved at stream-open time.
type AudioConfig struct {
	DeviceID        string  `toml:"device_id"         json:"device_id"`
	Channels        int     `toml:"channels"          json:"channels"`
	SampleRate      float64 `toml:"sample_rate"       json:"sample_rate"`
	FramesPerBuffer int     `toml:"frames_per_buffer" json:"frames_per_buffer"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Session: SessionConfig{
			BaseDir: defaultSessionBase(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Audio: AudioConfig{
			DeviceID:        "",
			Channels:        0,
			SampleRate:      0,
			FramesPerBuffer: 0,
		},
	}
}

// Load reads the settings file from its standard location (or the
// EnvConfigPath override). A missing file is not an error: defaults are
// written to disk so the user has something to edit.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the TOML file at path, layers it on top of the defaults,
// and validates the result. If the file does not exist, the defaults are
// saved there and returned.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := cfg.SaveFile(path); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the config to its standard location.
func (c Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile writes the config as TOML at path, creating parent directories.
func (c Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func validate(cfg Config) error {
	if cfg.Session.BaseDir == "" {
		return errors.New("session.base_dir must not be empty")
	}
	if cfg.Audio.Channels < 0 {
		return errors.New("audio.channels must be >= 0")
	}
	if cfg.Audio.SampleRate < 0 {
		return errors.New("audio.sample_rate must be >= 0")
	}
	if cfg.Audio.FramesPerBuffer < 0 {
		return errors.New("audio.frames_per_buffer must be >= 0")
	}
	return nil
}

// Path returns the settings file location: the EnvConfigPath override if
// set, otherwise the platform-specific config directory.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "wavetap", "config.toml")
}

// defaultSessionBase returns the platform-specific recordings directory.
func defaultSessionBase() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "wavetap", "sessions")
}
