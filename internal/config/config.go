// Package config loads the mudra configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
	"gopkg.in/yaml.v3"
)

const (
	// DataDirName is the per-user data directory under $HOME.
	DataDirName = ".mudra"
	// FileName is the default config file name inside the data directory.
	FileName = "config.yaml"
)

// Config is the complete mudra configuration.
type Config struct {
	LogLevel    string             `yaml:"log_level"`
	Server      ServerConfig       `yaml:"server"`
	Store       StoreConfig        `yaml:"store"`
	Camera      CameraConfig       `yaml:"camera"`
	MQTT        MQTTConfig         `yaml:"mqtt"`
	Hooks       HooksConfig        `yaml:"hooks"`
	Gesture     gesture.Config     `yaml:"gesture"`
	Interaction interaction.Config `yaml:"interaction"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080")
	Addr string `yaml:"addr"`
	// StaticDir serves a renderer bundle at / when set
	StaticDir string `yaml:"static_dir"`
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	// Path is the database file (default ~/.mudra/mudra.db)
	Path string `yaml:"path"`
}

// CameraConfig configures the optional local camera feed.
type CameraConfig struct {
	Enabled  bool               `yaml:"enabled"`
	Device   capture.Config     `yaml:"device"`
	Gate     capture.GateConfig `yaml:"gate"`
	Detector detector.Config    `yaml:"detector"`
}

// MQTTConfig configures the MQTT publisher. An empty Broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
	// StateEvery publishes every Nth frame on the state topic (1 = all)
	StateEvery int `yaml:"state_every"`
}

// HooksConfig configures intent hooks.
type HooksConfig struct {
	// Dir holds one sub-directory per hook (default ~/.mudra/hooks)
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns a Config with every section filled in.
func Default() *Config {
	dataDir := DataDir()
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Path: filepath.Join(dataDir, "mudra.db"),
		},
		Camera: CameraConfig{
			Enabled:  false,
			Device:   capture.DefaultConfig(),
			Gate:     capture.DefaultGateConfig(),
			Detector: detector.DefaultConfig(),
		},
		MQTT: MQTTConfig{
			ClientID:    "mudra",
			TopicPrefix: "mudra",
			QoS:         0,
			StateEvery:  1,
		},
		Hooks: HooksConfig{
			Dir:     filepath.Join(dataDir, "hooks"),
			Timeout: 5 * time.Second,
		},
		Gesture:     gesture.DefaultConfig(),
		Interaction: interaction.DefaultConfig(),
	}
}

// DataDir returns ~/.mudra, or .mudra in the working directory when the home
// directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataDirName
	}
	return filepath.Join(home, DataDirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DataDir(), FileName)
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SaveToFile writes the configuration as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr is required"))
	}
	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}
	if c.MQTT.Broker != "" {
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, fmt.Errorf("mqtt.topic_prefix is required when a broker is set"))
		}
		if c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2"))
		}
	}
	if c.MQTT.StateEvery < 1 {
		errs = append(errs, fmt.Errorf("mqtt.state_every must be at least 1"))
	}
	if c.Hooks.Timeout < 0 {
		errs = append(errs, fmt.Errorf("hooks.timeout must not be negative"))
	}
	if err := c.Tuning().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Tuning returns the gesture and interaction sections as session tuning.
func (c *Config) Tuning() app.Tuning {
	return app.Tuning{Gesture: c.Gesture, Interaction: c.Interaction}
}

// AppConfig returns the camera section as capture loop settings.
func (c *Config) AppConfig() app.Config {
	return app.Config{
		Camera:   c.Camera.Device,
		Gate:     c.Camera.Gate,
		Detector: c.Camera.Detector,
	}
}
