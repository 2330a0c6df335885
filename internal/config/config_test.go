package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "mudra", cfg.MQTT.TopicPrefix)
	assert.Empty(t, cfg.MQTT.Broker, "MQTT is off by default")
	assert.False(t, cfg.Camera.Enabled, "camera is off by default")
	assert.Equal(t, 5, cfg.Gesture.Stabilizer.VoteWindow)
	assert.Equal(t, time.Second, cfg.Interaction.LongPressDuration)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"missing store path", func(c *Config) { c.Store.Path = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, true},
		{"broker without prefix", func(c *Config) {
			c.MQTT.Broker = "tcp://localhost:1883"
			c.MQTT.TopicPrefix = ""
		}, true},
		{"qos out of range", func(c *Config) {
			c.MQTT.Broker = "tcp://localhost:1883"
			c.MQTT.QoS = 3
		}, true},
		{"zero state interval", func(c *Config) { c.MQTT.StateEvery = 0 }, true},
		{"negative hook timeout", func(c *Config) { c.Hooks.Timeout = -time.Second }, true},
		{"zero vote window", func(c *Config) { c.Gesture.Stabilizer.VoteWindow = 0 }, true},
		{"damping of one", func(c *Config) { c.Interaction.Damping = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
server:
  addr: ":9090"
mqtt:
  broker: "tcp://broker:1883"
  topic_prefix: "lab/viewer"
gesture:
  stabilizer:
    vote_window: 3
interaction:
  long_press_duration: 1500ms
  damping: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "lab/viewer", cfg.MQTT.TopicPrefix)
	assert.Equal(t, "mudra", cfg.MQTT.ClientID, "unset fields keep defaults")
	assert.Equal(t, 3, cfg.Gesture.Stabilizer.VoteWindow)
	assert.Equal(t, 1, cfg.Gesture.Stabilizer.HoldFrames)
	assert.Equal(t, 1500*time.Millisecond, cfg.Interaction.LongPressDuration)
	assert.InDelta(t, 0.9, cfg.Interaction.Damping, 1e-12)
	assert.InDelta(t, 1.5, cfg.Interaction.FistSensitivity, 1e-12)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [unclosed"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("gesture:\n  stabilizer:\n    hold_frames: 0\n"), 0644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "hold_frames")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Server.Addr = "127.0.0.1:7000"
	cfg.Interaction.PanSpeed = 0.2

	require.NoError(t, cfg.SaveToFile(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, cfg.Interaction, loaded.Interaction)
	assert.Equal(t, cfg.Gesture, loaded.Gesture)
}

func TestTuning(t *testing.T) {
	cfg := Default()
	cfg.Gesture.FlipY = true

	tuning := cfg.Tuning()
	assert.True(t, tuning.Gesture.FlipY)
	assert.Equal(t, cfg.Interaction, tuning.Interaction)

	appCfg := cfg.AppConfig()
	assert.Equal(t, cfg.Camera.Gate, appCfg.Gate)
}
