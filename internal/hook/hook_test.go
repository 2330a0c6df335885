package hook

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installHook writes a manifest and an executable script into dir/name.
func installHook(t *testing.T, dir string, manifest Manifest, script string) string {
	t.Helper()

	hookDir := filepath.Join(dir, manifest.Name)
	require.NoError(t, os.MkdirAll(hookDir, 0755))

	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(hookDir, ManifestFile), data, 0644))

	if script != "" {
		require.NoError(t, os.WriteFile(filepath.Join(hookDir, manifest.Executable), []byte(script), 0755))
	}
	return hookDir
}

func skipWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks are not supported on Windows")
	}
}

const recordingScript = `#!/bin/sh
cat >> requests.log
echo >> requests.log
echo '{"success":true}'
`

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	installHook(t, dir, Manifest{
		Name:       "keyboard",
		Version:    "1.0.0",
		Executable: "keyboard",
		Actions:    []string{"shortcut"},
		Intents:    []interaction.IntentKind{interaction.Explode, interaction.Implode},
	}, "")
	installHook(t, dir, Manifest{Name: "beep", Executable: "beep.sh"}, "")

	// Ignored entries.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken", ManifestFile), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644))

	m := NewManager(dir, nil)
	require.NoError(t, m.Discover())

	hooks := m.List()
	require.Len(t, hooks, 2)
	assert.Equal(t, "beep", hooks[0].Manifest.Name)
	assert.Equal(t, "keyboard", hooks[1].Manifest.Name)

	kb, err := m.Get("keyboard")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "keyboard", "keyboard"), kb.Executable)
	assert.True(t, kb.Accepts(interaction.Explode))
	assert.False(t, kb.Accepts(interaction.Raycast))
	assert.True(t, kb.HasAction("shortcut"))
	assert.False(t, kb.HasAction("type"))

	beep, err := m.Get("beep")
	require.NoError(t, err)
	assert.True(t, beep.Accepts(interaction.Raycast), "empty intent list accepts all")

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrHookNotFound)
}

func TestManager_DiscoverMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, m.Discover())
	assert.Empty(t, m.List())
}

func TestManifest_UnknownIntent(t *testing.T) {
	var manifest Manifest
	err := json.Unmarshal([]byte(`{"name":"x","intents":["WAVE"]}`), &manifest)
	assert.Error(t, err)
}

func TestExecutor_Execute(t *testing.T) {
	skipWindows(t)
	dir := t.TempDir()
	hookDir := installHook(t, dir, Manifest{Name: "rec", Executable: "rec.sh"}, recordingScript)

	m := NewManager(dir, nil)
	require.NoError(t, m.Discover())
	h, err := m.Get("rec")
	require.NoError(t, err)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, &Request{
		Action:   "notify",
		Intent:   interaction.Intent{Kind: interaction.Raycast, X: 0.5, Y: -0.25},
		Mode:     interaction.Scattered,
		Sequence: 7,
		Config:   json.RawMessage(`{"sound":"ping"}`),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	data, err := os.ReadFile(filepath.Join(hookDir, "requests.log"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "notify", got["action"])
	assert.Equal(t, "SCATTERED", got["mode"])
	assert.Equal(t, float64(7), got["seq"])
	intent := got["intent"].(map[string]any)
	assert.Equal(t, "RAYCAST", intent["kind"])
	assert.Equal(t, 0.5, intent["x"])
}

func TestExecutor_Errors(t *testing.T) {
	skipWindows(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		check   func(t *testing.T, err error)
	}{
		{
			name:   "non-zero exit",
			script: "#!/bin/sh\necho boom >&2\nexit 3\n",
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "boom")
			},
		},
		{
			name:   "bad response",
			script: "#!/bin/sh\necho not-json\n",
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "failed to parse hook response")
			},
		},
		{
			name:    "timeout",
			script:  "#!/bin/sh\nexec sleep 5\n",
			timeout: 100 * time.Millisecond,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrTimeout)
			},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "hook" + string(rune('a'+i))
			hookDir := installHook(t, dir, Manifest{Name: name, Executable: "run.sh"}, tt.script)
			h := &Hook{Manifest: Manifest{Name: name}, Path: hookDir, Executable: filepath.Join(hookDir, "run.sh")}

			_, err := NewExecutor(tt.timeout).Execute(context.Background(), h, &Request{Action: "x"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

// staticBindings serves fixed bindings per intent.
type staticBindings map[interaction.IntentKind][]*store.Binding

func (s staticBindings) ForIntent(kind interaction.IntentKind) ([]*store.Binding, error) {
	return s[kind], nil
}

type failingBindings struct{}

func (failingBindings) ForIntent(interaction.IntentKind) ([]*store.Binding, error) {
	return nil, errors.New("database is locked")
}

func TestDispatcher(t *testing.T) {
	skipWindows(t)
	dir := t.TempDir()
	hookDir := installHook(t, dir, Manifest{
		Name:       "rec",
		Executable: "rec.sh",
		Intents:    []interaction.IntentKind{interaction.Explode, interaction.Raycast},
	}, recordingScript)

	m := NewManager(dir, nil)
	require.NoError(t, m.Discover())

	bindings := staticBindings{
		interaction.Explode: {{HookName: "rec", ActionName: "explode-sound", Enabled: true}},
		interaction.Implode: {{HookName: "rec", ActionName: "rejected", Enabled: true}},
		interaction.Focus:   {{HookName: "ghost", ActionName: "missing", Enabled: true}},
	}
	reg := metrics.New("test")
	d := NewDispatcher(m, NewExecutor(5*time.Second), bindings, reg, nil)
	d.Start(context.Background())

	d.Publish(app.FrameResult{Sequence: 1, Mode: interaction.Scattered, Intents: []interaction.Intent{{Kind: interaction.Explode}}})
	d.Publish(app.FrameResult{Sequence: 2, Mode: interaction.Whole, Intents: []interaction.Intent{{Kind: interaction.Implode}}})
	d.Publish(app.FrameResult{Sequence: 3, Mode: interaction.Focused, Intents: []interaction.Intent{{Kind: interaction.Focus}}})
	d.Publish(app.FrameResult{Sequence: 4})
	d.Close()

	data, err := os.ReadFile(filepath.Join(hookDir, "requests.log"))
	require.NoError(t, err)

	var got Request
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "explode-sound", got.Action)
	assert.Equal(t, interaction.Explode, got.Intent.Kind)
	assert.Equal(t, uint64(1), got.Sequence)

	assert.Equal(t, float64(1), testutil.ToFloat64(reg.SinkErrorsTotal.WithLabelValues("hook")),
		"only the missing hook counts as an error")

	// Publishing after Close is a no-op.
	d.Publish(app.FrameResult{Intents: []interaction.Intent{{Kind: interaction.Explode}}})
}

func TestDispatcher_BindingLookupFails(t *testing.T) {
	reg := metrics.New("test")
	d := NewDispatcher(NewManager(t.TempDir(), nil), NewExecutor(time.Second), failingBindings{}, reg, nil)
	d.Start(context.Background())

	d.Publish(app.FrameResult{Intents: []interaction.Intent{{Kind: interaction.Raycast}}})
	d.Close()

	assert.Equal(t, float64(1), testutil.ToFloat64(reg.SinkErrorsTotal.WithLabelValues("hook")))
}

func TestDispatcher_CloseWithoutStart(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir(), nil), NewExecutor(time.Second), staticBindings{}, nil, nil)
	d.Close()
	d.Close()
}
