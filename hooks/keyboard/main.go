// Command keyboard is a mudra hook that turns intents into keystrokes.
//
// It reads a hook request on stdin. The binding config names the key and
// modifiers:
//
//	{"key": "e", "modifiers": ["cmd", "shift"]}
//
// macOS is driven through AppleScript, Linux through xdotool.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

type request struct {
	Action string `json:"action"`
	Intent struct {
		Kind string `json:"kind"`
	} `json:"intent"`
	Config json.RawMessage `json:"config"`
}

type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// keystroke is the binding config.
type keystroke struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // cmd, option, ctrl, shift
}

var appleModifiers = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

var xdotoolModifiers = map[string]string{
	"command": "super",
	"cmd":     "super",
	"option":  "alt",
	"alt":     "alt",
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
}

func main() {
	if err := handle(os.Stdin, runtime.GOOS, run); err != nil {
		json.NewEncoder(os.Stdout).Encode(response{Error: err.Error()})
		return
	}
	json.NewEncoder(os.Stdout).Encode(response{Success: true})
}

func handle(in io.Reader, goos string, runCmd func(name string, args ...string) error) error {
	var req request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	if req.Action != "keystroke" && req.Action != "shortcut" {
		return fmt.Errorf("unknown action: %s", req.Action)
	}

	var ks keystroke
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &ks); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if ks.Key == "" {
		return fmt.Errorf("%s: key is required", req.Intent.Kind)
	}

	name, args, err := command(goos, ks)
	if err != nil {
		return err
	}
	return runCmd(name, args...)
}

// command builds the OS command that types ks.
func command(goos string, ks keystroke) (string, []string, error) {
	switch goos {
	case "darwin":
		return "osascript", []string{"-e", appleScript(ks)}, nil
	case "linux":
		return "xdotool", []string{"key", xdotoolChord(ks)}, nil
	default:
		return "", nil, errors.New("unsupported platform " + goos)
	}
}

func appleScript(ks keystroke) string {
	var mods []string
	for _, m := range ks.Modifiers {
		if am, ok := appleModifiers[strings.ToLower(m)]; ok {
			mods = append(mods, am)
		}
	}
	if len(mods) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, ks.Key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, ks.Key, strings.Join(mods, ", "))
}

func xdotoolChord(ks keystroke) string {
	var parts []string
	for _, m := range ks.Modifiers {
		if xm, ok := xdotoolModifiers[strings.ToLower(m)]; ok {
			parts = append(parts, xm)
		}
	}
	return strings.Join(append(parts, ks.Key), "+")
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
