// Package testdata embeds recorded hand landmark sequences for tests and
// demos.
package testdata

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ayusman/mudra/internal/app"
)

//go:embed recordings/*.json
var recordingsFS embed.FS

// Load returns the recording with the given name, without extension.
func Load(name string) (*app.Recording, error) {
	f, err := recordingsFS.Open(path.Join("recordings", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	defer f.Close()

	rec, err := app.ReadRecording(f)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return rec, nil
}

// Names lists the embedded recordings in alphabetical order.
func Names() []string {
	entries, err := recordingsFS.ReadDir("recordings")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names
}
