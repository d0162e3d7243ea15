// Package testutil loads the HTML fixtures captured from fare-card portals.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// FixturePath returns the path of a fixture under
// card/<provider>/testdata/fixtures/<name>.html.
func FixturePath(provider, name string) string {
	_, filename, _, _ := runtime.Caller(0)
	baseDir := filepath.Dir(filepath.Dir(filename)) // up to card/

	return filepath.Join(baseDir, strings.ToLower(provider), "testdata", "fixtures", name+".html")
}

// LoadFixture reads an HTML fixture file for the given provider.
func LoadFixture(t *testing.T, provider, name string) string {
	t.Helper()

	data, err := os.ReadFile(FixturePath(provider, name))
	if err != nil {
		t.Fatalf("Failed to load fixture %s/%s: %v", provider, name, err)
	}

	return string(data)
}

// RecordingPath returns the path of a HAR recording under
// card/<provider>/testdata/recordings/<name>.har.json.
func RecordingPath(provider, name string) string {
	_, filename, _, _ := runtime.Caller(0)
	baseDir := filepath.Dir(filepath.Dir(filename))

	return filepath.Join(baseDir, strings.ToLower(provider), "testdata", "recordings", name+".har.json")
}
