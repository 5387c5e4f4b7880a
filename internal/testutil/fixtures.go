package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleStore is a small teams document with a duplicate team name and a
// driver carrying extra attributes.
const SampleStore = `{
    "teams": [
        {
            "name": "Ferrari",
            "drivers": [
                {"name": "Leclerc", "points": 10, "team": "Ferrari"},
                {"name": "Sainz", "points": 8}
            ]
        },
        {
            "name": "McLaren",
            "drivers": [
                {"name": "Norris", "points": 12}
            ]
        },
        {
            "name": "Ferrari",
            "drivers": [
                {"name": "Leclerc", "points": 99}
            ]
        }
    ]
}
`

// Layout is a program root with the store and temp directories in place.
type Layout struct {
	Root      string
	StorePath string
	TempDir   string
}

// NewLayout creates root/data/f1_data.json seeded with content and an empty root/tmp.
func NewLayout(t *testing.T, content string) Layout {
	t.Helper()
	root := t.TempDir()
	l := Layout{
		Root:      root,
		StorePath: filepath.Join(root, "data", "f1_data.json"),
		TempDir:   filepath.Join(root, "tmp"),
	}
	for _, dir := range []string{filepath.Dir(l.StorePath), l.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(l.StorePath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return l
}

// WriteRequest drops a request document into the temp dir and returns its name.
func (l Layout) WriteRequest(t *testing.T, name, content string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(l.TempDir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write request %s: %v", name, err)
	}
	return name
}

// ReadStore returns the current store bytes.
func (l Layout) ReadStore(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(l.StorePath)
	if err != nil {
		t.Fatalf("failed to read store: %v", err)
	}
	return data
}
