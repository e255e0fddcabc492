// Package testdata provides SOAP response fixtures for resource service tests.
package testdata

import (
	"embed"
	"testing"
)

// FS embeds all XML fixture files.
//
//go:embed */*.xml
var FS embed.FS

// LoadFixture reads and returns fixture content as string.
// The path is relative to the testdata directory (e.g., "poll/changes.xml").
func LoadFixture(t *testing.T, path string) string {
	t.Helper()

	data, err := FS.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return string(data)
}
