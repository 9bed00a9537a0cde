package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a no-op logger")
	}
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.log")
	logger, err := ToFile(path, false)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("field rebuilt")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "field rebuilt") {
		t.Errorf("log line missing from %q", data)
	}
}
