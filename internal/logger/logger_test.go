package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goodnews.log")

	closer := Init(Options{Debug: true, File: path, MaxSizeMB: 1})
	With("test").Debug("hello", "n", 1)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{"level=DEBUG", "msg=hello", "component=test", "n=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}

func TestInitDefaultLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.log")

	closer := Init(Options{File: path})
	Debug("hidden")
	Info("shown")
	closer.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Errorf("unexpected log contents: %s", data)
	}
}
