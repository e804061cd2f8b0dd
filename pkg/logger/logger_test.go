package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInitAndLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "test.log")

	if err := Init(logPath, "debug"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Info("info message", zap.String("key", "value"))
	Debug("debug message")
	Warn("warn message")
	Error("error message")
	_ = Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	body := string(data)
	for _, want := range []string{"info message", "debug message", "warn message", "error message", `"key":"value"`} {
		if !strings.Contains(body, want) {
			t.Errorf("log file missing %q", want)
		}
	}
}

func TestInitLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	if err := Init(logPath, "error"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Info("filtered out")
	Error("kept")
	_ = Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	if strings.Contains(string(data), "filtered out") {
		t.Error("info entry written at error level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("error entry missing")
	}
}

func TestFatalInTestMode(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	if err := Init(logPath, "info"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	SetTestMode(true)
	defer SetTestMode(false)

	// Must not call os.Exit
	Fatal("fatal message")
	_ = Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "fatal message") {
		t.Error("fatal entry missing")
	}
}
