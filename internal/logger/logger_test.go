package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/config"
)

func TestLogRotation(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "objmesh.log")

	// MaxSize is in MB; 1 is the smallest lumberjack allows.
	err := InitWithOptions(Options{
		Level: "debug",
		File: FileConfig{
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 2,
			MaxAgeDays: 1,
			Compress:   false,
		},
	})
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer Sync()

	longMessage := strings.Repeat("x", 200)
	for i := 0; i < 8000; i++ {
		Sugar.Infof("converted polygon %d: %s", i, longMessage)
	}
	Sync()

	files, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}

	var rotated int
	for _, f := range files {
		name := f.Name()
		if name != "objmesh.log" && strings.HasPrefix(name, "objmesh-") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("expected a rotated log file, found %d files", len(files))
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), tt.level+".log")

			err := InitWithOptions(Options{
				Level: tt.level,
				File:  FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1},
			})
			if err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			logContent := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(logContent, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(logContent, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.Named("batch").Info("job done", zap.String("file", "cube.obj"))
	_ = l.Sync()

	out := buf.String()
	for _, want := range []string{"job done", "batch", "cube.obj"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in console output %q", want, out)
		}
	}
}

func TestNamedBeforeInit(t *testing.T) {
	saved, savedHelpers := Log, helpers
	Log, helpers = nil, nil
	defer func() { Log, helpers = saved, savedHelpers }()

	// Must not panic without Init.
	Named("mesh").Info("ignored")
	Info("ignored")
}

func TestHelpersReportCaller(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Level: "debug", Console: &buf}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Info("from test")
	Sync()

	out := buf.String()
	if !strings.Contains(out, "logger/logger_test.go:") {
		t.Errorf("expected caller in logger_test.go, got %q", out)
	}
	if strings.Contains(out, "logger/logger.go:") {
		t.Errorf("caller points into the logger package: %q", out)
	}
}

func TestInitFromConfig(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "objmesh.log")
	if err := InitFromConfig(config.LoggingConfig{Level: "warn", LogFile: logFile}); err != nil {
		t.Fatalf("InitFromConfig failed: %v", err)
	}

	Info("dropped")
	Warn("kept")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "kept") || strings.Contains(string(content), "dropped") {
		t.Errorf("unexpected log content %q", content)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/objmesh.log")

	if cfg.Path != "/tmp/objmesh.log" {
		t.Errorf("expected path /tmp/objmesh.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 {
		t.Errorf("expected MaxSizeMB 20, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 14 {
		t.Errorf("expected MaxAgeDays 14, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
