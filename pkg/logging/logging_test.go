package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name       string
		verbosity  int
		wantGlobal zerolog.Level
	}{
		{"default keeps info for the file", 0, zerolog.InfoLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("SHELF_STATE_DIR", "")
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			if zerolog.GlobalLevel() != tt.wantGlobal {
				t.Errorf("SetupLogger(%d) set level to %v, want %v",
					tt.verbosity, zerolog.GlobalLevel(), tt.wantGlobal)
			}

			logPath := filepath.Join(tempDir, "shelf", "shelf.log")
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				t.Errorf("Log file was not created at %s", logPath)
			}
		})
	}
}

func TestSetupFiltersConsoleOnly(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "shelf.log")

	if err := setup(0, &console, logPath); err != nil {
		t.Fatalf("setup() error = %v", err)
	}
	logger := GetLogger("publish")
	logger.Info().Msg("Published to store")
	logger.Warn().Msg("Consumer missing")

	if strings.Contains(console.String(), "Published to store") {
		t.Errorf("info record reached the console at verbosity 0: %q", console.String())
	}
	if !strings.Contains(console.String(), "Consumer missing") {
		t.Errorf("warning missing from console: %q", console.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	for _, msg := range []string{"Published to store", "Consumer missing"} {
		if !strings.Contains(string(data), msg) {
			t.Errorf("log file is missing %q: %q", msg, data)
		}
	}
}

func TestSetupWithoutLogFile(t *testing.T) {
	var console bytes.Buffer
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := setup(0, &console, filepath.Join(blocker, "shelf.log")); err == nil {
		t.Fatal("setup() should report the unusable log path")
	}
	logger := GetLogger("store")
	logger.Error().Msg("still logged")
	if !strings.Contains(console.String(), "still logged") {
		t.Errorf("console logger not installed: %q", console.String())
	}
}

func TestGetLogFilePath(t *testing.T) {
	tests := []struct {
		name         string
		xdgState     string
		wantContains string
	}{
		{
			name:         "with XDG_STATE_HOME",
			xdgState:     "/custom/state",
			wantContains: "/custom/state/shelf/shelf.log",
		},
		{
			name:         "without XDG_STATE_HOME",
			xdgState:     "",
			wantContains: ".local/state/shelf/shelf.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHELF_STATE_DIR", "")
			t.Setenv("XDG_STATE_HOME", tt.xdgState)

			got := getLogFilePath()
			if !filepath.IsAbs(got) {
				t.Errorf("getLogFilePath() returned relative path: %s", got)
			}
			if !strings.Contains(filepath.ToSlash(got), tt.wantContains) {
				t.Errorf("getLogFilePath() = %s, want to contain %s", got, tt.wantContains)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logger := GetLogger("installer")
	logger.Info().Msg("added package")

	if !strings.Contains(buf.String(), `"component":"installer"`) {
		t.Errorf("expected component field in %q", buf.String())
	}
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "publish")
	done()

	output := buf.String()
	if !strings.Contains(output, "Operation started") || !strings.Contains(output, "Operation completed") {
		t.Errorf("expected start and completion records, got %q", output)
	}
	if !strings.Contains(output, "duration") {
		t.Errorf("expected duration field, got %q", output)
	}
}
