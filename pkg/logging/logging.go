package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// fileLevel is the most verbose level the log file is guaranteed to get,
// so publishes and pushes leave a trace even when the console is quiet.
const fileLevel = zerolog.InfoLevel

// SetupLogger configures the global logger for the given -v count.
// Console records go to stderr filtered by verbosity; the log file under
// the state directory receives at least Info.
func SetupLogger(verbosity int) {
	logFile := getLogFilePath()
	if err := setup(verbosity, os.Stderr, logFile); err != nil {
		log.Warn().Err(err).Str("path", logFile).Msg("Failed to open log file, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logger initialized")
}

// consoleLevel maps the -v count to a console level
func consoleLevel(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// setup installs the global logger. A log file that cannot be opened is
// reported but the console logger is still installed.
func setup(verbosity int, console io.Writer, logPath string) error {
	level := consoleLevel(verbosity)

	// The global level gates both writers, each writer then filters again
	global := level
	if fileLevel < global {
		global = fileLevel
	}
	zerolog.SetGlobalLevel(global)

	writers := []io.Writer{
		levelFilter{
			w: zerolog.ConsoleWriter{
				Out:        console,
				TimeFormat: time.Kitchen,
				NoColor:    os.Getenv("NO_COLOR") != "",
			},
			min: level,
		},
	}

	file, err := openLogFile(logPath)
	if err == nil {
		writers = append(writers, levelFilter{w: file, min: global})
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	return err
}

// levelFilter drops records below min before they reach w
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

// GetLogger returns a logger tagged with the component name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// getLogFilePath resolves shelf.log: SHELF_STATE_DIR first, then
// $XDG_STATE_HOME/shelf, then ~/.local/state/shelf.
func getLogFilePath() string {
	if stateDir := os.Getenv("SHELF_STATE_DIR"); stateDir != "" {
		return filepath.Join(stateDir, "shelf.log")
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// no home, log next to the working directory
			return "shelf.log"
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "shelf", "shelf.log")
}

// openLogFile opens logPath for appending, creating parents
func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
