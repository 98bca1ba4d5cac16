package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFileName is the log file written next to where the tool is run.
const DefaultFileName = "cursor_machine_id.log"

// DebugEnabled reports whether DEBUG asks for debug logging.
func DebugEnabled() bool {
	v := os.Getenv("DEBUG")
	return v == "true" || v == "1"
}

// Logger writes plain-text log lines. Create one with Initialize and pass it to
// the components that need it; defer Close.
type Logger struct {
	sugar *zap.SugaredLogger
	file  *os.File
	path  string
	runID string
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}

func newLogger(w io.Writer, debug bool) *Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(w), level)
	return &Logger{
		sugar: zap.New(core).Sugar(),
		runID: ulid.Make().String(),
	}
}

// Initialize opens path in append mode and starts a new session in it. If the
// file can't be opened the logger falls back to stderr.
func Initialize(path string, debug bool) *Logger {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: using stderr for logging: %v\n", err)
		l := newLogger(os.Stderr, debug)
		l.startSession()
		return l
	}

	l := newLogger(f, debug)
	l.file = f
	l.path = path
	l.startSession()
	return l
}

// New returns a logger writing to w. Used by tests that inspect log output.
func New(w io.Writer, debug bool) *Logger {
	l := newLogger(w, debug)
	l.startSession()
	return l
}

// NewWriter returns a logger writing to w without a session header.
func NewWriter(w io.Writer, debug bool) *Logger {
	return newLogger(w, debug)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) startSession() {
	l.sugar.Info(strings.Repeat("=", 50))
	l.sugar.Infow("session started", "run_id", l.runID)
}

// RunID identifies this run in the log file.
func (l *Logger) RunID() string { return l.runID }

// Path is the log file path, empty when not logging to a file.
func (l *Logger) Path() string { return l.path }

func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

func (l *Logger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

func (l *Logger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Info logs msg with structured key/value pairs.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
