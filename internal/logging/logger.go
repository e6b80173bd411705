// Package logging provides the structured logger used across xmldiff's CLI
// and core packages: zerolog on the wire, optional file rotation via
// lumberjack, with a handful of fluent helpers for attaching operation
// context to a chain of log events.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the logging level.
type Level string

const (
	LevelTrace Level = "trace"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Config represents the logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level `json:"level"`

	// OutputConsole enables console (stderr) output.
	OutputConsole bool `json:"outputConsole"`

	// OutputFile enables rotating file output.
	OutputFile bool `json:"outputFile"`

	// LogDirectory is where log files are stored, when OutputFile is set.
	LogDirectory string `json:"logDirectory"`

	// MaxFileSize is the maximum size of each log file in megabytes.
	MaxFileSize int `json:"maxFileSize"`

	// MaxBackups is the maximum number of old log files to keep.
	MaxBackups int `json:"maxBackups"`

	// MaxAge is the maximum age of log files in days.
	MaxAge int `json:"maxAge"`

	// CompressBackups determines if old log files should be compressed.
	CompressBackups bool `json:"compressBackups"`
}

// DefaultConfig returns the default configuration for the CLI: console
// output only, at info level. File output is opt-in, since a one-shot CLI
// invocation has no long-running process to rotate logs for by default.
func DefaultConfig() *Config {
	return &Config{
		Level:         LevelInfo,
		OutputConsole: true,
		OutputFile:    false,
		LogDirectory:  "logs",
		MaxFileSize:   10,
		MaxBackups:    5,
		MaxAge:        30,
	}
}

// Logger wraps zerolog with xmldiff-specific fluent helpers.
type Logger struct {
	logger zerolog.Logger
	config *Config
}

// New creates a new logger instance with the given configuration.
func New(config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var writers []io.Writer

	if config.OutputConsole {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	if config.OutputFile {
		if err := os.MkdirAll(config.LogDirectory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(config.LogDirectory, "xmldiff.log"),
			MaxSize:    config.MaxFileSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.CompressBackups,
		})
	}

	var output io.Writer
	switch len(writers) {
	case 0:
		output = os.Stderr
	case 1:
		output = writers[0]
	default:
		output = io.MultiWriter(writers...)
	}

	logger := zerolog.New(output).With().Timestamp().Logger().Level(levelOf(config.Level))

	return &Logger{logger: logger, config: config}, nil
}

func levelOf(l Level) zerolog.Level {
	switch l {
	case LevelTrace:
		return zerolog.TraceLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithContext returns a new logger with additional structured fields.
func (l *Logger) WithContext(fields map[string]interface{}) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger(), config: l.config}
}

// WithOperation tags the logger with the operation currently underway
// (e.g. "diff", "match", "patch").
func (l *Logger) WithOperation(operation string) *Logger {
	return &Logger{logger: l.logger.With().Str("operation", operation).Logger(), config: l.config}
}

// WithError attaches an error to the logger context.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With().Err(err).Logger(), config: l.config}
}

func (l *Logger) Trace() *zerolog.Event { return l.logger.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }

// Config returns the configuration the logger was built from.
func (l *Logger) Config() *Config { return l.config }
