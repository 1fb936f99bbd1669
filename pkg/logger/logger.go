package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries contextual key/value pairs attached to log messages.
type Fields map[string]interface{}

// Logger is the logging interface used across dutree components.
type Logger interface {
	// Debug logs a message at debug level. Only shown when verbosity >= 1.
	Debug(msg string)

	// Info logs a message at info level.
	Info(msg string)

	// Warn logs a message at warn level.
	Warn(msg string)

	// Error logs a message at error level.
	Error(msg string)

	// Trace logs a message at trace level. Only shown when verbosity >= 2.
	Trace(msg string)

	// WithFields returns a Logger that includes the given fields in every
	// subsequent message.
	WithFields(fields Fields) Logger
}

// Config holds the options for creating a logger.
type Config struct {
	// Verbosity selects the log level: 0 info, 1 debug, 2 trace.
	Verbosity int

	// Output is where log lines are written. Defaults to os.Stderr.
	Output io.Writer
}

type logger struct {
	zap       *zap.Logger
	verbosity int
}

// New creates a Logger with the given configuration.
func New(config Config) Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(config.Output),
		levelFor(config.Verbosity),
	)

	return &logger{
		zap:       zap.New(core),
		verbosity: config.Verbosity,
	}
}

// Nop returns a Logger that discards everything. Used in tests and as a
// default when a component is handed no logger.
func Nop() Logger {
	return &logger{zap: zap.NewNop()}
}

func levelFor(verbosity int) zapcore.LevelEnabler {
	if verbosity <= 0 {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

func (l *logger) Debug(msg string) { l.zap.Debug(msg) }
func (l *logger) Info(msg string)  { l.zap.Info(msg) }
func (l *logger) Warn(msg string)  { l.zap.Warn(msg) }
func (l *logger) Error(msg string) { l.zap.Error(msg) }

func (l *logger) Trace(msg string) {
	if l.verbosity >= 2 {
		l.zap.Debug("TRACE: " + msg)
	}
}

func (l *logger) WithFields(fields Fields) Logger {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}

	return &logger{
		zap:       l.zap.With(zapFields...),
		verbosity: l.verbosity,
	}
}
