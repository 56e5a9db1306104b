// Package logger provides structured logging using zap.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Faultbox/objmesh/internal/config"
)

// Log is the global logger instance.
var Log *zap.Logger

// Sugar is the sugared logger for convenient logging.
var Sugar *zap.SugaredLogger

// helpers backs the package-level Debug/Info/Warn/Error functions; it skips
// one frame so the caller is reported, not this package.
var helpers *zap.Logger

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// Options configures New.
type Options struct {
	Level string
	File  FileConfig
	// Console is the console sink; nil disables console output.
	Console io.Writer
}

// Init initializes the global logger with the given level and optional file
// output. Console output goes to stderr so converted data can be piped from
// stdout.
func Init(level string, logFile string) error {
	opts := Options{Level: level, Console: os.Stderr}
	if logFile != "" {
		opts.File = DefaultFileConfig(logFile)
	}
	return InitWithOptions(opts)
}

// InitFromConfig initializes the global logger from the logging section.
func InitFromConfig(cfg config.LoggingConfig) error {
	return Init(cfg.Level, cfg.LogFile)
}

// InitWithOptions initializes the global logger.
func InitWithOptions(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	Log = l
	Sugar = Log.Sugar()
	helpers = Log.WithOptions(zap.AddCallerSkip(1))
	return nil
}

// New builds a logger without touching the globals.
func New(opts Options) (*zap.Logger, error) {
	lvl := parseLevel(opts.Level)

	var cores []zapcore.Core

	if opts.Console != nil {
		enc := zapcore.NewConsoleEncoder(encoderConfig(
			zapcore.TimeEncoderOfLayout("15:04:05"),
			zapcore.CapitalColorLevelEncoder,
		))
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(opts.Console), lvl))
	}

	if opts.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
			LocalTime:  true,
		}
		enc := zapcore.NewConsoleEncoder(encoderConfig(
			zapcore.ISO8601TimeEncoder,
			zapcore.CapitalLevelEncoder,
		))
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(fileWriter), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func encoderConfig(timeEnc zapcore.TimeEncoder, levelEnc zapcore.LevelEncoder) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       timeEnc,
		EncodeLevel:      levelEnc,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func current() *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	return Log
}

// Named returns a child of the global logger for one component.
// Before Init it returns a no-op logger.
func Named(component string) *zap.Logger {
	return current().Named(component)
}

// Sync flushes any buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func helper() *zap.Logger {
	if helpers == nil {
		return zap.NewNop()
	}
	return helpers
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	helper().Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	helper().Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	helper().Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	helper().Error(msg, fields...)
}
