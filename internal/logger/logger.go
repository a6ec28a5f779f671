package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"peoplecounter/internal/config"
)

const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	sugar  *zap.SugaredLogger
	files  map[string]*lumberjack.Logger
	logDir string
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) (*Logger, error) {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		logDir: config.LogDirectory,
		files:  make(map[string]*lumberjack.Logger),
	}
	l.sugar = zap.New(l.setupCores(), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	return l, nil
}

// setupCores builds one file core per level plus the console cores.
func (l *Logger) setupCores() zapcore.Core {
	infoLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level == zapcore.InfoLevel
	})
	warningLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level == zapcore.WarnLevel
	})
	errorLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level >= zapcore.ErrorLevel
	})
	stdoutLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level == zapcore.InfoLevel || level == zapcore.WarnLevel
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	return zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(l.openLogFile(InfoFile)), infoLevel),
		zapcore.NewCore(encoder, zapcore.AddSync(l.openLogFile(WarningFile)), warningLevel),
		zapcore.NewCore(encoder, zapcore.AddSync(l.openLogFile(ErrorFile)), errorLevel),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), stdoutLevel),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), errorLevel),
	)
}

// openLogFile returns a size-rotated appender for a log file in the log directory.
func (l *Logger) openLogFile(filename string) *lumberjack.Logger {
	file := &lumberjack.Logger{
		Filename:   filepath.Join(l.logDir, filename),
		MaxSize:    50,
		MaxBackups: 3,
	}
	l.files[filename] = file
	return file
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Sugar exposes the underlying zap logger for libraries that accept one.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// Close flushes pending entries and closes the log files.
func (l *Logger) Close() error {
	// Sync na stdout/stderr zwraca błąd na terminalach, ignorujemy go
	_ = l.sugar.Sync()

	var err error
	for _, file := range l.files {
		err = multierr.Append(err, file.Close())
	}
	return err
}
