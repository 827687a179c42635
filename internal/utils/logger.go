package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelError LogLevel = "error"
)

type Logger struct {
	level      LogLevel
	zap        *zap.Logger
	RawBodyLog bool
}

func NewLogger(level string, rawBodyLog bool) *Logger {
	return newLogger(level, rawBodyLog, false)
}

// NewProductionLogger writes JSON lines instead of the console format.
func NewProductionLogger(level string, rawBodyLog bool) *Logger {
	return newLogger(level, rawBodyLog, true)
}

func newLogger(level string, rawBodyLog bool, jsonOutput bool) *Logger {
	logLevel := parseLogLevel(level)

	var encoder zapcore.Encoder
	if jsonOutput {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapLevel(logLevel))

	return &Logger{
		level:      logLevel,
		zap:        zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.ErrorOutput(zapcore.Lock(os.Stderr))),
		RawBodyLog: rawBodyLog,
	}
}

func NewDiscardLogger() *Logger {
	return &Logger{
		level: LevelInfo,
		zap:   zap.NewNop(),
	}
}

func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Zap exposes the underlying logger for middleware that logs structured fields.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

func (l *Logger) Info(reqID *string, format string, v ...any) {
	l.zap.Info(fmt.Sprintf(format, v...), requestField(reqID)...)
}

func (l *Logger) Error(reqID *string, format string, v ...any) {
	l.zap.Error(fmt.Sprintf(format, v...), requestField(reqID)...)
}

func (l *Logger) Debug(reqID *string, format string, v ...any) {
	if l.level != LevelDebug {
		return
	}
	l.zap.Debug(fmt.Sprintf(format, v...), requestField(reqID)...)
}

func (l *Logger) Fatal(v ...any) {
	l.zap.Fatal(fmt.Sprint(v...))
}

func (l *Logger) Sync() {
	_ = l.zap.Sync()
}

func requestField(reqID *string) []zap.Field {
	if reqID == nil || *reqID == "" {
		return nil
	}
	return []zap.Field{zap.String("request_id", *reqID)}
}
