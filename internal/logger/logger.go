// Package logger builds the zap logger shared by the server and the CLI.
package logger

import (
    "os"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New returns a logger for the given level ("debug", "info", "warn",
// "error"; default "info") and format ("json" or "console"; default
// "json").  A non-empty service name is attached to every entry.
func New(level, format, service string) (*zap.Logger, error) {
    var cfg zap.Config
    if format == "console" {
        cfg = zap.NewDevelopmentConfig()
    } else {
        cfg = zap.NewProductionConfig()
        cfg.EncoderConfig.TimeKey = "timestamp"
        cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
        cfg.OutputPaths = []string{"stdout"}
        cfg.ErrorOutputPaths = []string{"stderr"}
    }
    cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

    l, err := cfg.Build()
    if err != nil {
        return nil, err
    }
    if service != "" {
        l = l.With(zap.String("service", service))
    }
    if host, err := os.Hostname(); err == nil && host != "" {
        l = l.With(zap.String("hostname", host))
    }
    return l, nil
}

// ParseLevel maps a level name to a zapcore level, falling back to info.
func ParseLevel(level string) zapcore.Level {
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
