// Package logger provides the process-wide structured logger: a
// log/slog.Logger writing severity-leveled, optionally JSON-formatted
// records to stderr or to a rotating file via lumberjack. Every
// package in this module logs through here rather than constructing its
// own logger.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity mirrors the five levels the CLI's --log-severity flag accepts.
// slog has no trace level, so TRACE maps to a custom level below slog's
// Debug, which the handler's custom level names render as "TRACE".
type Severity int

const (
	SeverityTrace Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityOff
)

const (
	levelTrace = slog.Level(-8)
	levelWarn  = slog.LevelWarn
)

func (s Severity) slogLevel() slog.Level {
	switch s {
	case SeverityTrace:
		return levelTrace
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return levelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelError + 100
	}
}

// ParseSeverity parses a --log-severity flag (or logging.severity config)
// value, defaulting to INFO on anything unrecognized.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return SeverityTrace
	case "DEBUG":
		return SeverityDebug
	case "WARNING", "WARN":
		return SeverityWarning
	case "ERROR":
		return SeverityError
	case "OFF":
		return SeverityOff
	default:
		return SeverityInfo
	}
}

var defaultLogger = slog.New(newHandler(os.Stderr, SeverityInfo.slogLevel(), false))

// Config controls where and how the process logger writes.
type Config struct {
	Severity   Severity
	JSON       bool
	FilePath   string // empty means stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init (re)configures the process-wide logger. Called once at startup from
// the mount command after flags/config are parsed.
func Init(cfg Config) {
	var w io.Writer = os.Stderr
	if cfg.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 512),
			MaxBackups: orDefault(cfg.MaxBackups, 10),
			MaxAge:     orDefault(cfg.MaxAgeDays, 0),
			Compress:   true,
		}
	}
	defaultLogger = slog.New(newHandler(w, cfg.Severity.slogLevel(), cfg.JSON))
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}

func newHandler(w io.Writer, level slog.Level, json bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl, _ := a.Value.Any().(slog.Level)
				a.Value = slog.StringValue(levelName(lvl))
				a.Key = "severity"
			}
			return a
		},
	}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func levelName(l slog.Level) string {
	switch {
	case l <= levelTrace:
		return "TRACE"
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < levelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

func Tracef(format string, args ...any) { logf(context.Background(), levelTrace, format, args...) }
func Debugf(format string, args ...any) { logf(context.Background(), slog.LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(context.Background(), slog.LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(context.Background(), levelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(context.Background(), slog.LevelError, format, args...) }

func logf(ctx context.Context, level slog.Level, format string, args ...any) {
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	defaultLogger.Log(ctx, level, msg)
}
