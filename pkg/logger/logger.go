// Package logger provides the structured logger shared by every component.
// It wraps logrus so callers get WithField/WithError chaining and a
// per-component field without importing logrus directly.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingConfig controls level, encoding and destination.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"NFT_LOG_LEVEL"`
	Format     string `yaml:"format" env:"NFT_LOG_FORMAT"`
	Output     string `yaml:"output" env:"NFT_LOG_OUTPUT"`
	FilePrefix string `yaml:"file_prefix" env:"NFT_LOG_FILE_PREFIX"`
}

// Logger is a component-scoped logrus entry.
type Logger struct {
	*logrus.Entry
}

// New builds a logger from configuration. Unknown levels fall back to info,
// and a file output that cannot be opened falls back to stderr.
func New(cfg LoggingConfig) *Logger {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	out, openErr := openOutput(cfg)
	base.SetOutput(out)
	if openErr != nil {
		base.WithError(openErr).Warn("log file unavailable, writing to stderr")
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// NewDefault returns an info-level text logger tagged with the component name.
func NewDefault(component string) *Logger {
	return New(LoggingConfig{Level: "info", Format: "text", Output: "stderr"}).Named(component)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{Entry: logrus.NewEntry(base)}
}

// Named returns a child logger carrying a component field.
func (l *Logger) Named(component string) *Logger {
	if l == nil {
		return NewDefault(component)
	}
	return &Logger{Entry: l.Entry.WithField("component", component)}
}

// With returns a child logger carrying the given field.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}

func openOutput(cfg LoggingConfig) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "file":
		prefix := cfg.FilePrefix
		if prefix == "" {
			prefix = "nft_layer"
		}
		name := fmt.Sprintf("%s-%s.log", prefix, time.Now().UTC().Format("20060102"))
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return os.Stderr, err
		}
		return f, nil
	default:
		return os.Stderr, fmt.Errorf("unknown log output %q", cfg.Output)
	}
}
