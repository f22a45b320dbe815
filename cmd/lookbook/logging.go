package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"lookbook/internal/config"
)

const logLevelEnvKey = "LOOKBOOK_LOG_LEVEL"

// logLevelSource orders the places a log level can come from; later wins.
type logLevelSource int

const (
	levelFromDefault logLevelSource = iota
	levelFromConfig
	levelFromEnv
	levelFromFlag
)

func (s logLevelSource) String() string {
	switch s {
	case levelFromFlag:
		return "--log-level"
	case levelFromEnv:
		return logLevelEnvKey
	case levelFromConfig:
		return "log_level"
	}
	return "default"
}

type logLevelSetting struct {
	raw  string
	from logLevelSource
}

func resolveLogLevel(flagLevel, envLevel, configLevel string) logLevelSetting {
	candidates := []logLevelSetting{
		{raw: flagLevel, from: levelFromFlag},
		{raw: envLevel, from: levelFromEnv},
		{raw: configLevel, from: levelFromConfig},
	}
	for _, c := range candidates {
		if strings.TrimSpace(c.raw) != "" {
			return c
		}
	}
	return logLevelSetting{from: levelFromDefault}
}

// setupLogging installs the process logger on stderr. A bad --log-level
// stops the command; a bad env or config value falls back with a warning.
func setupLogging(flagLevel, configLevel string) (string, error) {
	return setupLoggingTo(os.Stderr, flagLevel, configLevel)
}

func setupLoggingTo(w io.Writer, flagLevel, configLevel string) (string, error) {
	setting := resolveLogLevel(flagLevel, os.Getenv(logLevelEnvKey), configLevel)
	level, err := parseLogLevel(setting.raw)
	var warning string
	if err != nil {
		if setting.from == levelFromFlag {
			return "", usagef("invalid --log-level %q", flagLevel)
		}
		level, _ = parseLogLevel("")
		warning = fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", setting.from, setting.raw, config.DefaultLogLevel)
	}
	slog.SetDefault(newLogger(w, level))
	return warning, nil
}

var namedLogLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseLogLevel accepts level names and numeric slog levels. Blank means
// config.DefaultLogLevel.
func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		value = config.DefaultLogLevel
	}
	if level, ok := namedLogLevels[value]; ok {
		return level, nil
	}
	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With("app", "lookbook")
}
