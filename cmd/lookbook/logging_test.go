package main

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    slog.Level
		wantErr bool
	}{
		{name: "blank uses default", raw: "  ", want: slog.LevelInfo},
		{name: "mixed case", raw: "DeBuG", want: slog.LevelDebug},
		{name: "warning alias", raw: "warning", want: slog.LevelWarn},
		{name: "error", raw: "error", want: slog.LevelError},
		{name: "numeric", raw: "-4", want: slog.LevelDebug},
		{name: "unknown name", raw: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse level: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResolveLogLevelPrecedence(t *testing.T) {
	tests := []struct {
		name                string
		flag, env, cfgLevel string
		want                logLevelSetting
	}{
		{name: "flag wins", flag: "debug", env: "error", cfgLevel: "warn", want: logLevelSetting{raw: "debug", from: levelFromFlag}},
		{name: "env over config", env: "warn", cfgLevel: "info", want: logLevelSetting{raw: "warn", from: levelFromEnv}},
		{name: "blank flag skipped", flag: " ", cfgLevel: "error", want: logLevelSetting{raw: "error", from: levelFromConfig}},
		{name: "nothing set", want: logLevelSetting{from: levelFromDefault}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveLogLevel(tt.flag, tt.env, tt.cfgLevel); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		flag        string
		cfgLevel    string
		wantUsage   bool
		wantWarning string
		wantDebug   bool
	}{
		{name: "flag overrides bad env", env: "verbose", flag: "debug", cfgLevel: "info", wantDebug: true},
		{name: "bad flag is a usage error", flag: "verbose", cfgLevel: "info", wantUsage: true},
		{name: "bad env falls back", env: "verbose", cfgLevel: "debug", wantWarning: "invalid LOOKBOOK_LOG_LEVEL=\"verbose\"; defaulting to info"},
		{name: "bad config falls back", cfgLevel: "loud", wantWarning: "invalid log_level=\"loud\"; defaulting to info"},
		{name: "config applies", cfgLevel: "debug", wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(logLevelEnvKey, tt.env)
			prev := slog.Default()
			t.Cleanup(func() { slog.SetDefault(prev) })

			var buf bytes.Buffer
			warning, err := setupLoggingTo(&buf, tt.flag, tt.cfgLevel)
			if tt.wantUsage {
				var usage *usageError
				if !errors.As(err, &usage) {
					t.Fatalf("expected usage error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("setup logging: %v", err)
			}
			if !strings.Contains(warning, tt.wantWarning) || (tt.wantWarning == "" && warning != "") {
				t.Fatalf("expected warning %q, got %q", tt.wantWarning, warning)
			}

			slog.Debug("upload state", "upload_id", "run-1")
			if got := strings.Contains(buf.String(), "upload_id=run-1"); got != tt.wantDebug {
				t.Fatalf("debug line written = %v, want %v (%q)", got, tt.wantDebug, buf.String())
			}
			if tt.wantDebug && !strings.Contains(buf.String(), "app=lookbook") {
				t.Fatalf("expected app attribute, got %q", buf.String())
			}
		})
	}
}
