package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lookbook/internal/config"
	"lookbook/internal/ids"
)

// usageError marks a command line that cannot run as given.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// recordRefArg accepts a single id or display name of the given kind.
func recordRefArg(kind string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
			return usagef("%s id or name is required", kind)
		}
		return nil
	}
}

// imageIDArg accepts one content id. Images are never looked up by name.
func imageIDArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usagef("image id is required")
	}
	if !ids.Valid(args[0]) {
		return usagef("%q is not an image id (expected 64 lower-case hex characters)", args[0])
	}
	return nil
}

// brandNameArgs joins the words of a brand name, so quoting is optional.
func brandNameArgs(_ *cobra.Command, args []string) error {
	if strings.TrimSpace(strings.Join(args, "")) == "" {
		return usagef("brand name is required")
	}
	return nil
}

func manifestArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usagef("manifest path is required")
	}
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".yaml", ".yml":
		return nil
	}
	return usagef("manifest %s must be a .yaml or .yml file", args[0])
}

// configKeyArgs takes a known config key followed by extra values.
func configKeyArgs(extra int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != 1+extra {
			return usagef("%s", message)
		}
		if !config.IsAllowedKey(args[0]) {
			return usagef("unknown key: %s (allowed: %v)", args[0], config.AllowedKeys())
		}
		return nil
	}
}
