package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"lookbook/internal/api"
	"lookbook/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// Exit codes. An incomplete upload kept some records and is safe to re-run.
const (
	exitOK               = 0
	exitFailure          = 1
	exitUsage            = 2
	exitUploadIncomplete = 3
	exitUnreachable      = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if cfg.TrustedProjectConfigPath != "" {
		fmt.Fprintf(stderr, "warning: using trusted project config from %s\n", cfg.TrustedProjectConfigPath)
	}

	root := newRootCmd(cfg)
	root.SetArgs(args)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		for _, line := range formatCLIError(err) {
			fmt.Fprintln(stderr, line)
		}
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	var (
		usage  *usageError
		apiErr *api.APIError
		netErr net.Error
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage):
		return exitUsage
	case errors.As(err, &apiErr):
		if apiErr.Upload != nil {
			return exitUploadIncomplete
		}
		return exitFailure
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return exitUnreachable
	}
	return exitFailure
}
