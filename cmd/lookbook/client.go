package main

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"time"

	"lookbook/internal/api"
	"lookbook/internal/config"
)

const (
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
	serverProbeTimeout = 500 * time.Millisecond
)

// withClient runs fn against the configured API, starting a short-lived
// local server when none answers.
func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	client := api.NewClient(cfg.APIURL)

	stop, err := ensureServer(client, cfg)
	if err != nil {
		return err
	}
	defer stop()

	return fn(client)
}

func ensureServer(client *api.Client, cfg *config.Config) (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), serverProbeTimeout)
	defer cancel()
	if err := client.Ping(ctx); err == nil {
		return func() {}, nil
	}

	child, err := startServerProcess(cfg)
	if err != nil {
		return nil, err
	}
	stop := func() {
		_ = child.Process.Kill()
		_ = child.Wait()
	}

	if err := waitForServer(client, serverStartTimeout); err != nil {
		stop()
		return nil, err
	}
	return stop, nil
}

// startServerProcess re-executes this binary as "srv" with the resolved
// store and blob locations pinned in its environment.
func startServerProcess(cfg *config.Config) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	child := exec.Command(exe, "srv")
	child.Env = append(os.Environ(),
		"LOOKBOOK_API_URL="+cfg.APIURL,
		"LOOKBOOK_STORE_BACKEND="+cfg.Store.Backend,
		"LOOKBOOK_STORE_PATH="+cfg.Store.Path,
		"LOOKBOOK_BLOB_ROOT="+cfg.Blobs.Root,
	)
	child.Stdout = io.Discard
	child.Stderr = io.Discard

	if err := child.Start(); err != nil {
		return nil, err
	}
	return child, nil
}

func waitForServer(client *api.Client, timeout time.Duration) error {
	ticker := time.NewTicker(serverPollInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*serverPollInterval)
		err := client.Ping(ctx)
		cancel()
		switch {
		case err == nil:
			return nil
		case !isConnRefused(err):
			// Something else owns the port.
			return err
		}

		select {
		case <-deadline:
			return errors.New("server did not start in time")
		case <-ticker.C:
		}
	}
}

func isConnRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
