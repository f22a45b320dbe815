package main

import (
	"context"
	"errors"
	"net"

	"lookbook/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized", "forbidden":
			lines = append(lines, "hint: set LOOKBOOK_CURATOR_PASSWORD to the curator password configured on the server.")
		case "resource_exhausted":
			lines = append(lines, "hint: another upload is running; retry shortly.")
		case "conflict":
			if apiErr.Upload == nil {
				lines = append(lines, "hint: wait for the running upload to finish before starting another.")
			}
		}
		if apiErr.Upload != nil {
			lines = append(lines, partialUploadHints(apiErr.Upload)...)
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify LOOKBOOK_API_URL points to a lookbook server.")
		}
		if apiErr.Status == 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase LOOKBOOK_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a lookbook server is running at LOOKBOOK_API_URL.",
			"hint: start local server manually with: lookbook srv",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

// partialUploadHints lists what an interrupted upload already stored.
func partialUploadHints(upload *api.UploadResponse) []string {
	lines := []string{"hint: upload " + upload.UploadID + " stopped in state " + upload.State + "; records already written were kept."}
	for _, target := range upload.Propagation.Targets {
		if target.Error != "" {
			lines = append(lines, "hint: "+target.Collection+"/"+target.ID+" is missing its back-references; re-run the upload to retry.")
		}
	}
	return lines
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
