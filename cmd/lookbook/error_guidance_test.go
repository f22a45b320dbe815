package main

import (
	"net"
	"strings"
	"testing"

	"lookbook/internal/api"
)

func TestFormatCLIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "network",
			err:  &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true},
			want: "hint: start local server manually with: lookbook srv",
		},
		{
			name: "unknown service",
			err:  &api.APIError{Status: 404, Message: "api error: 404 Not Found"},
			want: "hint: verify LOOKBOOK_API_URL points to a lookbook server.",
		},
		{
			name: "unauthorized",
			err:  &api.APIError{Status: 401, Code: "unauthorized", Message: "unauthorized"},
			want: "hint: set LOOKBOOK_CURATOR_PASSWORD to the curator password configured on the server.",
		},
		{
			name: "internal",
			err:  &api.APIError{Status: 500, Code: "internal", Message: "internal error"},
			want: "hint: server returned an internal error; check server logs for details.",
		},
		{
			name: "upload busy",
			err:  &api.APIError{Status: 409, Code: "conflict", Message: "upload already in progress"},
			want: "hint: wait for the running upload to finish before starting another.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lines := formatCLIError(tc.err)
			if !containsLine(lines, tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, lines)
			}
		})
	}
}

func TestFormatCLIErrorListsFailedPropagation(t *testing.T) {
	err := &api.APIError{
		Status:  502,
		Code:    "remote_write_failed",
		Message: "1 of 3 back-references failed",
		Upload: &api.UploadResponse{
			UploadID: "u1",
			State:    "failed",
			Propagation: api.PropagationResponse{Targets: []api.TargetResponse{
				{Collection: "items", ID: "blue-jeans"},
				{Collection: "brands", ID: "acme", Error: "disk full"},
			}},
		},
	}

	lines := formatCLIError(err)
	if !containsLine(lines, "hint: brands/acme is missing its back-references; re-run the upload to retry.") {
		t.Fatalf("expected failed target hint, got %v", lines)
	}
	for _, line := range lines {
		if strings.Contains(line, "items/blue-jeans") {
			t.Fatalf("unexpected hint for successful target: %v", lines)
		}
	}
	if containsLine(lines, "hint: server returned an internal error; check server logs for details.") {
		t.Fatalf("502 should not get the internal error hint: %v", lines)
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}
