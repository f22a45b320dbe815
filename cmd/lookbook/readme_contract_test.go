package main

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"lookbook/internal/config"
	"lookbook/internal/upload"
)

var backticked = regexp.MustCompile("`([^`]+)`")

func TestReadmeConfigKeys(t *testing.T) {
	section := readmeSection(t, "## Configuration")
	var documented []string
	for _, line := range bulletsAfter(t, section, "Supported config keys:") {
		documented = append(documented, firstBackticked(t, line))
	}

	assertSameSet(t, "config keys", documented, config.AllowedKeys())
}

func TestReadmeCommands(t *testing.T) {
	section := readmeSection(t, "## Commands")
	var documented []string
	for _, line := range strings.Split(fencedBlock(t, section), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "lookbook" {
			continue
		}
		var path []string
		for _, token := range fields[1:] {
			if strings.ContainsAny(token[:1], "<[-#") {
				break
			}
			path = append(path, token)
		}
		documented = append(documented, strings.Join(path, " "))
	}

	cfg := config.Default()
	assertSameSet(t, "commands", documented, leafCommands(newRootCmd(&cfg), ""))
}

func TestReadmeUploadStates(t *testing.T) {
	section := readmeSection(t, "## Upload manifests")
	idx := strings.Index(section, "An upload moves through")
	if idx < 0 {
		t.Fatal("README does not describe the upload states")
	}
	paragraph, _, _ := strings.Cut(section[idx:], "\n\n")

	var documented []string
	for _, m := range backticked.FindAllStringSubmatch(paragraph, -1) {
		documented = append(documented, m[1])
	}
	want := []string{
		string(upload.StateValidating),
		string(upload.StateBuildingTags),
		string(upload.StateCommittingItems),
		string(upload.StateCommittingImage),
		string(upload.StatePropagatingBackrefs),
		string(upload.StateDone),
		string(upload.StateFailed),
	}
	if !slices.Equal(documented, want) {
		t.Fatalf("README upload states out of order\ndocumented: %v\nwant:       %v", documented, want)
	}
}

func TestReadmeExitCodes(t *testing.T) {
	section := readmeSection(t, "## Exit codes")
	var documented []string
	for _, line := range bulletsAfter(t, section, "## Exit codes") {
		code, err := strconv.Atoi(firstBackticked(t, line))
		if err != nil {
			t.Fatalf("exit code bullet %q: %v", line, err)
		}
		documented = append(documented, strconv.Itoa(code))
	}

	var want []string
	for _, code := range []int{exitOK, exitFailure, exitUsage, exitUploadIncomplete, exitUnreachable} {
		want = append(want, strconv.Itoa(code))
	}
	assertSameSet(t, "exit codes", documented, want)
}

func TestReadmeEnvironment(t *testing.T) {
	documented := regexp.MustCompile(`LOOKBOOK_[A-Z0-9_]+`).FindAllString(readmeText(t), -1)
	for _, key := range []string{
		"LOOKBOOK_API_URL",
		"LOOKBOOK_STORE_BACKEND",
		"LOOKBOOK_STORE_PATH",
		"LOOKBOOK_BLOB_ROOT",
		"LOOKBOOK_ALLOWED_ITEM_MEDIA_TYPES",
		"LOOKBOOK_HTTP_TIMEOUT",
		logLevelEnvKey,
		"LOOKBOOK_CONFIG_DIR",
		"LOOKBOOK_TRUST_PROJECT_CONFIG",
		"LOOKBOOK_CURATOR_PASSWORD",
		"LOOKBOOK_ALLOW_REMOTE",
		"LOOKBOOK_DB_MAX_OPEN_CONNS",
		"LOOKBOOK_DB_CONN_MAX_LIFETIME",
	} {
		if !slices.Contains(documented, key) {
			t.Errorf("README does not mention %s", key)
		}
	}
}

func readmeText(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(file), "..", "..", "README.md"))
	if err != nil {
		t.Fatalf("read README.md: %v", err)
	}
	return string(data)
}

// readmeSection returns heading and its body up to the next level-2 heading.
func readmeSection(t *testing.T, heading string) string {
	t.Helper()
	readme := readmeText(t)
	start := strings.Index(readme, heading+"\n")
	if start < 0 {
		t.Fatalf("README has no %q section", heading)
	}
	body := readme[start+len(heading):]
	if end := strings.Index(body, "\n## "); end >= 0 {
		body = body[:end]
	}
	return heading + body
}

// bulletsAfter returns the first run of "- " lines following marker.
func bulletsAfter(t *testing.T, section, marker string) []string {
	t.Helper()
	_, rest, ok := strings.Cut(section, marker)
	if !ok {
		t.Fatalf("README section lacks %q", marker)
	}
	var bullets []string
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- "):
			bullets = append(bullets, line)
		case len(bullets) > 0:
			return bullets
		}
	}
	if len(bullets) == 0 {
		t.Fatalf("no bullets after %q", marker)
	}
	return bullets
}

func fencedBlock(t *testing.T, section string) string {
	t.Helper()
	_, rest, ok := strings.Cut(section, "```bash\n")
	if !ok {
		t.Fatal("section has no bash block")
	}
	block, _, ok := strings.Cut(rest, "```")
	if !ok {
		t.Fatal("unterminated bash block")
	}
	return block
}

func firstBackticked(t *testing.T, line string) string {
	t.Helper()
	m := backticked.FindStringSubmatch(line)
	if m == nil {
		t.Fatalf("bullet %q has no backticked value", line)
	}
	return m[1]
}

func leafCommands(cmd *cobra.Command, prefix string) []string {
	var out []string
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}
		path := strings.TrimSpace(prefix + " " + child.Name())
		if sub := leafCommands(child, path); len(sub) > 0 {
			out = append(out, sub...)
		} else {
			out = append(out, path)
		}
	}
	return out
}

func assertSameSet(t *testing.T, what string, documented, actual []string) {
	t.Helper()
	documented = slices.Compact(slices.Sorted(slices.Values(documented)))
	actual = slices.Compact(slices.Sorted(slices.Values(actual)))
	if !slices.Equal(documented, actual) {
		t.Fatalf("README %s out of date\ndocumented: %v\nactual:     %v", what, documented, actual)
	}
}
