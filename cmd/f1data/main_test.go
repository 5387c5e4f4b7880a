package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/preston-bernstein/f1-data-service/internal/testutil"
)

func setupRoot(t *testing.T) testutil.Layout {
	t.Helper()
	layout := testutil.NewLayout(t, testutil.SampleStore)
	t.Setenv("F1_ROOT", layout.Root)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("NOT_FOUND_FORMAT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	return layout
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestGetPrintsStore(t *testing.T) {
	layout := setupRoot(t)
	before := layout.ReadStore(t)

	code, out, _ := runCLI(t, "--option", "0")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (%s)", code, out)
	}
	if !strings.HasPrefix(out, "{\n    \"teams\": [") {
		t.Fatalf("expected 4-space indented document, got %s", out)
	}
	if string(layout.ReadStore(t)) != string(before) {
		t.Fatalf("expected GET to leave the store untouched")
	}
}

func TestPostAppendsTeam(t *testing.T) {
	layout := setupRoot(t)
	name := layout.WriteRequest(t, "new_team.json", `{"body":{"name":"Williams","drivers":[{"name":"Albon","points":4}]}}`)

	code, out, _ := runCLI(t, "--option", "1", "--name", name)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (%s)", code, out)
	}
	if got := testutil.JSONPath(t, []byte(out), "message").String(); got != "Team added successfully" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := testutil.JSONPath(t, layout.ReadStore(t), "teams.3.name").String(); got != "Williams" {
		t.Fatalf("expected Williams appended, got %q", got)
	}
}

func TestNotFoundPrintsLegacyBody(t *testing.T) {
	layout := setupRoot(t)
	name := layout.WriteRequest(t, "delete.json", `{"team":"Alpine"}`)

	code, out, _ := runCLI(t, "--option", "3", "--name", name)
	if code != 1 || out != "404\n" {
		t.Fatalf("expected legacy 404 with exit 1, got %d %q", code, out)
	}
}

func TestNotFoundJSONFormat(t *testing.T) {
	layout := setupRoot(t)
	t.Setenv("NOT_FOUND_FORMAT", "json")
	name := layout.WriteRequest(t, "delete.json", `{"team":"Alpine"}`)

	code, out, _ := runCLI(t, "--option", "3", "--name", name)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if got := testutil.JSONPath(t, []byte(out), "error").String(); got != "Team not found" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestUsageErrors(t *testing.T) {
	setupRoot(t)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing option", args: nil, want: "option"},
		{name: "non integer option", args: []string{"--option", "two"}, want: "two"},
		{name: "out of range option", args: []string{"--option", "7"}, want: "invalid option 7"},
		{name: "mutation without name", args: []string{"--option", "2"}, want: "Path is required"},
	}
	for _, tc := range cases {
		code, out, _ := runCLI(t, tc.args...)
		if code != 1 {
			t.Fatalf("%s: expected exit 1, got %d", tc.name, code)
		}
		if got := testutil.JSONPath(t, []byte(out), "error").String(); !strings.Contains(got, tc.want) {
			t.Fatalf("%s: expected error containing %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestLogsGoToStderr(t *testing.T) {
	setupRoot(t)
	t.Setenv("LOG_LEVEL", "info")

	code, out, errOut := runCLI(t, "--option", "0")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if strings.Contains(out, "operation complete") {
		t.Fatalf("expected logs kept off stdout")
	}
	if !strings.Contains(errOut, "operation complete") || !strings.Contains(errOut, "request_id=") {
		t.Fatalf("expected operation log with request id on stderr, got %s", errOut)
	}
}

// Smoke test to ensure serve honors SKIP_SERVER_RUN and does not block test runs.
func TestServeSkipsWhenEnvSet(t *testing.T) {
	t.Setenv("SKIP_SERVER_RUN", "1")
	if code, out, _ := runCLI(t, "serve"); code != 0 {
		t.Fatalf("expected serve smoke run to exit 0, got %d (%s)", code, out)
	}
}

func TestUsageErrorsWinOverBrokenConfig(t *testing.T) {
	layout := setupRoot(t)
	if err := os.WriteFile(filepath.Join(layout.Root, ".env"), []byte("LOG_LEVEL=\"unterminated\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("MAX_BODY_BYTES", "1MiB")

	code, out, _ := runCLI(t, "--option", "1")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	want := "Path is required for POST, PUT, DELETE and PATCH options"
	if got := testutil.JSONPath(t, []byte(out), "error").String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	code, out, _ = runCLI(t, "--option", "9", "--name", "x.json")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if got := testutil.JSONPath(t, []byte(out), "error").String(); !strings.Contains(got, "invalid option 9") {
		t.Fatalf("expected invalid option error, got %q", got)
	}
}

func TestInvalidEnvValuesDoNotBreakGet(t *testing.T) {
	setupRoot(t)
	t.Setenv("METRICS_ENABLED", "maybe")
	t.Setenv("MAX_BODY_BYTES", "1MiB")
	t.Setenv("STORE_LOCK_TIMEOUT", "soon")

	code, out, _ := runCLI(t, "--option", "0")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (%s)", code, out)
	}
	if got := testutil.JSONPath(t, []byte(out), "teams.#").Int(); got != 3 {
		t.Fatalf("expected store printed, got %s", out)
	}
}
