// ABOUTME: Integration tests for healthtrack CLI.
// ABOUTME: Runs the built binary against a temp SQLite store across processes.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary integration test in short mode")
	}

	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(t.TempDir(), "healthtrack")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/healthtrack")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	// Isolated config and data directories
	dataDir := t.TempDir()
	configDir := t.TempDir()
	workDir := t.TempDir()

	run := func(args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Dir = workDir
		cmd.Env = append(os.Environ(),
			"XDG_CONFIG_HOME="+configDir,
			"HEALTHTRACK_BACKEND=sqlite",
			"HEALTHTRACK_DATA_DIR="+dataDir,
			"NO_COLOR=1",
		)
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	mustRun := func(args ...string) string {
		t.Helper()
		output, err := run(args...)
		if err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, output)
		}
		return output
	}

	output := mustRun("register", "alex@example.com", "--password", "secret1")
	if !strings.Contains(output, "Registered and signed in as alex@example.com") {
		t.Errorf("Unexpected register output: %s", output)
	}

	// The session survives into a new process.
	output = mustRun("whoami")
	if !strings.Contains(output, "alex@example.com") {
		t.Errorf("Expected restored session, got: %s", output)
	}

	output = mustRun("add", "--weight", "71.4", "--bp", "118/76")
	if !strings.Contains(output, "Added reading") {
		t.Errorf("Expected 'Added reading' in output, got: %s", output)
	}
	mustRun("add", "--steps", "10400", "--sleep", "7.5")

	output = mustRun("list")
	if !strings.Contains(output, "weight 71.4 kg") || !strings.Contains(output, "steps 10400") {
		t.Errorf("Expected both records in list output, got: %s", output)
	}

	output = mustRun("summary")
	if !strings.Contains(output, "Weekly Steps") || strings.Contains(output, "sample data") {
		t.Errorf("Unexpected summary output: %s", output)
	}

	mustRun("logout")
	output, err := run("list")
	if err == nil {
		t.Errorf("Expected list to fail after logout, got: %s", output)
	}
	if !strings.Contains(output, "not signed in") {
		t.Errorf("Expected not signed in error, got: %s", output)
	}

	mustRun("login", "alex@example.com", "--password", "secret1")
	output = mustRun("export", "json")
	if !strings.Contains(output, `"tool": "healthtrack"`) {
		t.Errorf("Unexpected export output: %s", output)
	}
}
