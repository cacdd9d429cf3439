//go:build integration

// Package integration provides integration tests for the latitude-go SDK.
package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strconv"
	"testing"
)

// isCI returns true if running in a CI environment.
// It checks for common CI environment variables.
func isCI() bool {
	// GitHub Actions, GitLab CI, CircleCI, Travis, Jenkins, etc.
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "TRAVIS", "JENKINS_URL"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// skipOrFailOnMissingEnv handles a missing environment variable.
// In CI environments, it fails loudly unless LATITUDE_SKIP_INTEGRATION is set.
// In local development, it skips the test gracefully.
func skipOrFailOnMissingEnv(t *testing.T, name string) {
	t.Helper()
	if isCI() && os.Getenv("LATITUDE_SKIP_INTEGRATION") == "" {
		t.Fatalf("%s not set (CI environment detected; set LATITUDE_SKIP_INTEGRATION=1 to skip)", name)
	}
	t.Skipf("%s not set", name)
}

// skipIfNoAPIKey skips the test if LATITUDE_API_KEY is not set.
// In CI, it fails unless LATITUDE_SKIP_INTEGRATION is set.
func skipIfNoAPIKey(t *testing.T) {
	t.Helper()
	if os.Getenv("LATITUDE_API_KEY") == "" {
		skipOrFailOnMissingEnv(t, "LATITUDE_API_KEY")
	}
}

// getAPIKey returns the Latitude API key from environment.
func getAPIKey(t *testing.T) string {
	t.Helper()
	key := os.Getenv("LATITUDE_API_KEY")
	if key == "" {
		t.Fatal("LATITUDE_API_KEY not set")
	}
	return key
}

// getProjectID returns the project id from LATITUDE_PROJECT_ID.
// Tests that need a project skip when it is not set.
func getProjectID(t *testing.T) uint64 {
	t.Helper()
	raw := os.Getenv("LATITUDE_PROJECT_ID")
	if raw == "" {
		skipOrFailOnMissingEnv(t, "LATITUDE_PROJECT_ID")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		t.Fatalf("LATITUDE_PROJECT_ID is not a number: %v", err)
	}
	return id
}

// getDocumentPath returns the path of a runnable prompt document from
// LATITUDE_DOCUMENT_PATH. Live run tests are account-specific, so they
// skip when no document is configured.
func getDocumentPath(t *testing.T) string {
	t.Helper()
	path := os.Getenv("LATITUDE_DOCUMENT_PATH")
	if path == "" {
		skipOrFailOnMissingEnv(t, "LATITUDE_DOCUMENT_PATH")
	}
	return path
}

// cliResult holds the result of running a CLI command.
type cliResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runCLI executes the latitude CLI with the given arguments.
// It uses the pre-built binary from TestMain for efficiency.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()

	binaryPath := getCliBinary()
	if binaryPath == "" {
		t.Fatal("CLI binary not built - TestMain may not have run")
	}

	// Run the CLI
	cmd := exec.Command(binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("Failed to run CLI: %v", err)
		}
	}

	return cliResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// runCLIWithStdin executes the latitude CLI with stdin input.
// It uses the pre-built binary from TestMain for efficiency.
func runCLIWithStdin(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	binaryPath := getCliBinary()
	if binaryPath == "" {
		t.Fatal("CLI binary not built - TestMain may not have run")
	}

	cmd := exec.Command(binaryPath, args...)
	cmd.Stdin = bytes.NewBufferString(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("Failed to run CLI: %v", err)
		}
	}

	return cliResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}
