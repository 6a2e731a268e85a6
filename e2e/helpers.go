package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildBinary builds cmd/pyrefactor into a temporary directory
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "pyrefactor")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/pyrefactor")

	// Project root is one level up from the e2e directory
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build pyrefactor binary: %v\n%s", err, out)
	}
	return binaryPath
}

// runBinary runs the binary without progress bars and returns its exit code
func runBinary(t *testing.T, binaryPath string, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "PYREFACTOR_NO_PROGRESS=1", "NO_COLOR=1")
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), out.String(), errOut.String()
	}
	if err != nil {
		t.Fatalf("Failed to run %s: %v", binaryPath, err)
	}
	return 0, out.String(), errOut.String()
}

func createTestPythonFile(t *testing.T, dir, filename, content string) {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", filename, err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}
}

// createTestConfigFile creates a .pyrefactor.toml that directs report
// files to outputDir
func createTestConfigFile(t *testing.T, testDir, outputDir string) {
	t.Helper()
	configFile := filepath.Join(testDir, ".pyrefactor.toml")
	configContent := fmt.Sprintf("[pyrefactor]\nmin_unit_lines = 3\n\n[output]\ndirectory = %q\n", outputDir)
	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
}
