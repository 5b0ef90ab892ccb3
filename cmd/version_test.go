package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/schemadiff/schemadiff/internal/version"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs([]string{"version"})

	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(output, "schemadiff v"+version.Version()) {
		t.Errorf("expected output to start with 'schemadiff v%s', got: %s", version.Version(), output)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected a single line, got: %q", buf.String())
	}
}
