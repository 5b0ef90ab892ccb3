package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"
)

//go:embed VERSION
var versionFile string

// Build-time variables set via ldflags
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Version returns the current version of schemadiff
func Version() string {
	return strings.TrimSpace(versionFile)
}

// Platform returns the OS/architecture combination
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// String returns the one-line version banner printed by the CLI
func String() string {
	return fmt.Sprintf("schemadiff v%s (commit %s, built %s, %s)", Version(), GitCommit, BuildDate, Platform())
}

// PlanFormat returns the version of the JSON plan format
func PlanFormat() string {
	return "1.0.0"
}
