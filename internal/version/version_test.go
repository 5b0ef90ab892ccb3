package version

import (
	"regexp"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if !regexp.MustCompile(`^\d+\.\d+\.\d+$`).MatchString(Version()) {
		t.Errorf("Version() = %q, want semantic version", Version())
	}
}

func TestString(t *testing.T) {
	got := String()
	for _, part := range []string{"schemadiff v" + Version(), GitCommit, Platform()} {
		if !strings.Contains(got, part) {
			t.Errorf("String() = %q, missing %q", got, part)
		}
	}
}
