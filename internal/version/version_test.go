package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredPlain(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	if got := Colored("1", "2", "3"); got != "1.2.3" {
		t.Fatalf("Colored = %q, want 1.2.3", got)
	}
}

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Fatal("Version should have a default value")
	}
}

func TestVersionOverride(t *testing.T) {
	orig, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = orig, origCommit }()

	Version, GitCommit = "1.2.3", "abc123"
	if Version != "1.2.3" || GitCommit != "abc123" {
		t.Fatalf("override failed: %q %q", Version, GitCommit)
	}
}
