// Package version holds the balsa build fingerprint. The variables are
// overridden at build time via -ldflags.
package version

import "github.com/fatih/color"

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the analyzer.
	Version = Colored("0", "3", "0") + "-dev"

	GitCommit = ""
	// BuildDate is ISO-8601 when set.
	BuildDate = ""
)

// Colored renders major.minor.patch with one color per component. Colors are
// dropped when color.NoColor is set.
func Colored(major, minor, patch string) string {
	return versionMajorColor.Sprint(major) + "." + versionMinorColor.Sprint(minor) + "." + versionPatchColor.Sprint(patch)
}
