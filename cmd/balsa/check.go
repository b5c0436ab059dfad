package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"balsa/internal/diag"
	"balsa/internal/diagfmt"
	"balsa/internal/driver"
	"balsa/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.bal|directory]",
	Short: "Analyze a unit or a whole project and report diagnostics",
	Long: `Analyze balsa units. A directory (or the working directory) is checked as a
project: balsa.toml is looked up from there, or every .bal file below it is a
unit. A file is checked together with the project that lists it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "short", "output format (short|pretty|json|sarif)")
	checkCmd.Flags().Int("context", 1, "source lines shown above each diagnostic in pretty format")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("cache", false, "reuse diagnostics of unchanged units from the disk cache")
	checkCmd.Flags().String("cache-dir", "", "disk cache directory (default: user cache dir)")
	checkCmd.Flags().Bool("clear-cache", false, "drop every disk cache entry before analyzing")
	checkCmd.Flags().String("ui", "", "progress view (auto|on|off; default $BALSA_UI or auto)")
	checkCmd.Flags().String("fail-on", "error", "lowest severity that fails the run (info|warning|error)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cleanup, err := startSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "short", "pretty", "json", "sarif":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	contextLines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	mode, err := resolveUIMode(cmd)
	if err != nil {
		return err
	}
	failOnValue, err := cmd.Flags().GetString("fail-on")
	if err != nil {
		return fmt.Errorf("failed to get fail-on flag: %w", err)
	}
	failOn, err := diag.ParseSeverity(failOnValue)
	if err != nil {
		return fmt.Errorf("--fail-on: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	t, err := loadTarget(pathArg(args))
	if err != nil {
		return err
	}
	opts, err := analysisOptions(cmd, t.manifest)
	if err != nil {
		return err
	}
	if opts.Cache, err = openCache(cmd); err != nil {
		return err
	}

	var res *driver.ProjectResult
	textual := format == "short" || format == "pretty"
	if textual && !quiet && t.unit == "" && shouldUseTUI(mode) {
		res, err = runAnalyzeWithUI(cmd.Context(), "checking "+t.manifest.Name, t.project, opts)
	} else {
		res, err = driver.AnalyzeProject(cmd.Context(), t.project, opts)
	}
	if err != nil {
		return err
	}

	units := res.Units
	if t.unit != "" {
		u, ok := res.Unit(t.unit)
		if !ok {
			return fmt.Errorf("unit %s was not analyzed", t.unit)
		}
		units = []*driver.UnitResult{u}
	}
	var diags []diag.Located
	for _, u := range units {
		diags = append(diags, u.Diagnostics...)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	switch format {
	case "short", "pretty":
		pretty := diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   contextLines,
			PathMode:  pathMode,
			BaseDir:   t.manifest.Root,
			ShowNotes: withNotes,
		}
		if format == "pretty" {
			err = diagfmt.Pretty(out, diags, res.FileSet, pretty)
		} else {
			err = diagfmt.Short(out, diags, pretty)
		}
		if err != nil {
			return fmt.Errorf("failed to print diagnostics: %w", err)
		}
		if !quiet {
			printSummary(cmd.ErrOrStderr(), units, diags)
		}
	case "json":
		err = diagfmt.JSON(out, diags, diagfmt.JSONOpts{
			PathMode:     pathMode,
			BaseDir:      t.manifest.Root,
			Max:          opts.MaxDiagnostics,
			IncludeNotes: withNotes,
		})
		if err != nil {
			return fmt.Errorf("failed to encode diagnostics: %w", err)
		}
	case "sarif":
		err = diagfmt.Sarif(out, diags, diagfmt.SarifRunMeta{
			ToolName:       "balsa",
			ToolVersion:    stripANSI(version.Version),
			InvocationArgs: os.Args[1:],
			PathMode:       pathMode,
			BaseDir:        t.manifest.Root,
		})
		if err != nil {
			return fmt.Errorf("failed to encode sarif log: %w", err)
		}
	}
	if opts.Timings {
		for _, u := range units {
			printTimings(cmd.ErrOrStderr(), u.Timings)
		}
		if len(units) > 1 {
			printTimings(cmd.ErrOrStderr(), res.Timings)
		}
	}

	if n := countAtLeast(diags, failOn); n > 0 {
		return fmt.Errorf("analysis failed with %d diagnostic(s) at or above %s", n, failOn)
	}
	return nil
}

// openCache opens the disk cache when --cache is set.
func openCache(cmd *cobra.Command) (*driver.DiskCache, error) {
	enabled, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	drop, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if !enabled && !drop {
		return nil, nil
	}
	var cache *driver.DiskCache
	if dir != "" {
		cache, err = driver.NewDiskCache(dir)
	} else {
		cache, err = driver.OpenDiskCache("balsa")
	}
	if err != nil {
		return nil, err
	}
	if drop {
		if err := cache.DropAll(); err != nil {
			return nil, err
		}
	}
	if !enabled {
		return nil, nil
	}
	return cache, nil
}

func printSummary(out io.Writer, units []*driver.UnitResult, diags []diag.Located) {
	var skipped, cached int
	for _, u := range units {
		switch {
		case u.Skipped:
			skipped++
		case u.Cached:
			cached++
		}
	}
	fmt.Fprintf(out, "checked %d unit(s): %s, %s",
		len(units),
		errorColor.Sprintf("%d error(s)", countSeverity(diags, diag.SevError)),
		warningColor.Sprintf("%d warning(s)", countSeverity(diags, diag.SevWarning)))
	if cached > 0 {
		fmt.Fprintf(out, ", %d cached", cached)
	}
	if skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", skipped)
	}
	fmt.Fprintln(out)
}

func countAtLeast(diags []diag.Located, sev diag.Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity >= sev {
			n++
		}
	}
	return n
}

func countSeverity(diags []diag.Located, sev diag.Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
