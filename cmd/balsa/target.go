package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"balsa/internal/driver"
	"balsa/internal/project"
	"balsa/internal/types"
)

// target is what a command analyzes: the project that owns the path, or a
// single file when no balsa.toml covers it.
type target struct {
	manifest *project.Manifest
	project  *driver.Project
	// unit is set when the argument named a file.
	unit string
}

func loadTarget(path string) (*target, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}
	manifestPath, found, err := project.FindManifest(dir)
	if err != nil {
		return nil, err
	}

	var m *project.Manifest
	if found {
		if m, err = project.LoadManifest(manifestPath); err != nil {
			return nil, err
		}
	}
	t := &target{}
	switch {
	case info.IsDir() && m == nil:
		units, err := project.DiscoverUnits(abs)
		if err != nil {
			return nil, err
		}
		if len(units) == 0 {
			return nil, fmt.Errorf("no %s units under %s", project.SourceExt, path)
		}
		m = &project.Manifest{Root: abs, Name: filepath.Base(abs), Units: units}
	case !info.IsDir():
		if unit, ok := manifestUnit(m, abs); ok {
			t.unit = unit
			break
		}
		// not part of the project: analyze it alone
		name, err := project.NormalizeUnitName(filepath.Base(abs))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m = &project.Manifest{Root: dir, Name: name, Units: []project.UnitSpec{{Name: name, File: abs}}}
		t.unit = name
	}

	p, err := driver.LoadProject(m)
	if err != nil {
		return nil, err
	}
	t.manifest, t.project = m, p
	return t, nil
}

func manifestUnit(m *project.Manifest, file string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, u := range m.Units {
		if samePath(u.File, file) {
			return u.Name, true
		}
	}
	return "", false
}

func samePath(a, b string) bool {
	a, errA := filepath.Abs(a)
	b, errB := filepath.Abs(b)
	return errA == nil && errB == nil && filepath.Clean(a) == filepath.Clean(b)
}

// analysisOptions merges balsa.toml [analysis] with the command line; flags
// the user set win.
func analysisOptions(cmd *cobra.Command, m *project.Manifest) (driver.Options, error) {
	flags := cmd.Root().PersistentFlags()
	var opts driver.Options

	maxDiags, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if m != nil && m.Analysis.MaxDiagnostics > 0 && !flags.Changed("max-diagnostics") {
		maxDiags = m.Analysis.MaxDiagnostics
	}
	opts.MaxDiagnostics = maxDiags

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs < 0 {
		return opts, errors.New("--jobs must not be negative")
	}
	if m != nil && !flags.Changed("jobs") {
		jobs = m.Analysis.Jobs
	}
	opts.Jobs = jobs

	records, err := flags.GetString("records")
	if err != nil {
		return opts, fmt.Errorf("failed to get records flag: %w", err)
	}
	if records = strings.TrimSpace(records); records != "" {
		policy, err := types.ParseRecordPolicy(records)
		if err != nil {
			return opts, fmt.Errorf("--records: %w", err)
		}
		opts.Types.RecordPolicy = policy
	} else if m != nil {
		opts.Types.RecordPolicy = m.Analysis.Records
	}

	if opts.Timings, err = flags.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return opts, nil
}

// pathArg is the first argument, or the working directory.
func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
