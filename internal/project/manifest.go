package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"balsa/internal/types"
)

// ManifestName is the project file FindManifest looks for.
const ManifestName = "balsa.toml"

// SourceExt is the extension of analyzable units.
const SourceExt = ".bal"

// Manifest is a decoded balsa.toml.
//
//	[project]
//	name = "demo"
//
//	[analysis]
//	records = "declared"   # declared | open | closed
//	jobs = 4
//	max-diagnostics = 100
//
//	[units]
//	"lib/math" = "lib/math.bal"
//
// Without [units] every .bal file under the root is a unit named after its
// path.
type Manifest struct {
	Path     string
	Root     string
	Name     string
	Analysis Analysis
	Units    []UnitSpec
}

type Analysis struct {
	Records        types.RecordPolicy
	Jobs           int
	MaxDiagnostics int
}

// UnitSpec maps a unit name to its file. File is absolute.
type UnitSpec struct {
	Name string
	File string
}

type manifestConfig struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Analysis struct {
		Records        string `toml:"records"`
		Jobs           int    `toml:"jobs"`
		MaxDiagnostics int    `toml:"max-diagnostics"`
	} `toml:"analysis"`
	Units map[string]string `toml:"units"`
}

var (
	// ErrProjectSectionMissing indicates that [project] is missing in balsa.toml.
	ErrProjectSectionMissing = errors.New("missing [project]")
	// ErrProjectNameMissing indicates that [project].name is missing or empty.
	ErrProjectNameMissing = errors.New("missing [project].name")
)

// FindManifest walks up from startDir to locate balsa.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest decodes and validates balsa.toml, then lists the project's
// units sorted by name.
func LoadManifest(path string) (*Manifest, error) {
	var cfg manifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: %w", path, ErrProjectSectionMissing)
	}
	name := strings.TrimSpace(cfg.Project.Name)
	if !meta.IsDefined("project", "name") || name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrProjectNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	records, err := types.ParseRecordPolicy(strings.TrimSpace(cfg.Analysis.Records))
	if err != nil {
		return nil, fmt.Errorf("%s: [analysis].records: %w", path, err)
	}
	if cfg.Analysis.Jobs < 0 {
		return nil, fmt.Errorf("%s: [analysis].jobs must not be negative", path)
	}

	m := &Manifest{
		Path: path,
		Root: filepath.Dir(path),
		Name: name,
		Analysis: Analysis{
			Records:        records,
			Jobs:           cfg.Analysis.Jobs,
			MaxDiagnostics: cfg.Analysis.MaxDiagnostics,
		},
	}
	if meta.IsDefined("units") {
		for unit, rel := range cfg.Units {
			norm, err := NormalizeUnitName(unit)
			if err != nil {
				return nil, fmt.Errorf("%s: [units] %q: %w", path, unit, err)
			}
			m.Units = append(m.Units, UnitSpec{Name: norm, File: filepath.Join(m.Root, filepath.FromSlash(rel))})
		}
	} else {
		units, err := DiscoverUnits(m.Root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m.Units = units
	}
	slices.SortFunc(m.Units, func(a, b UnitSpec) int { return strings.Compare(a.Name, b.Name) })
	return m, nil
}

// DiscoverUnits lists every .bal file under root. Hidden directories are
// skipped.
func DiscoverUnits(root string) ([]UnitSpec, error) {
	var out []UnitSpec
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != SourceExt {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name, err := NormalizeUnitName(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, UnitSpec{Name: name, File: p})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover units: %w", err)
	}
	return out, nil
}

// NormalizeUnitName turns a unit path into its canonical "a/b" form: the
// .bal extension is dropped, backslashes become '/', and empty, "." and ".."
// segments are rejected.
func NormalizeUnitName(name string) (string, error) {
	name = strings.TrimSuffix(name, SourceExt)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", errors.New("invalid unit name")
	}
	segs := strings.Split(name, "/")
	for _, seg := range segs {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("invalid unit name %q", name)
		}
	}
	return strings.Join(segs, "/"), nil
}
