package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"balsa/internal/diag"
	"balsa/internal/project"
)

// diskCacheSchema changes whenever CachedUnit changes shape.
const diskCacheSchema uint16 = 2

// DiskCache keeps the outcome of checking a unit on disk, keyed by the unit
// hash and the analysis options. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedUnit is what a cache hit replays: the unit's diagnostics.
type CachedUnit struct {
	Schema      uint16
	Name        string
	Path        string
	ContentHash project.Digest
	UnitHash    project.Digest
	Diagnostics []CachedDiagnostic
}

type CachedDiagnostic struct {
	Severity  uint8
	Code      uint16
	Path      string
	Line      uint32
	Column    uint32
	EndLine   uint32
	EndColumn uint32
	Message   string
	Notes     []CachedDiagnostic `msgpack:",omitempty"`
}

// OpenDiskCache opens $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "units", hex.EncodeToString(key[:])+".mp")
}

// Put writes a payload through a temp file and an atomic rename.
func (c *DiskCache) Put(key project.Digest, payload *CachedUnit) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("cache: %w", rmErr)
		}
	}()

	payload.Schema = diskCacheSchema
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("cache: encode %s: %w", payload.Name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return os.Rename(f.Name(), p)
}

// Get loads a payload. Entries written by another schema count as misses.
func (c *DiskCache) Get(key project.Digest) (*CachedUnit, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: %w", err)
	}
	defer f.Close()
	var out CachedUnit
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", f.Name(), err)
	}
	if out.Schema != diskCacheSchema {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(c.dir, "units")); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func cacheDiagnostics(in []diag.Located) []CachedDiagnostic {
	if len(in) == 0 {
		return nil
	}
	out := make([]CachedDiagnostic, len(in))
	for i, d := range in {
		out[i] = CachedDiagnostic{
			Severity:  uint8(d.Severity),
			Code:      uint16(d.Code),
			Path:      d.Path,
			Line:      d.Line,
			Column:    d.Column,
			EndLine:   d.EndLine,
			EndColumn: d.EndColumn,
			Message:   d.Message,
			Notes:     cacheDiagnostics(d.Notes),
		}
	}
	return out
}

func restoreDiagnostics(in []CachedDiagnostic) []diag.Located {
	if len(in) == 0 {
		return nil
	}
	out := make([]diag.Located, len(in))
	for i, d := range in {
		out[i] = diag.Located{
			Severity:  diag.Severity(d.Severity),
			Code:      diag.Code(d.Code),
			Path:      d.Path,
			Line:      d.Line,
			Column:    d.Column,
			EndLine:   d.EndLine,
			EndColumn: d.EndColumn,
			Message:   d.Message,
			Notes:     restoreDiagnostics(d.Notes),
		}
	}
	return out
}
