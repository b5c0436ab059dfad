package diag

import (
	"slices"
	"sync"
)

// Bag collects diagnostics for one unit. It is append-only; Add is safe for
// concurrent use so project-level reporters can share one bag per unit.
type Bag struct {
	mu      sync.Mutex
	items   []*Diagnostic
	max     int
	dropped int
}

// NewBag creates a bag that keeps at most max entries (0 = unlimited).
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add returns false once the limit is reached.
func (b *Bag) Add(d *Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Dropped reports how many diagnostics exceeded the limit.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// Items returns a copy of the collected diagnostics.
func (b *Bag) Items() []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// FirstError returns the earliest error by emission order.
func (b *Bag) FirstError() *Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if d.Severity >= SevError {
			return d
		}
	}
	return nil
}

// Sort orders by file, start, end, severity (desc), code.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	slices.SortStableFunc(b.items, func(x, y *Diagnostic) int {
		switch {
		case x.Primary.File != y.Primary.File:
			return cmpU(uint32(x.Primary.File), uint32(y.Primary.File))
		case x.Primary.Start != y.Primary.Start:
			return cmpU(x.Primary.Start, y.Primary.Start)
		case x.Primary.End != y.Primary.End:
			return cmpU(x.Primary.End, y.Primary.End)
		case x.Severity != y.Severity:
			return int(y.Severity) - int(x.Severity)
		}
		return int(x.Code) - int(y.Code)
	})
}

func cmpU(a, b uint32) int {
	if a < b {
		return -1
	}
	return 1
}
