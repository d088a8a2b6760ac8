package backend

import (
	"context"
	"sync"
)

// StaticDirectory answers searches from a fixed, ordered set of entries.
// Entries are matched against the search base by DN suffix; the scope and
// filter of the request are not evaluated.
type StaticDirectory struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewStaticDirectory creates a directory holding entries in the given order.
func NewStaticDirectory(entries ...*Entry) *StaticDirectory {
	return &StaticDirectory{entries: entries}
}

// DefaultEntries returns the two sample entries served when no entries file
// is configured.
func DefaultEntries() []*Entry {
	return []*Entry{
		NewEntry("cn=hello,dc=example,dc=com").
			SetAttribute("objectClass", "cursed").
			SetAttribute("cn", "hello"),
		NewEntry("cn=world,dc=example,dc=com").
			SetAttribute("objectClass", "cursed").
			SetAttribute("cn", "world"),
	}
}

// Add appends an entry.
func (d *StaticDirectory) Add(entry *Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, entry)
}

// Len returns the number of entries held.
func (d *StaticDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Search implements Directory.
func (d *StaticDirectory) Search(ctx context.Context, baseDN string) ([]*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*Entry, 0, len(d.entries))
	for _, entry := range d.entries {
		if IsUnder(entry.DN, baseDN) {
			result = append(result, entry)
		}
	}
	return result, nil
}
