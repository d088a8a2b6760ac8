package backend

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Backend errors.
var (
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("backend: invalid credentials")
	// ErrInvalidDN is returned when a DN is empty or malformed.
	ErrInvalidDN = errors.New("backend: invalid DN")
)

// Backend authenticates bind requests. Implementations must be safe for
// concurrent use: every client connection calls Bind from its own goroutine.
type Backend interface {
	// Bind returns nil if password is valid for dn. Any non-nil error means
	// the bind is refused; callers do not distinguish between causes.
	Bind(ctx context.Context, dn, password string) error
}

// Directory yields the entries answering a search. Implementations must be
// safe for concurrent use.
type Directory interface {
	// Search returns the entries under baseDN in the order they should be
	// sent to the client.
	Search(ctx context.Context, baseDN string) ([]*Entry, error)
}

// Attribute is one named, multi-valued attribute of an entry.
type Attribute struct {
	Type   string
	Values []string
}

// Entry represents an LDAP entry with multi-valued attributes. Attributes
// keep the order they were defined in.
type Entry struct {
	DN         string
	Attributes []Attribute
}

// NewEntry creates a new Entry with the given DN.
func NewEntry(dn string) *Entry {
	return &Entry{DN: dn}
}

// SetAttribute replaces the values of the named attribute, appending it if
// the entry does not have it yet.
func (e *Entry) SetAttribute(name string, values ...string) *Entry {
	for i := range e.Attributes {
		if strings.EqualFold(e.Attributes[i].Type, name) {
			e.Attributes[i].Values = values
			return e
		}
	}
	e.Attributes = append(e.Attributes, Attribute{Type: name, Values: values})
	return e
}

// GetAttribute returns the values for the given attribute name.
// Returns nil if the attribute does not exist.
func (e *Entry) GetAttribute(name string) []string {
	for _, attr := range e.Attributes {
		if strings.EqualFold(attr.Type, name) {
			return attr.Values
		}
	}
	return nil
}

// NormalizeDN returns the canonical form of a DN used for lookups: lower
// case, without surrounding whitespace and without spaces around the ','
// and '=' separators.
func NormalizeDN(dn string) string {
	dn = strings.ToLower(strings.TrimSpace(dn))
	if dn == "" {
		return ""
	}
	rdns := strings.Split(dn, ",")
	for i, rdn := range rdns {
		parts := strings.SplitN(rdn, "=", 2)
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		rdns[i] = strings.Join(parts, "=")
	}
	return strings.Join(rdns, ",")
}

// IsUnder reports whether dn equals baseDN or lies below it. An empty baseDN
// matches every DN.
func IsUnder(dn, baseDN string) bool {
	base := NormalizeDN(baseDN)
	if base == "" {
		return true
	}
	n := NormalizeDN(dn)
	return n == base || strings.HasSuffix(n, ","+base)
}
