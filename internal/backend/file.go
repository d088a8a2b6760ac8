package backend

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// usersFile is the TOML layout of a users file:
//
//	[[user]]
//	dn = "cn=admin,dc=example,dc=com"
//	password = "{SSHA256}..."
type usersFile struct {
	Users []struct {
		DN       string `toml:"dn"`
		Password string `toml:"password"`
	} `toml:"user"`
}

// entriesFile is the TOML layout of an entries file:
//
//	[[entry]]
//	dn = "cn=hello,dc=example,dc=com"
//
//	  [[entry.attribute]]
//	  type = "objectClass"
//	  values = ["cursed"]
type entriesFile struct {
	Entries []struct {
		DN         string `toml:"dn"`
		Attributes []struct {
			Type   string   `toml:"type"`
			Values []string `toml:"values"`
		} `toml:"attribute"`
	} `toml:"entry"`
}

// LoadUsersFile reads users from a TOML file into b. It returns the number of
// users added.
func LoadUsersFile(path string, b *MemoryBackend) (int, error) {
	var f usersFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return 0, errors.Wrapf(err, "parse users file %s", path)
	}

	for i, u := range f.Users {
		if err := b.AddUser(u.DN, u.Password); err != nil {
			return i, errors.Wrapf(err, "%s: user #%d", path, i+1)
		}
	}
	return len(f.Users), nil
}

// LoadEntriesFile reads entries from a TOML file, keeping file order for both
// entries and attributes.
func LoadEntriesFile(path string) ([]*Entry, error) {
	var f entriesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errors.Wrapf(err, "parse entries file %s", path)
	}

	entries := make([]*Entry, 0, len(f.Entries))
	for i, e := range f.Entries {
		if NormalizeDN(e.DN) == "" {
			return nil, errors.Wrapf(ErrInvalidDN, "%s: entry #%d", path, i+1)
		}
		entry := NewEntry(e.DN)
		for _, attr := range e.Attributes {
			if attr.Type == "" {
				return nil, errors.Errorf("%s: entry %s: attribute without type", path, e.DN)
			}
			entry.SetAttribute(attr.Type, attr.Values...)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
