package ldap

import "github.com/pkg/errors"

// ErrDecode is the root of every error produced while turning bytes into an
// Operation. The connection that sees it sends a disconnection notice and
// closes.
var ErrDecode = errors.New("ldap: decode error")

// decodeError wraps ErrDecode with a description of what was wrong.
func decodeError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDecode, format, args...)
}
