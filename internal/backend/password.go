package backend

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"hash"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Password scheme prefixes as used in userPassword values (RFC 3112 style).
const (
	// SchemeSHA256 is the plain SHA-256 scheme prefix.
	SchemeSHA256 = "{SHA256}"
	// SchemeSSHA256 is the salted SHA-256 scheme prefix.
	SchemeSSHA256 = "{SSHA256}"
	// SchemeSHA512 is the plain SHA-512 scheme prefix.
	SchemeSHA512 = "{SHA512}"
	// SchemeSSHA512 is the salted SHA-512 scheme prefix.
	SchemeSSHA512 = "{SSHA512}"
	// SchemeArgon2 wraps an argon2id PHC string.
	SchemeArgon2 = "{ARGON2}"
	// SchemeBcrypt wraps a bcrypt hash.
	SchemeBcrypt = "{BCRYPT}"
	// SchemeCleartext indicates a cleartext password (for testing only).
	SchemeCleartext = "{CLEARTEXT}"
)

// Password verification errors.
var (
	// ErrInvalidPasswordFormat is returned when the stored password format is invalid.
	ErrInvalidPasswordFormat = errors.New("backend: invalid password format")
	// ErrUnsupportedScheme is returned when the password scheme is not supported.
	ErrUnsupportedScheme = errors.New("backend: unsupported password scheme")
	// ErrPasswordMismatch is returned when the password does not match.
	ErrPasswordMismatch = errors.New("backend: password mismatch")
)

const saltLength = 16

// argon2id parameters used by HashPassword.
const (
	argon2Memory      uint32 = 64 * 1024
	argon2Time        uint32 = 1
	argon2Parallelism uint8  = 4
	argon2KeyLength   uint32 = 32
)

// shaScheme describes one member of the {SHA*}/{SSHA*} family.
type shaScheme struct {
	newHash func() hash.Hash
	size    int
	salted  bool
}

var shaSchemes = map[string]shaScheme{
	SchemeSHA256:  {newHash: sha256.New, size: sha256.Size},
	SchemeSSHA256: {newHash: sha256.New, size: sha256.Size, salted: true},
	SchemeSHA512:  {newHash: sha512.New, size: sha512.Size},
	SchemeSSHA512: {newHash: sha512.New, size: sha512.Size, salted: true},
}

// VerifyPassword verifies a plaintext password against a stored value.
// The stored value is {SCHEME}payload; a value without a scheme prefix is
// compared as cleartext. Returns nil if the password matches.
func VerifyPassword(plaintext, stored string) error {
	if stored == "" {
		return ErrInvalidPasswordFormat
	}

	schemeEnd := strings.Index(stored, "}")
	if schemeEnd == -1 || !strings.HasPrefix(stored, "{") {
		return compareCleartext(plaintext, stored)
	}

	scheme := strings.ToUpper(stored[:schemeEnd+1])
	payload := stored[schemeEnd+1:]

	if s, ok := shaSchemes[scheme]; ok {
		return s.verify(plaintext, payload)
	}

	switch scheme {
	case SchemeCleartext:
		return compareCleartext(plaintext, payload)
	case SchemeArgon2:
		return verifyArgon2(plaintext, payload)
	case SchemeBcrypt:
		if err := bcrypt.CompareHashAndPassword([]byte(payload), []byte(plaintext)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return ErrPasswordMismatch
			}
			return ErrInvalidPasswordFormat
		}
		return nil
	default:
		return ErrUnsupportedScheme
	}
}

// HashPassword creates a stored password value using the given scheme.
// The scheme may be given with or without braces, e.g. "SSHA256".
func HashPassword(plaintext, scheme string) (string, error) {
	scheme = strings.ToUpper(scheme)
	if !strings.HasPrefix(scheme, "{") {
		scheme = "{" + scheme + "}"
	}

	if s, ok := shaSchemes[scheme]; ok {
		return s.hash(scheme, plaintext)
	}

	switch scheme {
	case SchemeCleartext:
		return SchemeCleartext + plaintext, nil
	case SchemeArgon2:
		return hashArgon2(plaintext)
	case SchemeBcrypt:
		h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
		if err != nil {
			return "", errors.Wrap(err, "bcrypt")
		}
		return SchemeBcrypt + string(h), nil
	default:
		return "", ErrUnsupportedScheme
	}
}

func compareCleartext(plaintext, stored string) error {
	if subtle.ConstantTimeCompare([]byte(plaintext), []byte(stored)) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// verify checks base64(hash || salt) against the plaintext.
func (s shaScheme) verify(plaintext, payload string) error {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalidPasswordFormat
	}
	if len(data) < s.size || (!s.salted && len(data) != s.size) {
		return ErrInvalidPasswordFormat
	}

	storedHash, salt := data[:s.size], data[s.size:]
	h := s.newHash()
	h.Write([]byte(plaintext))
	h.Write(salt)
	if subtle.ConstantTimeCompare(h.Sum(nil), storedHash) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

func (s shaScheme) hash(scheme, plaintext string) (string, error) {
	var salt []byte
	if s.salted {
		var err error
		if salt, err = randomBytes(saltLength); err != nil {
			return "", err
		}
	}
	h := s.newHash()
	h.Write([]byte(plaintext))
	h.Write(salt)
	data := append(h.Sum(nil), salt...)
	return scheme + base64.StdEncoding.EncodeToString(data), nil
}

// hashArgon2 produces {ARGON2}$argon2id$v=19$m=...,t=...,p=...$salt$hash.
func hashArgon2(plaintext string) (string, error) {
	salt, err := randomBytes(saltLength)
	if err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plaintext), salt, argon2Time, argon2Memory, argon2Parallelism, argon2KeyLength)
	return fmt.Sprintf("%s$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		SchemeArgon2, argon2.Version, argon2Memory, argon2Time, argon2Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func verifyArgon2(plaintext, phc string) error {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return ErrInvalidPasswordFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ErrInvalidPasswordFormat
	}
	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return ErrInvalidPasswordFormat
	}
	if memory == 0 || iterations == 0 || parallelism == 0 {
		return ErrInvalidPasswordFormat
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrInvalidPasswordFormat
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return ErrInvalidPasswordFormat
	}

	got := argon2.IDKey([]byte(plaintext), salt, iterations, memory, parallelism, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "generate salt")
	}
	return b, nil
}
