// Package backend provides the credential stores and entry sources that the
// LDAP session engine calls into.
//
// # Overview
//
// A Backend answers one question: is this password valid for this DN. The
// session engine treats every non-nil error the same way, so an unknown DN, a
// wrong password and an unreachable store all look identical to the client.
//
// Two implementations are provided:
//
//   - MemoryBackend keeps users in a map and is filled from configuration or
//     a TOML users file (LoadUsersFile).
//   - RedisBackend reads stored passwords from Redis keys of the form
//     <prefix>user:<normalized dn>.
//
// A Directory yields the entries that answer a search. StaticDirectory serves
// a fixed list, by default the entries returned by DefaultEntries, or the
// contents of a TOML entries file (LoadEntriesFile).
//
// # Stored Passwords
//
// Stored values carry a scheme prefix:
//
//	{SSHA256}base64(sha256(password + salt) + salt)
//	{ARGON2}$argon2id$v=19$m=65536,t=1,p=4$salt$hash
//	{BCRYPT}$2a$10$...
//	{CLEARTEXT}secret
//
// A value without a prefix is compared as cleartext. HashPassword produces
// values in any of the supported schemes:
//
//	stored, err := backend.HashPassword("secret", "SSHA256")
//	mem := backend.NewMemoryBackend()
//	mem.AddUser("cn=admin,dc=example,dc=com", stored)
//
// # DN Normalization
//
// DNs are compared after NormalizeDN: lower case, surrounding whitespace
// removed and spaces around ',' and '=' dropped, so "CN=Admin, DC=Example"
// and "cn=admin,dc=example" name the same user.
package backend
