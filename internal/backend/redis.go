package backend

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix is the key prefix used when none is configured.
const DefaultRedisKeyPrefix = "lldap:"

// RedisBackend looks up stored passwords in Redis under
// <prefix>user:<normalized dn>. It is safe for concurrent use because the
// go-redis client pools its connections.
type RedisBackend struct {
	client redis.Cmdable
	prefix string
}

// NewRedisBackend creates a RedisBackend using client. An empty prefix
// selects DefaultRedisKeyPrefix.
func NewRedisBackend(client redis.Cmdable, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) key(dn string) string {
	return b.prefix + "user:" + NormalizeDN(dn)
}

// Ping checks that Redis is reachable.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return errors.Wrap(b.client.Ping(ctx).Err(), "backend: redis ping")
}

// SetPassword stores a password value for dn.
func (b *RedisBackend) SetPassword(ctx context.Context, dn, storedPassword string) error {
	if NormalizeDN(dn) == "" {
		return errors.Wrap(ErrInvalidDN, "set password")
	}
	if storedPassword == "" {
		return errors.Wrapf(ErrInvalidPasswordFormat, "set password %s", dn)
	}
	if err := b.client.Set(ctx, b.key(dn), storedPassword, 0).Err(); err != nil {
		return errors.Wrapf(err, "backend: redis set %s", dn)
	}
	return nil
}

// DeleteUser removes dn.
func (b *RedisBackend) DeleteUser(ctx context.Context, dn string) error {
	return errors.Wrapf(b.client.Del(ctx, b.key(dn)).Err(), "backend: redis del %s", dn)
}

// Bind implements Backend. A missing key, a store failure and a wrong
// password all refuse the bind.
func (b *RedisBackend) Bind(ctx context.Context, dn, password string) error {
	if NormalizeDN(dn) == "" {
		return ErrInvalidCredentials
	}

	stored, err := b.client.Get(ctx, b.key(dn)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return errors.Wrap(err, "backend: redis get")
	}

	if err := VerifyPassword(password, stored); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
