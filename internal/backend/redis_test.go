package backend

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisBackendBind(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	b := NewRedisBackend(client, "test:")

	stored, err := HashPassword(adminPassword, SchemeArgon2)
	require.NoError(t, err)
	require.NoError(t, b.SetPassword(ctx, "CN=Admin, DC=Example, DC=Com", stored))

	got, err := mr.Get("test:user:" + adminDN)
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	assert.NoError(t, b.Bind(ctx, adminDN, adminPassword))
	assert.ErrorIs(t, b.Bind(ctx, adminDN, "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, b.Bind(ctx, "cn=ghost,dc=example,dc=com", adminPassword), ErrInvalidCredentials)
	assert.ErrorIs(t, b.Bind(ctx, "", ""), ErrInvalidCredentials)
}

func TestRedisBackendDefaultPrefix(t *testing.T) {
	mr, client := newTestRedis(t)
	b := NewRedisBackend(client, "")

	require.NoError(t, mr.Set(DefaultRedisKeyPrefix+"user:"+adminDN, "{CLEARTEXT}"+adminPassword))
	assert.NoError(t, b.Bind(context.Background(), adminDN, adminPassword))
}

func TestRedisBackendDeleteUser(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	b := NewRedisBackend(client, "")

	require.NoError(t, b.SetPassword(ctx, adminDN, adminPassword))
	require.NoError(t, b.DeleteUser(ctx, adminDN))
	assert.ErrorIs(t, b.Bind(ctx, adminDN, adminPassword), ErrInvalidCredentials)
}

func TestRedisBackendSetPasswordValidation(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	b := NewRedisBackend(client, "")

	assert.ErrorIs(t, b.SetPassword(ctx, "", adminPassword), ErrInvalidDN)
	assert.ErrorIs(t, b.SetPassword(ctx, adminDN, ""), ErrInvalidPasswordFormat)
}

func TestRedisBackendOutage(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	b := NewRedisBackend(client, "")

	require.NoError(t, b.SetPassword(ctx, adminDN, adminPassword))
	require.NoError(t, b.Ping(ctx))

	mr.Close()

	err := b.Bind(ctx, adminDN, adminPassword)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Error(t, b.Ping(ctx))
}
