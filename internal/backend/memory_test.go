package backend

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminDN       = "cn=admin,dc=example,dc=com"
	adminPassword = "secret"
)

func newMemoryBackend(t *testing.T) *MemoryBackend {
	t.Helper()

	stored, err := HashPassword(adminPassword, SchemeSSHA256)
	require.NoError(t, err)

	b := NewMemoryBackend()
	require.NoError(t, b.AddUser(adminDN, stored))
	return b
}

func TestMemoryBackendBind(t *testing.T) {
	b := newMemoryBackend(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		dn       string
		password string
		wantErr  bool
	}{
		{"valid", adminDN, adminPassword, false},
		{"normalized DN", "CN=Admin, DC=Example, DC=Com", adminPassword, false},
		{"wrong password", adminDN, "nope", true},
		{"unknown DN", "cn=ghost,dc=example,dc=com", adminPassword, true},
		{"anonymous", "", "", true},
		{"empty password", adminDN, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Bind(ctx, tt.dn, tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestMemoryBackendBindCancelled(t *testing.T) {
	b := newMemoryBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Bind(ctx, adminDN, adminPassword), context.Canceled)
}

func TestMemoryBackendAddUserValidation(t *testing.T) {
	b := NewMemoryBackend()

	assert.ErrorIs(t, b.AddUser("  ", "secret"), ErrInvalidDN)
	assert.ErrorIs(t, b.AddUser(adminDN, ""), ErrInvalidPasswordFormat)
	assert.Equal(t, 0, b.Len())
}

func TestMemoryBackendRemoveUser(t *testing.T) {
	b := newMemoryBackend(t)
	b.RemoveUser("CN=admin,dc=example,dc=com")

	assert.Equal(t, 0, b.Len())
	assert.ErrorIs(t, b.Bind(context.Background(), adminDN, adminPassword), ErrInvalidCredentials)
}

func TestMemoryBackendConcurrentBind(t *testing.T) {
	b := newMemoryBackend(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.NoError(t, b.Bind(ctx, adminDN, adminPassword))
			} else {
				assert.Error(t, b.Bind(ctx, adminDN, "wrong"))
			}
		}(i)
	}
	wg.Wait()
}

func TestNormalizeDN(t *testing.T) {
	tests := map[string]string{
		"":                             "",
		"   ":                          "",
		"cn=admin,dc=example,dc=com":   "cn=admin,dc=example,dc=com",
		" CN = Admin , DC=Example ":    "cn=admin,dc=example",
		"uid=John Smith,ou=People":     "uid=john smith,ou=people",
		"CN=Admin,  DC=Example,DC=COM": "cn=admin,dc=example,dc=com",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeDN(in), "NormalizeDN(%q)", in)
	}
}

func TestIsUnder(t *testing.T) {
	assert.True(t, IsUnder("cn=hello,dc=example,dc=com", "dc=example,dc=com"))
	assert.True(t, IsUnder("cn=hello,dc=example,dc=com", "DC=Example, DC=Com"))
	assert.True(t, IsUnder("dc=example,dc=com", "dc=example,dc=com"))
	assert.True(t, IsUnder("cn=hello,dc=example,dc=com", ""))
	assert.False(t, IsUnder("cn=hello,dc=example,dc=com", "dc=other,dc=com"))
	assert.False(t, IsUnder("cn=hello,dc=myexample,dc=com", "dc=example,dc=com"))
}
