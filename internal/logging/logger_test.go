package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestLogger_KeysAndValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewWithCore(core)

	l.Info("bind successful", "dn", "cn=admin,dc=example,dc=com", "duration_ms", 2)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bind successful", entries[0].Message)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "cn=admin,dc=example,dc=com", fields["dn"])
	assert.EqualValues(t, 2, fields["duration_ms"])
}

func TestLogger_WithRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewWithCore(core).WithRequestID("req-1").WithFields("client", "127.0.0.1:1234")

	l.Warn("write error", "error", "broken pipe")
	l.Debug("unbind request received")

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		fields := e.ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "127.0.0.1:1234", fields["client"])
	}
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestLogger_LevelFilter(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := NewWithCore(core)

	l.Debug("dropped")
	l.Info("dropped")
	l.Error("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lldap.log")
	l := New(Config{Level: "debug", Format: "json", Output: path})

	l.Info("connection established", "client", "pipe")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"connection established"`)
	assert.Contains(t, string(data), `"client":"pipe"`)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("ignored", "k", "v")
	assert.NotNil(t, l.WithRequestID("x"))
	assert.NotNil(t, l.WithFields("k", "v"))
	assert.NoError(t, l.Sync())
}

func TestGenerateRequestID(t *testing.T) {
	ids := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := GenerateRequestID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		_, dup := ids[id]
		require.False(t, dup, "duplicate request ID %s", id)
		ids[id] = struct{}{}
	}
}
