package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("LEDGERBUDDY_TEST_DIR", "/data")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty path", "", ""},
		{"absolute path unchanged", "/var/lib/app.db", "/var/lib/app.db"},
		{"tilde prefix", "~/app.db", filepath.Join(home, "app.db")},
		{"bare tilde", "~", home},
		{"env var", "$LEDGERBUDDY_TEST_DIR/app.db", "/data/app.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	path, err := DefaultDatabasePath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "ledgerbuddy.db", filepath.Base(path))
}
