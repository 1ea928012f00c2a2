package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDirsFromEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/home/u/.cfg")
	t.Setenv("XDG_CONFIG_DIRS", "/a"+string(filepath.ListSeparator)+"/b")

	x := NewXDGDirs()
	assert.Equal(t, "/home/u/.cfg", x.ConfigHome())
	assert.Equal(t, []string{"/home/u/.cfg", "/a", "/b"}, x.ConfigDirs())
	assert.Equal(t, "/home/u/.cfg/ojuzman", x.AppConfigDir("ojuzman"))
}

func TestFindConfigFile(t *testing.T) {
	home := t.TempDir()
	system := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_CONFIG_DIRS", system)

	x := NewXDGDirs()
	assert.Equal(t, filepath.Join(home, "app", "c.toml"), x.FindConfigFile("app", "c.toml"))

	require.NoError(t, os.MkdirAll(filepath.Join(system, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(system, "app", "c.toml"), nil, 0o644))
	assert.Equal(t, filepath.Join(system, "app", "c.toml"), x.FindConfigFile("app", "c.toml"))

	require.NoError(t, os.MkdirAll(filepath.Join(home, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "app", "c.toml"), nil, 0o644))
	assert.Equal(t, filepath.Join(home, "app", "c.toml"), x.FindConfigFile("app", "c.toml"))
}
