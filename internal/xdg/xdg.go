package xdg

import (
	"os"
	"path/filepath"
)

// XDGDirs resolves configuration locations per the XDG Base Directory layout.
type XDGDirs struct {
	configHome string
	configDirs []string
}

func NewXDGDirs() *XDGDirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "/tmp"
		}
	}

	x := &XDGDirs{}

	x.configHome = os.Getenv("XDG_CONFIG_HOME")
	if x.configHome == "" {
		x.configHome = filepath.Join(homeDir, ".config")
	}

	configDirsEnv := os.Getenv("XDG_CONFIG_DIRS")
	if configDirsEnv == "" {
		x.configDirs = []string{"/etc/xdg"}
	} else {
		x.configDirs = filepath.SplitList(configDirsEnv)
	}

	return x
}

func (x *XDGDirs) ConfigHome() string {
	return x.configHome
}

// ConfigDirs returns the preference-ordered base directories, user first.
func (x *XDGDirs) ConfigDirs() []string {
	return append([]string{x.configHome}, x.configDirs...)
}

func (x *XDGDirs) AppConfigDir(appName string) string {
	return filepath.Join(x.configHome, appName)
}

// FindConfigFile returns the first existing appName/name across ConfigDirs,
// or the user-level path when none exists.
func (x *XDGDirs) FindConfigFile(appName, name string) string {
	for _, dir := range x.ConfigDirs() {
		p := filepath.Join(dir, appName, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(x.AppConfigDir(appName), name)
}
