package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	path, err := defaultConfigPath()
	if err != nil {
		t.Fatalf("defaultConfigPath() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", appName, "config.toml"); path != want {
		t.Errorf("defaultConfigPath() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	path, _ = defaultConfigPath()
	if want := filepath.Join("/etc/xdg", appName, "config.toml"); path != want {
		t.Errorf("defaultConfigPath() with XDG_CONFIG_HOME = %q, want %q", path, want)
	}
}
