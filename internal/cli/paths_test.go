package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
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
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	c := New(os.Stderr, LogInfo)
	c.config.Cache.Dir = "/srv/seqgraph-cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/srv/seqgraph-cache" {
		t.Errorf("cacheDir() = %q, want the configured dir", dir)
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(os.Stderr, LogInfo)

	cc, err := c.newCache(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cc.(interface{ Dir() string }); ok {
		t.Error("newCache(noCache) returned a file cache")
	}

	cc, err = c.newCache(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cc.(interface{ Dir() string }); !ok {
		t.Errorf("newCache() = %T, want a file cache", cc)
	}

	c.config.Cache.RedisURL = "not a url"
	if _, err := c.newCache(context.Background(), false); err == nil {
		t.Error("newCache with a bad redis URL succeeded")
	}
}
