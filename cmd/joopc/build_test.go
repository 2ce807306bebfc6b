package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/joop/manifest"
)

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, manifest.FileName), "[project]\nname = \"app\"\n")
	writeFile(t, filepath.Join(dir, "src", "app.joop"), goodSource)
	return dir
}

func TestLoadProject_CacheOpened(t *testing.T) {
	dir := writeProject(t)
	p, err := loadProject(dir, false, true)
	if err != nil {
		t.Fatal(err)
	}
	defer p.close()
	if p.cache == nil {
		t.Fatal("cache not opened")
	}
	if _, err := os.Stat(filepath.Join(dir, ".joop", "cache.db")); err != nil {
		t.Errorf("cache database missing: %v", err)
	}
}

func TestLoadProject_WithoutCache(t *testing.T) {
	dir := writeProject(t)
	p, err := loadProject(dir, false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer p.close()
	if p.cache != nil {
		t.Error("cache opened although caching was not requested")
	}
	if _, err := os.Stat(filepath.Join(dir, ".joop")); !os.IsNotExist(err) {
		t.Errorf("cache directory created: %v", err)
	}
}

func TestBuildCommand_NoCache(t *testing.T) {
	dir := writeProject(t)
	if code := handleBuildCommand([]string{"-C", dir, "-no-cache"}); code != 0 {
		t.Fatalf("build exit = %d, want 0", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "app.js")); err != nil {
		t.Errorf("output not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".joop", "cache.db")); !os.IsNotExist(err) {
		t.Errorf("-no-cache build touched the cache database: %v", err)
	}
}
