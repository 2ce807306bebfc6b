package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/joop/cache"
)

const (
	goodSource = "namespace App {\n    class Widget {\n        function draw() { }\n    }\n}\n"
	badSource  = "namespace App {\n  clas Widget { }\n}\n"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBatch_PerFileOutputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "widget.joop")
	out := filepath.Join(dir, "dist", "nested", "widget.js")
	writeFile(t, in, goodSource)

	var stdout bytes.Buffer
	b := &batch{stdout: &stdout}
	failed := b.run(context.Background(), []string{in}, []string{out}, false)
	if failed != 0 {
		t.Fatalf("failed = %d, output:\n%s", failed, stdout.String())
	}
	if code := b.finish(failed); code != 0 {
		t.Errorf("exit = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "Compilation successful.") {
		t.Errorf("stdout = %q", stdout.String())
	}

	js := readFile(t, out)
	if !strings.Contains(js, "App.Widget = Widget;") {
		t.Errorf("output missing export:\n%s", js)
	}
}

func TestBatch_FailureContinues(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.joop")
	good := filepath.Join(dir, "good.joop")
	writeFile(t, bad, badSource)
	writeFile(t, good, goodSource)

	var stdout bytes.Buffer
	b := &batch{stdout: &stdout}
	failed := b.run(context.Background(),
		[]string{bad, good},
		[]string{filepath.Join(dir, "bad.js"), filepath.Join(dir, "good.js")},
		false)
	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	if code := b.finish(failed); code != exitCompileFailed {
		t.Errorf("exit = %d, want %d", code, exitCompileFailed)
	}

	want := bad + " (Line 2, Column 3): expecting namespace or class declaration"
	if !strings.Contains(stdout.String(), want) {
		t.Errorf("stdout = %q, want it to contain %q", stdout.String(), want)
	}
	if strings.Contains(stdout.String(), "Compilation successful.") {
		t.Error("success message printed after a failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "good.js")); err != nil {
		t.Errorf("good input was not compiled: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.js")); !os.IsNotExist(err) {
		t.Error("failed input produced an output file")
	}
}

func TestBatch_MSBuildDiagnostic(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.joop")
	writeFile(t, bad, badSource)

	var stdout bytes.Buffer
	b := &batch{stdout: &stdout, msbuild: true}
	b.run(context.Background(), []string{bad}, []string{filepath.Join(dir, "bad.js")}, false)

	want := bad + "(2,3,2,7) : error CERROR : "
	if !strings.HasPrefix(stdout.String(), want) {
		t.Errorf("stdout = %q, want prefix %q", stdout.String(), want)
	}
}

func TestBatch_SingleFileTruncatesThenAppends(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.joop")
	b2 := filepath.Join(dir, "b.joop")
	writeFile(t, a, "namespace Alpha { }\n")
	writeFile(t, b2, "namespace Beta { }\n")
	out := filepath.Join(dir, "bundle.js")
	writeFile(t, out, "STALE CONTENT\n")

	var stdout bytes.Buffer
	b := &batch{stdout: &stdout}
	if failed := b.run(context.Background(), []string{a, b2}, []string{out}, true); failed != 0 {
		t.Fatalf("failed = %d, output:\n%s", failed, stdout.String())
	}

	js := readFile(t, out)
	if strings.Contains(js, "STALE") {
		t.Error("single-file output was not truncated")
	}
	alpha := strings.Index(js, "// Namespace Alpha")
	beta := strings.Index(js, "// Namespace Beta")
	if alpha < 0 || beta < 0 || alpha > beta {
		t.Errorf("outputs not appended in order:\n%s", js)
	}
	if !strings.HasSuffix(js, "\n\n") {
		t.Errorf("output does not end with a blank line: %q", js[len(js)-10:])
	}
}

func TestBatch_MissingInput(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	b := &batch{stdout: &stdout}
	missing := filepath.Join(dir, "missing.joop")
	if failed := b.run(context.Background(), []string{missing}, []string{filepath.Join(dir, "m.js")}, false); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if !strings.Contains(stdout.String(), "cannot read input") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestBatch_Cache(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(filepath.Join(dir, ".joop", "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	in := filepath.Join(dir, "widget.joop")
	out := filepath.Join(dir, "widget.js")
	writeFile(t, in, goodSource)

	ctx := context.Background()
	var stdout bytes.Buffer
	b := &batch{stdout: &stdout, cache: c}
	if failed := b.run(ctx, []string{in}, []string{out}, false); failed != 0 {
		t.Fatalf("first run failed:\n%s", stdout.String())
	}
	if n, _ := c.Len(ctx); n != 1 {
		t.Fatalf("cache holds %d entries, want 1", n)
	}
	first := readFile(t, out)

	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}
	if failed := b.run(ctx, []string{in}, []string{out}, false); failed != 0 {
		t.Fatalf("second run failed:\n%s", stdout.String())
	}
	if got := readFile(t, out); got != first {
		t.Errorf("cached output differs:\n%s\nwant\n%s", got, first)
	}
	if n, _ := c.Len(ctx); n != 1 {
		t.Errorf("cache holds %d entries after a hit, want 1", n)
	}
}
