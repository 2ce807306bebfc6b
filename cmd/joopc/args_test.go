package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeSources creates the named files under dir with trivial content.
func writeSources(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("namespace App { }\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// ---------------------------------------------------------------------------
// Help and options
// ---------------------------------------------------------------------------

func TestParseArgs_Help(t *testing.T) {
	for _, args := range [][]string{nil, {"-m"}, {"-v", "-v"}} {
		inv, err := parseArgs(args)
		if err != nil {
			t.Fatalf("parseArgs(%q) failed: %v", args, err)
		}
		if !inv.Help {
			t.Errorf("parseArgs(%q).Help = false", args)
		}
	}
}

func TestParseArgs_VerboseAndMSBuild(t *testing.T) {
	inv, err := parseArgs([]string{"-v", "-v", "--MSBUILD"})
	if err != nil {
		t.Fatal(err)
	}
	if inv.Verbose != 2 {
		t.Errorf("Verbose = %d, want 2", inv.Verbose)
	}
	if !inv.MSBuild {
		t.Error("MSBuild = false, want true (flags are case-insensitive)")
	}
}

// ---------------------------------------------------------------------------
// Directory mode
// ---------------------------------------------------------------------------

func TestParseArgs_DirModeAutoName(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "b.joop", "a.joop", "sub/c.joop", "notes.txt")

	inv, err := parseArgs([]string{"-d", "-i", dir, "-a"})
	if err != nil {
		t.Fatal(err)
	}
	wantIn := []string{
		filepath.Join(dir, "a.joop"),
		filepath.Join(dir, "b.joop"),
		filepath.Join(dir, "sub", "c.joop"),
	}
	wantOut := []string{
		filepath.Join(dir, "a.js"),
		filepath.Join(dir, "b.js"),
		filepath.Join(dir, "sub", "c.js"),
	}
	if !reflect.DeepEqual(inv.Inputs, wantIn) {
		t.Errorf("Inputs = %q, want %q", inv.Inputs, wantIn)
	}
	if !reflect.DeepEqual(inv.Outputs, wantOut) {
		t.Errorf("Outputs = %q, want %q", inv.Outputs, wantOut)
	}
	if inv.SingleFile {
		t.Error("SingleFile = true")
	}
}

func TestParseArgs_DirModeRootOnlySingleFile(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "a.joop", "sub/c.joop")
	out := filepath.Join(dir, "all.js")

	inv, err := parseArgs([]string{"--dirmode", "--rootonly", "--indir", dir, "--singlefile", out})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{filepath.Join(dir, "a.joop")}; !reflect.DeepEqual(inv.Inputs, want) {
		t.Errorf("Inputs = %q, want %q", inv.Inputs, want)
	}
	if !inv.SingleFile || len(inv.Outputs) != 1 || inv.Outputs[0] != out {
		t.Errorf("SingleFile = %v, Outputs = %q", inv.SingleFile, inv.Outputs)
	}
}

// ---------------------------------------------------------------------------
// File mode
// ---------------------------------------------------------------------------

func TestParseArgs_FileModePairs(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "a.joop", "b.joop")
	a, b := filepath.Join(dir, "a.joop"), filepath.Join(dir, "b.joop")

	inv, err := parseArgs([]string{"-f", "-i", a, "-o", "out/a.js", "-i", b, "-o", "out/b.js"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(inv.Inputs, []string{a, b}) {
		t.Errorf("Inputs = %q", inv.Inputs)
	}
	if !reflect.DeepEqual(inv.Outputs, []string{"out/a.js", "out/b.js"}) {
		t.Errorf("Outputs = %q", inv.Outputs)
	}
}

func TestParseArgs_FileModeAutoNameMixed(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "a.joop", "b.joop")
	a, b := filepath.Join(dir, "a.joop"), filepath.Join(dir, "b.joop")

	inv, err := parseArgs([]string{"-f", "-a", "-i", a, "-i", b, "-o", "custom.js"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.js"), "custom.js"}
	if !reflect.DeepEqual(inv.Outputs, want) {
		t.Errorf("Outputs = %q, want %q", inv.Outputs, want)
	}
}

func TestParseArgs_FileModeSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "a.joop", "b.joop")
	a, b := filepath.Join(dir, "a.joop"), filepath.Join(dir, "b.joop")

	inv, err := parseArgs([]string{"-f", "-s", "bundle.js", "-i", a, "-i", b})
	if err != nil {
		t.Fatal(err)
	}
	if !inv.SingleFile || !reflect.DeepEqual(inv.Outputs, []string{"bundle.js"}) {
		t.Errorf("SingleFile = %v, Outputs = %q", inv.SingleFile, inv.Outputs)
	}
	if len(inv.Inputs) != 2 {
		t.Errorf("Inputs = %q", inv.Inputs)
	}
}

// ---------------------------------------------------------------------------
// Validation errors
// ---------------------------------------------------------------------------

func TestParseArgs_Errors(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "a.joop")
	a := filepath.Join(dir, "a.joop")

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"dir without indir", []string{"-d", "-a"}, "--indir parameter is required"},
		{"dir missing value", []string{"-d", "-i"}, "invalid input directory"},
		{"dir does not exist", []string{"-d", "-i", filepath.Join(dir, "nope"), "-a"}, "cannot read directory"},
		{"dir without output", []string{"-d", "-i", dir}, "either the --autoname or --singlefile"},
		{"dir trailing", []string{"-d", "-i", dir, "-a", "extra"}, `incorrect arguments starting at "extra"`},
		{"singlefile missing value", []string{"-d", "-i", dir, "-s"}, "invalid output file"},
		{"file missing", []string{"-f", "-i", filepath.Join(dir, "nope.joop"), "-o", "x.js"}, "does not exist"},
		{"file without output", []string{"-f", "-i", a}, "must be followed by an --output"},
		{"file stray directive", []string{"-f", "-i", a, "-o", "x.js", "-x"}, "incorrect directive: -x"},
		{"file no inputs", []string{"-f", "-a"}, "at least one --input"},
		{"file output missing value", []string{"-f", "-i", a, "-o"}, "invalid output file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			if err == nil {
				t.Fatalf("parseArgs(%q) succeeded, want error", tt.args)
			}
			if !errors.Is(err, errUsage) {
				t.Errorf("error %v does not wrap errUsage", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, want it to contain %q", err, tt.contains)
			}
		})
	}
}

func TestParseArgs_AutoNameCollision(t *testing.T) {
	dir := t.TempDir()
	writeSources(t, dir, "weird.js")
	in := filepath.Join(dir, "weird.js")

	_, err := parseArgs([]string{"-f", "-a", "-i", in})
	if err == nil || !strings.Contains(err.Error(), "same auto-name") {
		t.Errorf("err = %v, want auto-name collision", err)
	}
}
