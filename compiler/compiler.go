// Package compiler translates joop source into JavaScript.
//
// The source is split into comments, atoms and balanced brace blocks by
// Tokenize. Grammar stages (program, namespace, class, property) consume
// those tokens, recursing into each block with a child stage, and append
// their output to one shared buffer.
package compiler

import (
	"errors"
	"regexp"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"github.com/chazu/joop/jsfmt"
)

// Version identifies the code generator. It is part of build cache keys, so
// bump it with any change to the generated JavaScript or its formatting.
const Version = "1.0.0"

const modulePath = "github.com/chazu/joop"

// buildStamp is mixed into Fingerprint so binaries built from different
// revisions never share cache entries, even when Version was not bumped.
var buildStamp = readBuildStamp()

// readBuildStamp returns "+<module version>" when joop is a dependency,
// "+<vcs revision>" for a stamped build of this module, or "" otherwise.
func readBuildStamp() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath && dep.Replace == nil && dep.Version != "(devel)" {
			return "+" + dep.Version
		}
	}
	if info.Main.Path != modulePath {
		return ""
	}
	var rev, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	switch {
	case rev != "" && modified == "true":
		return "+" + rev + "-dirty"
	case rev != "":
		return "+" + rev
	case info.Main.Version != "" && info.Main.Version != "(devel)":
		return "+" + info.Main.Version
	}
	return ""
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type config struct {
	format bool
	fmt    jsfmt.Options
}

// Option configures Compile.
type Option func(*config)

// WithIndent sets the indentation used by the output formatter.
func WithIndent(indent string) Option {
	return func(c *config) {
		c.fmt.Indent = indent
	}
}

// WithoutFormatting returns the generated text as written by the grammar
// stages.
func WithoutFormatting() Option {
	return func(c *config) {
		c.format = false
	}
}

// Fingerprint describes the output-affecting options, for cache keys.
func Fingerprint(opts ...Option) string {
	c := newConfig(opts)
	if !c.format {
		return Version + buildStamp + "/raw"
	}
	return Version + buildStamp + "/fmt:" + c.fmt.Indent
}

func newConfig(opts []Option) *config {
	c := &config{format: true, fmt: jsfmt.DefaultOptions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---------------------------------------------------------------------------
// Driver
// ---------------------------------------------------------------------------

// Generate compiles source and returns the unformatted output. Errors are
// always *CompilationError.
func Generate(source string) (string, error) {
	var out strings.Builder
	if err := run(&topLevelStage{}, nil, &out, source); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Compile compiles source and formats the result.
func Compile(source string, opts ...Option) (string, error) {
	c := newConfig(opts)
	out, err := Generate(source)
	if err != nil {
		return "", err
	}
	if !c.format {
		return out, nil
	}
	return jsfmt.Format(out, c.fmt), nil
}

// ---------------------------------------------------------------------------
// Error positions
// ---------------------------------------------------------------------------

// nearWindow bounds how much text after an error offset is inspected.
const nearWindow = 100

var nearPattern = regexp.MustCompile(`^` + wordClass + `+`)

// Location is a human readable error position.
type Location struct {
	Near   string // word at the error offset, may be empty
	Line   int    // 1-based
	Column int    // 1-based, in characters
}

// Locate resolves an absolute offset in source to a line and column.
func Locate(source string, offset int) Location {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	end := len(source)
	if end-offset > nearWindow {
		end = offset + nearWindow
		for end > offset && !utf8.RuneStart(source[end]) {
			end--
		}
	}
	near := nearPattern.FindString(source[offset:end])

	upto := source[:offset+len(near)]
	line := strings.Count(upto, "\n") + 1
	lastLine := upto[strings.LastIndexByte(upto, '\n')+1:]
	column := utf8.RuneCountInString(lastLine) - utf8.RuneCountInString(near) + 1

	return Location{Near: near, Line: line, Column: column}
}

// LocateError resolves the position of a *CompilationError. It reports
// false for any other error.
func LocateError(source string, err error) (Location, bool) {
	var ce *CompilationError
	if !errors.As(err, &ce) {
		return Location{}, false
	}
	return Locate(source, ce.Offset), true
}
