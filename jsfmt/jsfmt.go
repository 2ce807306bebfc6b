// Package jsfmt re-indents generated JavaScript.
//
// Indentation follows brace and bracket nesting. Parentheses do not
// indent, so the (function() { ... })() wrappers the compiler emits line
// up with their contents. Strings, template literals, comments and regular
// expression literals are skipped when counting.
package jsfmt

import (
	"strings"
)

// Options controls formatting.
type Options struct {
	Indent        string // one level of indentation
	MaxBlankLines int    // longest run of blank lines kept
}

// DefaultOptions returns tab indentation with single blank lines kept.
func DefaultOptions() Options {
	return Options{Indent: "\t", MaxBlankLines: 1}
}

type mode int

const (
	modeCode mode = iota
	modeBlockComment
	modeTemplate
	modeString // inside a quoted string continued with a trailing backslash
)

type formatter struct {
	opts    Options
	buf     strings.Builder
	depth   int
	mode    mode
	quote   byte // quote that closes a continued string
	blank   int
	started bool

	// exprDepth holds the depth at which each open ${ began.
	exprDepth []int

	// prev is the last significant code byte, used to tell a regex literal
	// from a division.
	prev byte
}

// Format returns src re-indented. The result ends with exactly one
// newline unless it is empty.
func Format(src string, opts Options) string {
	if opts.Indent == "" {
		opts.Indent = "\t"
	}
	f := &formatter{opts: opts}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	for _, line := range strings.Split(src, "\n") {
		f.line(line)
	}
	return f.buf.String()
}

func (f *formatter) line(line string) {
	// Leading whitespace of a continued string is part of its value.
	if f.mode == modeString {
		f.emit(line)
		f.scan(line)
		return
	}
	if f.inTemplate() {
		f.flushBlank()
		f.emit(line)
		f.scan(line)
		return
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		if f.started {
			f.blank++
		}
		return
	}
	f.flushBlank()

	if f.mode == modeBlockComment {
		prefix := ""
		if strings.HasPrefix(trimmed, "*") {
			prefix = " "
		}
		f.emit(f.indent(f.depth) + prefix + trimmed)
		f.scan(trimmed)
		return
	}

	level := f.depth - leadingClosers(trimmed)
	if level < 0 {
		level = 0
	}
	f.emit(f.indent(level) + trimmed)
	f.scan(trimmed)
}

func (f *formatter) inTemplate() bool {
	return f.mode == modeTemplate || len(f.exprDepth) > 0
}

func (f *formatter) indent(level int) string {
	return strings.Repeat(f.opts.Indent, level)
}

func (f *formatter) emit(s string) {
	f.buf.WriteString(s)
	f.buf.WriteByte('\n')
	f.started = true
}

func (f *formatter) flushBlank() {
	n := f.blank
	if n > f.opts.MaxBlankLines {
		n = f.opts.MaxBlankLines
	}
	for i := 0; i < n; i++ {
		f.buf.WriteByte('\n')
	}
	f.blank = 0
}

// leadingClosers counts the closing braces and brackets a line starts with.
func leadingClosers(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '}', ']':
			n++
		case ')':
		default:
			return n
		}
	}
	return n
}

// scan advances the nesting state over one line.
func (f *formatter) scan(s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]

		switch f.mode {
		case modeBlockComment:
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				f.mode = modeCode
				i++
			}
			continue
		case modeTemplate:
			switch {
			case c == '\\':
				i++
			case c == '`':
				f.mode = modeCode
				f.prev = c
			case c == '$' && i+1 < len(s) && s[i+1] == '{':
				f.exprDepth = append(f.exprDepth, f.depth)
				f.mode = modeCode
				f.prev = '{'
				i++
			}
			continue
		case modeString:
			end, cont := closeQuote(s, i, f.quote)
			if end < 0 {
				if !cont {
					f.mode = modeCode
				}
				return
			}
			f.mode = modeCode
			f.prev = f.quote
			i = end
			continue
		}

		var next byte
		if i+1 < len(s) {
			next = s[i+1]
		}
		switch {
		case c == '/' && next == '/':
			return
		case c == '/' && next == '*':
			f.mode = modeBlockComment
			i++
			continue
		case c == '\'' || c == '"':
			end, cont := closeQuote(s, i+1, c)
			if end < 0 {
				if cont {
					f.mode = modeString
					f.quote = c
				}
				return
			}
			i = end
		case c == '`':
			f.mode = modeTemplate
		case c == '/' && regexAllowed(f.prev):
			i = skipRegex(s, i)
			f.prev = 'a'
			continue
		case c == '{' || c == '[':
			f.depth++
		case c == '}' || c == ']':
			if c == '}' && len(f.exprDepth) > 0 && f.depth == f.exprDepth[len(f.exprDepth)-1] {
				f.exprDepth = f.exprDepth[:len(f.exprDepth)-1]
				f.mode = modeTemplate
				continue
			}
			if f.depth > 0 {
				f.depth--
			}
		}
		if c != ' ' && c != '\t' {
			f.prev = c
		}
	}
}

// regexAllowed reports whether a slash after prev starts a regex literal.
func regexAllowed(prev byte) bool {
	return prev == 0 || strings.IndexByte("(,=:[!&|?{};+-*%<>~^", prev) >= 0
}

// closeQuote returns the index of the quote q that closes a string, scanning
// s from i. It returns -1 when the line ends first; cont reports whether a
// trailing backslash continues the string on the next line.
func closeQuote(s string, i int, q byte) (end int, cont bool) {
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '\\':
			if j == len(s)-1 {
				return -1, true
			}
			j++
		case q:
			return j, false
		}
	}
	return -1, false
}

func skipRegex(s string, i int) int {
	inClass := false
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return j
			}
		}
	}
	return len(s) - 1
}
