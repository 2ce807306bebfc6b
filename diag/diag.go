// Package diag renders compiler errors for people and for build tools.
package diag

import (
	"fmt"
	"unicode/utf8"

	"github.com/chazu/joop/compiler"
)

// Code is the error code reported in MSBuild format.
const Code = "CERROR"

// Diagnostic is one reported error. Line is 0 when the error carries no
// source position.
type Diagnostic struct {
	File    string
	Line    int
	Column  int
	Length  int
	Message string
}

// FromError builds a Diagnostic for err raised while compiling source,
// which was read from file.
func FromError(file, source string, err error) Diagnostic {
	d := Diagnostic{File: file, Message: err.Error()}
	if loc, ok := compiler.LocateError(source, err); ok {
		d.Line = loc.Line
		d.Column = loc.Column
		d.Length = utf8.RuneCountInString(loc.Near)
	}
	return d
}

// HasPosition reports whether the diagnostic points into a file.
func (d Diagnostic) HasPosition() bool {
	return d.File != "" && d.Line > 0
}

// Render formats the diagnostic. MSBuild format is understood by Visual
// Studio style build tools; otherwise a human readable line is produced.
func (d Diagnostic) Render(msbuild bool) string {
	switch {
	case msbuild && d.HasPosition() && d.Length > 0:
		return fmt.Sprintf("%s(%d,%d,%d,%d) : error %s : %s",
			d.File, d.Line, d.Column, d.Line, d.Column+d.Length, Code, d.Message)
	case msbuild && d.HasPosition():
		return fmt.Sprintf("%s(%d,%d) : error %s : %s", d.File, d.Line, d.Column, Code, d.Message)
	case msbuild:
		return fmt.Sprintf("error %s : %s", Code, d.Message)
	case d.HasPosition():
		return fmt.Sprintf("%s (Line %d, Column %d): %s", d.File, d.Line, d.Column, d.Message)
	case d.File != "":
		return fmt.Sprintf("%s: %s", d.File, d.Message)
	}
	return d.Message
}
