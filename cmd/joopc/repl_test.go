package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"namespace App {", true},
		{"namespace App {\n  class Widget {\n  }", true},
		{"namespace App { }", false},
		{"prog { var x = '}'; }", false},
		{"", false},
		{"}", false}, // stray closers are errors, not continuations
	}
	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestREPLCommands(t *testing.T) {
	st := &replState{}
	var out bytes.Buffer

	if st.command(&out, ":raw") {
		t.Fatal(":raw ended the session")
	}
	if !st.raw || !strings.Contains(out.String(), "formatting off") {
		t.Errorf("raw = %v, output %q", st.raw, out.String())
	}
	st.command(&out, ":RAW")
	if st.raw {
		t.Error(":RAW did not toggle back")
	}

	out.Reset()
	st.command(&out, ":bogus")
	if !strings.Contains(out.String(), "unknown command :bogus") {
		t.Errorf("output = %q", out.String())
	}

	if !st.command(&out, ":quit") {
		t.Error(":quit did not end the session")
	}
}

func TestREPLEval(t *testing.T) {
	st := &replState{}
	var out bytes.Buffer

	st.eval(&out, "namespace App { class Widget { } }")
	if !strings.Contains(out.String(), "App.Widget = Widget;") {
		t.Errorf("eval output:\n%s", out.String())
	}

	out.Reset()
	st.eval(&out, "namespace App { clas Widget { } }")
	if !strings.HasPrefix(out.String(), "<repl> (Line 1, Column 17): ") {
		t.Errorf("eval error output = %q", out.String())
	}
}
