package compiler

import (
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: " \t\r\n ",
			want:  nil,
		},
		{
			name:  "atoms",
			input: "class Foo : Bar",
			want: []Token{
				{Type: TokenAtom, Literal: "class", Offset: 0},
				{Type: TokenAtom, Literal: "Foo", Offset: 6},
				{Type: TokenAtom, Literal: ":", Offset: 10},
				{Type: TokenAtom, Literal: "Bar", Offset: 12},
			},
		},
		{
			name:  "block interior and offset",
			input: "a { b { c } }",
			want: []Token{
				{Type: TokenAtom, Literal: "a", Offset: 0},
				{Type: TokenBlock, Literal: " b { c } ", Offset: 2},
			},
		},
		{
			name:  "empty block",
			input: "{}",
			want: []Token{
				{Type: TokenBlock, Literal: "", Offset: 0},
			},
		},
		{
			name:  "comments",
			input: "// line\n/* block */ x",
			want: []Token{
				{Type: TokenComment, Literal: "// line", Offset: 0},
				{Type: TokenComment, Literal: "/* block */", Offset: 8},
				{Type: TokenAtom, Literal: "x", Offset: 20},
			},
		},
		{
			name:  "empty block comment",
			input: "/**/",
			want: []Token{
				{Type: TokenComment, Literal: "/**/", Offset: 0},
			},
		},
		{
			name:  "strings are atoms",
			input: `'a\'b' "c"`,
			want: []Token{
				{Type: TokenAtom, Literal: `'a\'b'`, Offset: 0},
				{Type: TokenAtom, Literal: `"c"`, Offset: 7},
			},
		},
		{
			name:  "braces inside strings do not open blocks",
			input: `{ x = "}"; }`,
			want: []Token{
				{Type: TokenBlock, Literal: ` x = "}"; `, Offset: 0},
			},
		},
		{
			name:  "braces inside comments do not count",
			input: "{ // }\n}",
			want: []Token{
				{Type: TokenBlock, Literal: " // }\n", Offset: 0},
			},
		},
		{
			name:  "template literal with interpolation",
			input: "`a ${ {b: 1}.b } }`",
			want: []Token{
				{Type: TokenAtom, Literal: "`a ${ {b: 1}.b } }`", Offset: 0},
			},
		},
		{
			name:  "unicode words",
			input: "café x",
			want: []Token{
				{Type: TokenAtom, Literal: "café", Offset: 0},
				{Type: TokenAtom, Literal: "x", Offset: 6},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) =\n%s\nwant\n%s", tt.input, spew.Sdump(got), spew.Sdump(tt.want))
			}
		})
	}
}

func TestTokenize_UnterminatedBlock(t *testing.T) {
	input := "class A { function f() { "
	_, err := Tokenize(input)
	if err == nil {
		t.Fatal("expected error for unterminated block")
	}
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("error %v does not wrap ErrUnexpectedEOF", err)
	}
	var ce *CompilationError
	if !errors.As(err, &ce) {
		t.Fatalf("error is %T, want *CompilationError", err)
	}
	if ce.Offset != len(input) {
		t.Errorf("Offset = %d, want %d", ce.Offset, len(input))
	}
}

func TestTokenize_StrayCloseBrace(t *testing.T) {
	got, err := Tokenize("}")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if len(got) != 1 || got[0].Type != TokenAtom || got[0].Literal != "}" {
		t.Errorf("Tokenize(\"}\") = %s", spew.Sdump(got))
	}
}

func TestTokenize_BlockRoundTrip(t *testing.T) {
	// The interior of a block lexes to the same fragments it was built from.
	input := "{ class A { prop X { get { return 1; } } } }"
	outer, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	inner, err := Tokenize(outer[0].Literal)
	if err != nil {
		t.Fatalf("Tokenize interior error: %v", err)
	}
	if len(inner) != 3 {
		t.Fatalf("interior tokens = %s", spew.Sdump(inner))
	}
	if inner[2].Type != TokenBlock {
		t.Errorf("inner[2].Type = %v, want BLOCK", inner[2].Type)
	}
}

func TestTokenTypeString(t *testing.T) {
	if got := TokenBlock.String(); got != "BLOCK" {
		t.Errorf("TokenBlock.String() = %q, want %q", got, "BLOCK")
	}
	if got := TokenType(99).String(); got != "TokenType(99)" {
		t.Errorf("TokenType(99).String() = %q", got)
	}
}
