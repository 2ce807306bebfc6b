package compiler

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// ---------------------------------------------------------------------------
// Token types
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// TokenEOF is never produced by the lexer. Scopes hand it out when the
	// cursor runs past the end of their stream.
	TokenEOF TokenType = iota
	TokenComment        // // line or /* block */
	TokenBlock          // balanced { ... }, literal is the interior
	TokenAtom           // word run, single punctuation char, or string literal
)

var tokenNames = map[TokenType]string{
	TokenEOF:     "EOF",
	TokenComment: "COMMENT",
	TokenBlock:   "BLOCK",
	TokenAtom:    "ATOM",
}

// String returns the string representation of a token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Token is a single lexical unit. Offset is relative to the text that was
// tokenized, which for nested scopes is the interior of a block.
type Token struct {
	Type    TokenType
	Literal string
	Offset  int
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Literal, t.Offset)
}

// describe renders the token the way error messages quote it.
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenBlock:
		return "{...}"
	}
	return t.Literal
}

// ---------------------------------------------------------------------------
// Keywords
// ---------------------------------------------------------------------------

// Keywords lists the words the grammar stages recognise.
var Keywords = []string{
	"base",
	"class",
	"constructor",
	"function",
	"get",
	"namespace",
	"prog",
	"prop",
	"set",
	"static",
}

// IsKeyword reports whether word is a reserved word of the language.
func IsKeyword(word string) bool {
	return slices.Contains(Keywords, word)
}
