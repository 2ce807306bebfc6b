package server

import (
	"errors"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/joop/compiler"
)

type declKind int

const (
	declNamespace declKind = iota
	declClass
	declFunction
	declProperty
)

// declaration is a name introduced by a document.
type declaration struct {
	kind      declKind
	name      string
	owner     string // enclosing class or namespace
	extends   string // base class, classes only
	static    bool
	arguments []string
}

// collectDeclarations scans text for declared names. It works on the token
// stream only, so documents that do not compile still yield what can be
// found before the error.
func collectDeclarations(text string) []declaration {
	var decls []declaration
	scanDeclarations(text, "", &decls)
	return decls
}

// maxUnclosed bounds how many open blocks are closed for a document that is
// still being typed.
const maxUnclosed = 64

// tokenizeOpen tokenizes text, closing blocks left open at the end of the
// document so a half-written body still yields its enclosing names.
func tokenizeOpen(text string) ([]compiler.Token, error) {
	tokens, err := compiler.Tokenize(text)
	for n := 0; n < maxUnclosed && errors.Is(err, compiler.ErrUnexpectedEOF); n++ {
		text += "}"
		tokens, err = compiler.Tokenize(text)
	}
	return tokens, err
}

func scanDeclarations(text, owner string, decls *[]declaration) {
	tokens, err := tokenizeOpen(text)
	if err != nil {
		return
	}

	at := func(i int) compiler.Token {
		if i < len(tokens) {
			return tokens[i]
		}
		return compiler.Token{Type: compiler.TokenEOF}
	}
	word := func(i int) string {
		if t := at(i); t.Type == compiler.TokenAtom {
			return t.Literal
		}
		return ""
	}
	// nextBlock returns the index of the first block at or after i.
	nextBlock := func(i int) int {
		for i < len(tokens) && tokens[i].Type != compiler.TokenBlock {
			i++
		}
		return i
	}

	for i := 0; i < len(tokens); i++ {
		static := false
		if word(i) == "static" {
			static = true
			i++
		}

		switch word(i) {
		case "namespace":
			name := word(i + 1)
			j := i + 2
			for word(j) == "." {
				name += "." + word(j+1)
				j += 2
			}
			*decls = append(*decls, declaration{kind: declNamespace, name: name, owner: owner})
			if b := nextBlock(j); b < len(tokens) {
				scanDeclarations(tokens[b].Literal, name, decls)
				i = b
			}
		case "class":
			d := declaration{kind: declClass, name: word(i + 1), owner: owner}
			j := i + 2
			if word(j) == ":" {
				d.extends = word(j + 1)
				j += 2
				for word(j) == "." {
					d.extends += "." + word(j+1)
					j += 2
				}
			}
			*decls = append(*decls, d)
			if b := nextBlock(j); b < len(tokens) {
				scanDeclarations(tokens[b].Literal, d.name, decls)
				i = b
			}
		case "function":
			d := declaration{kind: declFunction, name: word(i + 1), owner: owner, static: static}
			j := i + 2
			if word(j) == "(" {
				for j++; j < len(tokens) && word(j) != ")"; j++ {
					if w := word(j); w != "," && w != "" {
						d.arguments = append(d.arguments, w)
					}
				}
			}
			*decls = append(*decls, d)
			i = nextBlock(j)
		case "prop":
			*decls = append(*decls, declaration{kind: declProperty, name: word(i + 1), owner: owner, static: static})
			i++
		}
	}
}

func findDeclaration(decls []declaration, name string) declaration {
	for _, d := range decls {
		if d.name == name {
			return d
		}
	}
	return declaration{}
}

func (d declaration) completionKind() protocol.CompletionItemKind {
	switch d.kind {
	case declNamespace:
		return protocol.CompletionItemKindModule
	case declClass:
		return protocol.CompletionItemKindClass
	case declFunction:
		return protocol.CompletionItemKindMethod
	}
	return protocol.CompletionItemKindProperty
}

// describe renders the declaration as it would appear in source.
func (d declaration) describe() string {
	prefix := ""
	if d.static {
		prefix = "static "
	}
	switch d.kind {
	case declNamespace:
		return "namespace " + d.name
	case declClass:
		if d.extends != "" {
			return "class " + d.name + " : " + d.extends
		}
		return "class " + d.name
	case declFunction:
		return prefix + "function " + d.owner + "." + d.name + "(" + strings.Join(d.arguments, ", ") + ")"
	}
	return prefix + "prop " + d.owner + "." + d.name
}
