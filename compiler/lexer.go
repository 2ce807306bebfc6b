package compiler

import (
	"regexp"
)

// ---------------------------------------------------------------------------
// Lexer: splits source text into comments, blocks and atoms
// ---------------------------------------------------------------------------

// The alternatives are tried in order at the current position. RE2 has no
// backreferences, so each quote style gets its own string alternative.
const (
	singleQuoted = `'(?:[^'\\\n]|\\(?:\r\n|[\s\S]))*'?`
	doubleQuoted = `"(?:[^"\\\n]|\\(?:\r\n|[\s\S]))*"?`
	templateLit  = "`(?:[^`\\\\$]|\\\\[\\s\\S]|\\$\\{(?:[^{}]|\\{[^}]*\\}?)*\\}?|\\$)*`?"

	// wordClass matches letters, digits, marks and connector punctuation
	// from any script, not just ASCII.
	wordClass = `[\p{L}\p{Mn}\p{Nd}\p{Pc}]`

	lineComment  = `//[^\r\n]*`
	blockComment = `/\*[\s\S]*?\*/`
)

var fragmentPattern = regexp.MustCompile(
	`^(?:(` + singleQuoted + `|` + doubleQuoted + `|` + templateLit + `)` +
		`|(` + lineComment + `|` + blockComment + `)` +
		`|(` + wordClass + `+|\S)` +
		`|(\s+))`)

const (
	groupString = 1 + iota
	groupComment
	groupAtom
	groupSpace
)

// fragment is one raw regex match. Whitespace fragments are kept so block
// capture can span them.
type fragment struct {
	group      int
	start, end int
}

type lexer struct {
	input string
	pos   int
}

// next matches the fragment at the current position.
func (l *lexer) next() (fragment, error) {
	loc := fragmentPattern.FindStringSubmatchIndex(l.input[l.pos:])
	if loc == nil || loc[1] == 0 {
		return fragment{}, newError(l.pos, "unrecognized token %q", l.input[l.pos:l.pos+1])
	}
	f := fragment{start: l.pos, end: l.pos + loc[1]}
	for g := groupString; g <= groupSpace; g++ {
		if loc[2*g] >= 0 {
			f.group = g
			break
		}
	}
	l.pos = f.end
	return f, nil
}

func (l *lexer) text(f fragment) string {
	return l.input[f.start:f.end]
}

// block consumes fragments after an opening brace until the brace count
// returns to zero.
func (l *lexer) block(open fragment) (Token, error) {
	depth := 1
	for l.pos < len(l.input) {
		f, err := l.next()
		if err != nil {
			return Token{}, err
		}
		if f.group != groupAtom {
			continue
		}
		switch l.text(f) {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return Token{
					Type:    TokenBlock,
					Literal: l.input[open.end:f.start],
					Offset:  open.start,
				}, nil
			}
		}
	}
	return Token{}, wrapError(l.pos, ErrUnexpectedEOF, "unexpected end of input, expected '}' to close block at offset %d", open.start)
}

// Tokenize splits text into a token stream. Whitespace is dropped,
// comments are kept, and every balanced brace pair becomes a single Block
// token whose literal is the text between the braces. Offsets in errors are
// relative to text.
func Tokenize(text string) ([]Token, error) {
	l := &lexer{input: text}
	var tokens []Token
	for l.pos < len(l.input) {
		f, err := l.next()
		if err != nil {
			return nil, err
		}
		switch f.group {
		case groupSpace:
			continue
		case groupComment:
			tokens = append(tokens, Token{Type: TokenComment, Literal: l.text(f), Offset: f.start})
		case groupAtom:
			if l.text(f) == "{" {
				block, err := l.block(f)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, block)
				continue
			}
			tokens = append(tokens, Token{Type: TokenAtom, Literal: l.text(f), Offset: f.start})
		default:
			tokens = append(tokens, Token{Type: TokenAtom, Literal: l.text(f), Offset: f.start})
		}
	}
	return tokens, nil
}
