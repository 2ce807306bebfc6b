package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("joop.compiler")

// maxProductions bounds the number of productions a single scope may run.
const maxProductions = 1000

var identifierPattern = regexp.MustCompile(`^[A-Za-z_]` + wordClass + `+$`)

// ---------------------------------------------------------------------------
// Stages
// ---------------------------------------------------------------------------

// stage is one level of the grammar. Every stage embeds a scope that owns
// its token stream and cursor.
type stage interface {
	writeOpening() error
	parseOne() error
	writeClosing() error
	base() *scope
}

// namespaced is implemented by stages that define a namespace name for
// their children.
type namespaced interface {
	namespaceName() string
}

// parentName resolves the object a declaration is attached to: the
// enclosing named namespace, or $global.
func parentName(parent stage) string {
	if ns, ok := parent.(namespaced); ok && ns.namespaceName() != "" {
		return ns.namespaceName()
	}
	return "$global"
}

// ---------------------------------------------------------------------------
// Scope
// ---------------------------------------------------------------------------

// scope holds the parse state shared by all stages.
type scope struct {
	self        stage
	parent      stage
	out         *strings.Builder
	tokens      []Token
	pos         int
	end         int
	blockOffset int

	// skip reports tokens the cursor steps over. Nil skips nothing.
	skip func(Token) bool
}

func (s *scope) base() *scope { return s }

// run tokenizes text and drives st over it, writing into out.
func run(st stage, parent stage, out *strings.Builder, text string) error {
	s := st.base()
	s.self, s.parent, s.out = st, parent, out
	s.end = len(text)

	tokens, err := Tokenize(text)
	if err != nil {
		return s.relocate(err)
	}
	s.tokens, s.pos = tokens, 0
	s.skipIgnored()

	log.Debugf("enter %T at offset %d (%d tokens)", st, s.blockOffset, len(tokens))

	if err := st.writeOpening(); err != nil {
		return err
	}
	for n := 0; !s.atEnd(); n++ {
		if n == maxProductions {
			return s.stalled("too many declarations in one scope")
		}
		before := s.pos
		if err := st.parseOne(); err != nil {
			return err
		}
		if s.pos == before && !s.atEnd() {
			return s.stalled("no progress")
		}
	}
	if err := st.writeClosing(); err != nil {
		return err
	}

	log.Debugf("leave %T", st)
	return nil
}

// enter runs child against the interior of block, sharing the output.
func (s *scope) enter(child stage, block Token) error {
	child.base().blockOffset = s.blockOffset + block.Offset + 1
	return run(child, s.self, s.out, block.Literal)
}

// relocate translates a lexer error into absolute source offsets.
func (s *scope) relocate(err error) error {
	var ce *CompilationError
	if errors.As(err, &ce) {
		ce.Offset += s.blockOffset
		return ce
	}
	return err
}

func (s *scope) atEnd() bool {
	return s.pos >= len(s.tokens)
}

// current returns the token under the cursor, or an EOF token positioned
// at the end of the scope's text.
func (s *scope) current() Token {
	if s.atEnd() {
		return Token{Type: TokenEOF, Offset: s.end}
	}
	return s.tokens[s.pos]
}

func (s *scope) advance() {
	if s.atEnd() {
		return
	}
	s.pos++
	s.skipIgnored()
}

func (s *scope) skipIgnored() {
	for s.skip != nil && !s.atEnd() && s.skip(s.tokens[s.pos]) {
		s.pos++
	}
}

// ---------------------------------------------------------------------------
// Predicates
// ---------------------------------------------------------------------------

type predicate func(Token) bool

// is matches an atom with the given text.
func is(literal string) predicate {
	return func(t Token) bool {
		return t.Type == TokenAtom && t.Literal == literal
	}
}

func isType(tt TokenType) predicate {
	return func(t Token) bool {
		return t.Type == tt
	}
}

func isIdentifier(t Token) bool {
	return t.Type == TokenAtom && identifierPattern.MatchString(t.Literal)
}

// accept advances past the current token when p matches it.
func (s *scope) accept(p predicate) bool {
	if p(s.current()) {
		s.advance()
		return true
	}
	return false
}

// expect is accept that fails. format receives the offending token's
// text as its only argument.
func (s *scope) expect(p predicate, format string) error {
	if s.accept(p) {
		return nil
	}
	return s.errorAt(s.current(), format, s.current().describe())
}

// expectKeyword is expect for a keyword production. The error carries a
// suggestion when the offending word resembles one of the alternatives.
func (s *scope) expectKeyword(p predicate, alternatives []string, format string) error {
	if s.accept(p) {
		return nil
	}
	tok := s.current()
	err := s.errorAt(tok, format, tok.describe())
	if tok.Type == TokenAtom {
		if hint := suggest(tok.Literal, alternatives); hint != "" {
			err.Msg += fmt.Sprintf(" (did you mean %q?)", hint)
		}
	}
	return err
}

// readIdentifier consumes an identifier and returns its text.
func (s *scope) readIdentifier(format string) (string, error) {
	tok := s.current()
	if err := s.expect(isIdentifier, format); err != nil {
		return "", err
	}
	return tok.Literal, nil
}

// readQualifiedName consumes identifiers separated by dots.
func (s *scope) readQualifiedName(format string) (string, error) {
	var parts []string
	for {
		name, err := s.readIdentifier(format)
		if err != nil {
			return "", err
		}
		parts = append(parts, name)
		if !s.accept(is(".")) {
			return strings.Join(parts, "."), nil
		}
	}
}

// readBlock consumes a block token and returns it.
func (s *scope) readBlock(format string) (Token, error) {
	tok := s.current()
	if err := s.expect(isType(TokenBlock), format); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// ---------------------------------------------------------------------------
// Errors and output
// ---------------------------------------------------------------------------

func (s *scope) errorAt(tok Token, format string, args ...interface{}) *CompilationError {
	return newError(s.blockOffset+tok.Offset, format, args...)
}

func (s *scope) stalled(reason string) error {
	tok := s.current()
	return wrapError(s.blockOffset+tok.Offset, ErrStalled, "cannot parse %q: %s", tok.describe(), reason)
}

func (s *scope) write(text string) {
	s.out.WriteString(text)
}

func (s *scope) writeln(text string) {
	s.out.WriteString(text)
	s.out.WriteByte('\n')
}

func (s *scope) writef(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
