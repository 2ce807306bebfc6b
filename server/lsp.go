package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/joop/compiler"
	"github.com/chazu/joop/diag"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "joop-lsp"

var log = commonlog.GetLogger("joop.server")

// LspServer recompiles open documents and reports errors to the editor.
type LspServer struct {
	docs    *documents
	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// documents holds the full text of every open document by URI.
type documents struct {
	mu    sync.RWMutex
	texts map[protocol.DocumentUri]string
}

func (d *documents) set(uri protocol.DocumentUri, text string) {
	d.mu.Lock()
	d.texts[uri] = text
	d.mu.Unlock()
}

func (d *documents) get(uri protocol.DocumentUri) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text, ok := d.texts[uri]
	return text, ok
}

func (d *documents) remove(uri protocol.DocumentUri) {
	d.mu.Lock()
	delete(d.texts, uri)
	d.mu.Unlock()
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		docs:    &documents{texts: map[protocol.DocumentUri]string{}},
		version: compiler.Version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "Joop LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

// textDocumentDidChange only sees whole-document events: the server
// advertises full sync, so the last event carries the current text.
func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	for i := len(params.ContentChanges) - 1; i >= 0; i-- {
		if whole, ok := params.ContentChanges[i].(protocol.TextDocumentContentChangeEventWhole); ok {
			s.update(ctx, params.TextDocument.URI, whole.Text)
			break
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.remove(params.TextDocument.URI)
	s.notify(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

// update stores text and republishes its diagnostics.
func (s *LspServer) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	s.docs.set(uri, text)
	diagnostics := diagnose(text)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))
	s.notify(ctx, uri, diagnostics)
}

func (s *LspServer) notify(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return complete(text, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return hover(text, word), nil
}

// --- Diagnostics ---

// diagnose compiles text and converts a failure into an LSP diagnostic.
func diagnose(text string) []protocol.Diagnostic {
	_, err := compiler.Generate(text)
	if err == nil {
		return []protocol.Diagnostic{}
	}

	d := diag.FromError("", text, err)
	var start, end protocol.Position
	if d.Line > 0 {
		// diag counts columns in runes; LSP counts UTF-16 code units.
		var line []rune
		if lines := strings.Split(text, "\n"); d.Line <= len(lines) {
			line = []rune(strings.TrimSuffix(lines[d.Line-1], "\r"))
		}
		start = protocol.Position{
			Line:      protocol.UInteger(d.Line - 1),
			Character: protocol.UInteger(utf16Units(line, d.Column-1)),
		}
		end = start
		end.Character = protocol.UInteger(utf16Units(line, d.Column-1+d.Length))
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	code := diag.Code
	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  d.Message,
	}}
}

// --- Completion and hover ---

// keywordDocs describes each keyword for hover.
var keywordDocs = map[string]string{
	"namespace":   "Declares a namespace. Dotted names create every level.",
	"class":       "Declares a class, optionally extending a base class with `: Base`.",
	"constructor": "Declares the class constructor. It must precede all other members.",
	"function":    "Declares a method, exported on the prototype (or the class when static).",
	"prop":        "Declares a property. `prop Name;` is automatic, a block holds get/set.",
	"static":      "Attaches the following function or property to the class object.",
	"get":         "Property getter, emitted as get_<name>().",
	"set":         "Property setter, emitted as set_<name>(value).",
	"prog":        "Raw JavaScript copied to the output unchanged.",
	"base":        "Calls the base class constructor (`base(...)`) or method (`base.m(...)`).",
}

// complete returns keywords and declared names matching prefix, closest
// matches first.
func complete(text, prefix string) []protocol.CompletionItem {
	decls := collectDeclarations(text)

	candidates := append([]string{}, compiler.Keywords...)
	for _, d := range decls {
		candidates = append(candidates, d.name)
	}

	ranks := fuzzy.RankFindFold(prefix, candidates)
	sort.Stable(ranks)

	seen := map[string]bool{}
	var items []protocol.CompletionItem
	for _, r := range ranks {
		name := r.Target
		if seen[name] || name == prefix {
			continue
		}
		seen[name] = true

		kind := protocol.CompletionItemKindKeyword
		detail := "keyword"
		if !compiler.IsKeyword(name) {
			d := findDeclaration(decls, name)
			kind, detail = d.completionKind(), d.describe()
		}
		insert := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &insert,
		})
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func hover(text, word string) *protocol.Hover {
	var value string
	if doc, ok := keywordDocs[word]; ok {
		value = fmt.Sprintf("**%s**\n\n%s", word, doc)
	} else if d := findDeclaration(collectDeclarations(text), word); d.name != "" {
		value = fmt.Sprintf("```joop\n%s\n```", d.describe())
	} else {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	return string(line[start:col])
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}

	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(line[end]) {
		end++
	}
	return string(line[start:end])
}

// lineAt returns the runes of the cursor's line and the cursor's rune
// column. pos.Character counts UTF-16 code units.
func lineAt(text string, pos protocol.Position) ([]rune, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return nil, 0, false
	}
	line := []rune(strings.TrimSuffix(lines[pos.Line], "\r"))
	col, units := 0, 0
	for col < len(line) && units < int(pos.Character) {
		units += utf16.RuneLen(line[col])
		col++
	}
	return line, col, true
}

// utf16Units returns the UTF-16 length of the first col runes of line.
// Columns past the end of line count one unit each.
func utf16Units(line []rune, col int) int {
	units := 0
	for i := 0; i < col; i++ {
		if i < len(line) {
			units += utf16.RuneLen(line[i])
		} else {
			units++
		}
	}
	return units
}

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func boolPtr(b bool) *bool {
	return &b
}
