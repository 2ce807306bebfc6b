package compiler

import (
	"strings"
)

// runtimePrelude defines the helpers generated code relies on. Every
// binding is guarded so concatenated outputs can share one runtime.
const runtimePrelude = `var $global = $global || this;
var $extend = $extend || (function (d, b) { for (var p in b) if (b.hasOwnProperty(p)) d[p] = b[p]; function __() { this.constructor = d; } __.prototype = b.prototype; d.prototype = new __(); });
var $using = $using || (function (n, x) { for (var i in n) { x[i] = n[i]; } });
var $inherits = $inherits || (function (other) { var otherClass; if (typeof other == "string") { otherClass = other; } else { otherClass = other.getQualifiedType(); } return (this.getBaseTypes().indexOf("|" + otherClass + "|") > -1); });

`

// bannerPrefix marks a leading comment that is copied to the very top of
// the output, ahead of the runtime.
const bannerPrefix = "/****"

var topLevelKeywords = []string{"namespace", "class", "prog"}

// topLevelStage is the anonymous root namespace. It additionally accepts
// raw prog blocks.
type topLevelStage struct {
	namespaceStage
}

func (t *topLevelStage) writeOpening() error {
	if tok := t.current(); tok.Type == TokenComment && strings.HasPrefix(tok.Literal, bannerPrefix) {
		t.writeln(tok.Literal)
		t.advance()
	}
	t.write(runtimePrelude)
	return t.namespaceStage.writeOpening()
}

func (t *topLevelStage) parseOne() error {
	if t.accept(is("prog")) {
		block, err := t.readBlock("expecting prog block, got %q")
		if err != nil {
			return err
		}
		t.writeln(block.Literal)
		return nil
	}
	if err := t.parseDeclaration(topLevelKeywords); err != nil {
		return err
	}
	t.writeln("")
	return nil
}
