package compiler

import (
	"strings"
)

var namespaceKeywords = []string{"namespace", "class"}

// namespaceStage parses the declarations of one namespace block. The
// top-level program is an anonymous namespace.
type namespaceStage struct {
	scope
	name string
}

func (n *namespaceStage) namespaceName() string { return n.name }

func (n *namespaceStage) writeOpening() error {
	if n.name != "" {
		parts := strings.Split(n.name, ".")
		for i := range parts {
			path := strings.Join(parts[:i+1], ".")
			if i == 0 {
				n.writef("var %s = %s || {};\n", path, path)
			} else {
				n.writef("%s = %s || {};\n", path, path)
			}
		}
		n.writef("// Namespace %s\n", n.name)
	}
	n.write("(function()\n{\nvar privObj = [];\n")
	return nil
}

func (n *namespaceStage) parseOne() error {
	if err := n.parseDeclaration(namespaceKeywords); err != nil {
		return err
	}
	n.writeln("")
	return nil
}

// parseDeclaration handles one comment, namespace or class. keywords are
// offered as suggestions when nothing matches.
func (n *namespaceStage) parseDeclaration(keywords []string) error {
	if tok := n.current(); tok.Type == TokenComment {
		n.writeln(tok.Literal)
		n.advance()
		return nil
	}
	if n.accept(is("namespace")) {
		return n.parseNamespace()
	}
	if err := n.expectKeyword(is("class"), keywords, "expecting namespace or class declaration, got %q"); err != nil {
		return err
	}
	return n.parseClass()
}

func (n *namespaceStage) parseNamespace() error {
	name, err := n.readQualifiedName("expecting namespace name, got %q")
	if err != nil {
		return err
	}
	block, err := n.readBlock("expecting namespace body, got %q")
	if err != nil {
		return err
	}
	return n.enter(&namespaceStage{name: name}, block)
}

func (n *namespaceStage) parseClass() error {
	name, err := n.readIdentifier("expecting class name, got %q")
	if err != nil {
		return err
	}
	var baseName string
	if n.accept(is(":")) {
		if baseName, err = n.readQualifiedName("expecting base class name, got %q"); err != nil {
			return err
		}
	}
	block, err := n.readBlock("expecting class body, got %q")
	if err != nil {
		return err
	}
	return n.enter(&classStage{name: name, baseName: baseName}, block)
}

func (n *namespaceStage) writeClosing() error {
	if n.name != "" {
		n.writef("%s.%s = %s;", parentName(n.parent), n.name, n.name)
	}
	n.write("\n})();\n")
	return nil
}
