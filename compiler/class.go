package compiler

import (
	"strings"
)

var memberKeywords = []string{"function", "constructor", "prop", "static"}

// privateSlot allocates the instance's entry in the namespace-private array.
const privateSlot = "this.privKey = privObj.push({}) - 1;\n"

// classStage parses the members of one class body.
type classStage struct {
	scope
	name     string
	baseName string

	// initialized is set once a constructor, explicit or synthesized, has
	// been written. Members may only follow it.
	initialized bool
}

func (c *classStage) writeOpening() error {
	c.writef("// Class %s", c.name)
	if c.baseName != "" {
		c.writef(" extends %s", c.baseName)
	}
	c.writeln("")
	return nil
}

func (c *classStage) parseOne() error {
	if tok := c.current(); tok.Type == TokenComment {
		c.writeln(tok.Literal)
		c.advance()
		return nil
	}

	static := c.accept(is("static"))
	def := c.current()

	switch {
	case c.accept(is("function")):
		c.ensureConstructor()
		return c.parseFunction(static)
	case c.accept(is("constructor")):
		if static {
			return c.errorAt(def, "constructors cannot be marked static; consider using prog instead")
		}
		if c.initialized {
			return c.errorAt(def, "constructors must be defined before any properties or functions")
		}
		return c.parseConstructor()
	}

	if err := c.expectKeyword(is("prop"), memberKeywords, "expecting function, property, or constructor definition, got %q"); err != nil {
		return err
	}
	c.ensureConstructor()
	return c.parseProperty(static)
}

func (c *classStage) writeClosing() error {
	c.ensureConstructor()
	c.writeln("})();")
	c.writef("%s.%s = %s;\n", parentName(c.parent), c.name, c.name)
	return nil
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

func (c *classStage) parseFunction(static bool) error {
	name, err := c.readIdentifier("expecting function name, got %q")
	if err != nil {
		return err
	}
	c.writef("// Function %s\n", name)
	args, err := c.readArguments()
	if err != nil {
		return err
	}
	if err := c.writeFunction(name, args); err != nil {
		return err
	}
	c.export(name, static)
	return nil
}

func (c *classStage) parseConstructor() error {
	args, err := c.readArguments()
	if err != nil {
		return err
	}
	body, err := c.readBody()
	if err != nil {
		return err
	}
	c.writef("function %s(%s)\n{\n", c.name, strings.Join(args, ","))
	c.write(privateSlot)
	if body != "" {
		c.writeln(body)
	}
	c.writeln("}")
	c.finishConstructor()
	return nil
}

func (c *classStage) parseProperty(static bool) error {
	name, err := c.readIdentifier("expecting property name, got %q")
	if err != nil {
		return err
	}
	c.writef("// Property %s\n", name)

	if block := c.current(); c.accept(isType(TokenBlock)) {
		return c.enter(newPropertyStage(c, name, static), block)
	}
	if err := c.expect(is(";"), "expecting property body or ';', got %q"); err != nil {
		return err
	}

	target := c.target(static)
	c.writef("function get_%s() { return this.$prop_%s; }\n", name, name)
	c.writef("%s.get_%s = get_%s;\n", target, name, name)
	c.writef("function set_%s(value) { this.$prop_%s = value; }\n", name, name)
	c.writef("%s.set_%s = set_%s;\n", target, name, name)
	return nil
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// ensureConstructor writes the default constructor unless one exists.
func (c *classStage) ensureConstructor() {
	if c.initialized {
		return
	}
	c.writef("function %s()\n{\n", c.name)
	c.write(privateSlot)
	if c.baseName != "" {
		c.writef("%s.apply(this, arguments);\n", c.baseName)
	}
	c.writeln("}")
	c.finishConstructor()
}

// finishConstructor links the prototype chain and opens the closure that
// holds the members.
func (c *classStage) finishConstructor() {
	if c.baseName != "" {
		c.writef("$extend(%s, %s);\n", c.name, c.baseName)
	}
	c.write("\n(function()\n{\n")
	c.initialized = true
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// readArguments parses a parenthesized, comma separated parameter list.
func (c *classStage) readArguments() ([]string, error) {
	if err := c.expect(is("("), "expecting parameter list, got %q"); err != nil {
		return nil, err
	}
	var args []string
	for {
		tok := c.current()
		if !c.accept(isIdentifier) {
			break
		}
		args = append(args, tok.Literal)
		if !c.accept(is(",")) {
			break
		}
	}
	if err := c.expect(is(")"), "incomplete function declaration, got %q"); err != nil {
		return nil, err
	}
	return args, nil
}

// readBody consumes a method body and returns it rewritten.
func (c *classStage) readBody() (string, error) {
	block, err := c.readBlock("expecting function body, got %q")
	if err != nil {
		return "", err
	}
	return RewriteBody(strings.TrimSpace(block.Literal), c.baseName), nil
}

// writeFunction writes a named function declaration with the next block
// as its body.
func (c *classStage) writeFunction(name string, args []string) error {
	body, err := c.readBody()
	if err != nil {
		return err
	}
	c.writef("function %s(%s)\n{\n", name, strings.Join(args, ","))
	if body != "" {
		c.writeln(body)
	}
	c.writeln("}")
	return nil
}

// target is the object members are attached to.
func (c *classStage) target(static bool) string {
	if static {
		return c.name
	}
	return c.name + ".prototype"
}

func (c *classStage) export(name string, static bool) {
	c.writef("%s.%s = %s;\n", c.target(static), name, name)
}
