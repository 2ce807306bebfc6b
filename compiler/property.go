package compiler

var accessorKeywords = []string{"get", "set"}

// propertyStage parses the get and set accessors of a computed property.
// It reuses the owning class's configuration and function helpers.
type propertyStage struct {
	classStage
	property string
	static   bool
}

func newPropertyStage(owner *classStage, property string, static bool) *propertyStage {
	p := &propertyStage{
		classStage: classStage{
			name:        owner.name,
			baseName:    owner.baseName,
			initialized: true,
		},
		property: property,
		static:   static,
	}
	p.skip = isType(TokenComment)
	return p
}

func (p *propertyStage) writeOpening() error { return nil }

func (p *propertyStage) writeClosing() error { return nil }

func (p *propertyStage) parseOne() error {
	if p.accept(is("get")) {
		return p.writeAccessor("get_"+p.property, nil)
	}
	if err := p.expectKeyword(is("set"), accessorKeywords, "expecting get or set definition of property, got %q"); err != nil {
		return err
	}
	return p.writeAccessor("set_"+p.property, []string{"value"})
}

func (p *propertyStage) writeAccessor(name string, args []string) error {
	if err := p.writeFunction(name, args); err != nil {
		return err
	}
	p.export(name, p.static)
	return nil
}
