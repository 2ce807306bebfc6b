package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
)

// schemaSource describes every key joop.toml may contain. Definitions are
// closed, so misspelled keys are rejected.
const schemaSource = `
#Manifest: {
	project?: {
		name?: string & !=""
	}
	build?: {
		sources?: [...(string & !="")]
		"root-only"?: bool
		output?: string
		msbuild?: bool
	}
	format?: {
		enabled?: bool
		indent?: =~"^(\t| +)$"
	}
	cache?: {
		enabled?: bool
		path?: string & !=""
	}
}

manifest: #Manifest
`

// Validate checks raw joop.toml content against the manifest schema.
func Validate(data []byte) error {
	var raw map[string]interface{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("joop.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("manifest schema: %w", err)
	}

	v := schema.FillPath(cue.ParsePath("manifest"), raw)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
