package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chazu/joop/manifest"
)

const helpText = `Usage: joopc [-v] [-m|--msbuild] MODE

Compiles joop sources into JavaScript.

Modes:
  -d, --dirmode [-r|--rootonly] -i|--indir DIR (-s|--singlefile OUT | -a|--autoname)
      Compile every .joop file under DIR. --rootonly skips subdirectories.

  -f, --filemode [-a|--autoname] [-s|--singlefile OUT] (-i|--input IN [-o|--output OUT])...
      Compile the listed files. Without --autoname or --singlefile each
      input needs an --output.

Options:
  -v                Verbose logging
  -m, --msbuild     Report errors in MSBuild format

Subcommands:
  joopc build [-C dir] [-no-cache] [-v]   Build the project described by joop.toml
  joopc lsp                               Run the language server on stdio
  joopc serve [-addr :4580]               Run the compile service
  joopc repl                              Interactive compile loop

Exit status is 100 when any input fails to compile.
`

// errUsage marks argument errors.
var errUsage = errors.New("usage error")

// Invocation is the result of parsing the legacy command line.
type Invocation struct {
	Inputs     []string
	Outputs    []string
	SingleFile bool
	MSBuild    bool
	Help       bool
	Verbose    int
}

// descender walks the argument list one word at a time.
type descender struct {
	args []string
	pos  int
}

func (d *descender) current() (string, bool) {
	if d.pos < len(d.args) {
		return d.args[d.pos], true
	}
	return "", false
}

// accept consumes the current word if it matches one of options,
// case-insensitively.
func (d *descender) accept(options ...string) bool {
	cur, ok := d.current()
	if !ok {
		return false
	}
	for _, o := range options {
		if strings.EqualFold(cur, o) {
			d.pos++
			return true
		}
	}
	return false
}

// keep consumes and returns the current word.
func (d *descender) keep() (string, bool) {
	cur, ok := d.current()
	if ok {
		d.pos++
	}
	return cur, ok
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// parseArgs parses the legacy command line. The grammar is order sensitive.
func parseArgs(args []string) (*Invocation, error) {
	d := &descender{args: args}
	inv := &Invocation{}

	for d.accept("-v") {
		inv.Verbose++
	}
	inv.MSBuild = d.accept("-m", "--msbuild")

	var err error
	switch {
	case d.accept("-d", "--dirmode"):
		err = parseDirMode(d, inv)
	case d.accept("-f", "--filemode"):
		err = parseFileMode(d, inv)
	default:
		inv.Help = true
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func parseDirMode(d *descender, inv *Invocation) error {
	rootOnly := d.accept("-r", "--rootonly")

	if !d.accept("-i", "--indir") {
		return usageError("the --indir parameter is required for directory mode")
	}
	dir, ok := d.keep()
	if !ok {
		return usageError("invalid input directory")
	}
	files, err := manifest.Discover(dir, rootOnly)
	if err != nil {
		return usageError("%s", err)
	}
	inv.Inputs = files

	switch {
	case d.accept("-s", "--singlefile"):
		if err := parseSingleFile(d, inv); err != nil {
			return err
		}
	case d.accept("-a", "--autoname"):
		for _, f := range files {
			out, err := manifest.AutoName(f)
			if err != nil {
				return usageError("%s", err)
			}
			inv.Outputs = append(inv.Outputs, out)
		}
	default:
		return usageError("you must specify either the --autoname or --singlefile option")
	}
	return expectEnd(d)
}

func parseFileMode(d *descender, inv *Invocation) error {
	autoName := d.accept("-a", "--autoname")
	if d.accept("-s", "--singlefile") {
		if err := parseSingleFile(d, inv); err != nil {
			return err
		}
	} else if d.accept("-a", "--autoname") {
		autoName = true
	}

	for d.accept("-i", "--input") {
		in, ok := d.keep()
		if !ok {
			return usageError("invalid input file")
		}
		if _, err := os.Stat(in); err != nil {
			return usageError("file %q does not exist", in)
		}
		inv.Inputs = append(inv.Inputs, in)

		switch {
		case d.accept("-o", "--output"):
			out, ok := d.keep()
			if !ok {
				return usageError("invalid output file")
			}
			if !inv.SingleFile {
				inv.Outputs = append(inv.Outputs, out)
			}
		case autoName && !inv.SingleFile:
			out, err := manifest.AutoName(in)
			if err != nil {
				return usageError("%s", err)
			}
			inv.Outputs = append(inv.Outputs, out)
		case !inv.SingleFile:
			return usageError("all --input directives must be followed by an --output directive if the --autoname option is not set")
		}

		if cur, ok := d.current(); ok && !strings.EqualFold(cur, "-i") && !strings.EqualFold(cur, "--input") {
			return usageError("incorrect directive: %s", cur)
		}
	}

	if len(inv.Inputs) == 0 {
		return usageError("file mode needs at least one --input")
	}
	return expectEnd(d)
}

func parseSingleFile(d *descender, inv *Invocation) error {
	out, ok := d.keep()
	if !ok {
		return usageError("invalid output file")
	}
	inv.Outputs = []string{out}
	inv.SingleFile = true
	return nil
}

func expectEnd(d *descender) error {
	if cur, ok := d.current(); ok {
		return usageError("incorrect arguments starting at %q", cur)
	}
	return nil
}
