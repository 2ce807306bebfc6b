// joopc compiles joop sources into JavaScript.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/joop/server"
)

var log = commonlog.GetLogger("joop.cli")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "build":
			return handleBuildCommand(args[1:])
		case "lsp":
			return handleLSPCommand(args[1:])
		case "serve":
			return handleServeCommand(args[1:])
		case "repl":
			return handleREPLCommand(args[1:])
		case "help", "-h", "--help":
			fmt.Print(helpText)
			return 0
		}
	}
	return runLegacy(args)
}

// runLegacy handles the dirmode/filemode command line.
func runLegacy(args []string) int {
	inv, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	commonlog.Configure(inv.Verbose, nil)

	if inv.Help {
		fmt.Print(helpText)
		return 0
	}

	b := &batch{stdout: os.Stdout, msbuild: inv.MSBuild}
	failed := b.run(context.Background(), inv.Inputs, inv.Outputs, inv.SingleFile)
	return b.finish(failed)
}

func handleLSPCommand(args []string) int {
	fs := flag.NewFlagSet("lsp", flag.ContinueOnError)
	verbose := fs.Int("v", 0, "Log verbosity (logs go to stderr)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	commonlog.Configure(*verbose, nil)

	if err := server.NewLSP().Run(); err != nil {
		fmt.Fprintf(os.Stderr, "LSP error: %v\n", err)
		return 1
	}
	return 0
}

func handleServeCommand(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":4580", "Listen address")
	dir := fs.String("C", ".", "Project directory; its joop.toml supplies format and cache settings")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *verbose {
		commonlog.Configure(2, nil)
	}

	p, err := loadProject(*dir, true, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer p.close()

	opts := []server.ServerOption{server.WithCompileOptions(p.compileOptions()...)}
	if p.cache != nil {
		opts = append(opts, server.WithCache(p.cache))
	}
	if err := server.New(opts...).ListenAndServe(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}
