package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/joop/cache"
	"github.com/chazu/joop/compiler"
	"github.com/chazu/joop/manifest"
)

// project is a loaded joop.toml plus its open build cache.
type project struct {
	m     *manifest.Manifest // nil when no manifest was found
	cache *cache.Cache       // nil when caching is off
}

// loadProject finds the manifest above dir. A missing manifest is an error
// unless optional is set. The cache database is left unopened unless
// useCache is set.
func loadProject(dir string, optional, useCache bool) (*project, error) {
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		if optional {
			return &project{}, nil
		}
		return nil, fmt.Errorf("no %s found in %s or any parent directory", manifest.FileName, dir)
	}

	p := &project{m: m}
	if useCache && m.Cache.Enabled {
		c, err := cache.Open(m.CachePath())
		if err != nil {
			// The build still works without a cache.
			log.Warningf("build cache disabled: %s", err)
		} else {
			p.cache = c
		}
	}
	return p, nil
}

func (p *project) compileOptions() []compiler.Option {
	if p.m == nil {
		return nil
	}
	if !p.m.Format.Enabled {
		return []compiler.Option{compiler.WithoutFormatting()}
	}
	return []compiler.Option{compiler.WithIndent(p.m.Format.Indent)}
}

func (p *project) close() {
	if p.cache != nil {
		if err := p.cache.Close(); err != nil {
			log.Warningf("cache: %s", err)
		}
	}
}

// targets pairs every input with its output path.
func (p *project) targets() (inputs, outputs []string, singleFile bool, err error) {
	inputs, err = p.m.Inputs()
	if err != nil {
		return nil, nil, false, err
	}
	if len(inputs) == 0 {
		return nil, nil, false, errors.New("no source files found")
	}

	if out := p.m.OutputPath(); out != "" {
		return inputs, []string{out}, true, nil
	}
	for _, in := range inputs {
		out, err := manifest.AutoName(in)
		if err != nil {
			return nil, nil, false, err
		}
		outputs = append(outputs, out)
	}
	return inputs, outputs, false, nil
}

// handleBuildCommand processes the `joopc build` subcommand.
// Usage:
//
//	joopc build              # build the project containing the current directory
//	joopc build -C ./app     # build another project
//	joopc build -no-cache    # ignore and do not update the build cache
func handleBuildCommand(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	dir := fs.String("C", ".", "Project directory")
	noCache := fs.Bool("no-cache", false, "Bypass the build cache")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected argument %q\n", fs.Arg(0))
		return 2
	}
	if *verbose {
		commonlog.Configure(2, nil)
	}

	p, err := loadProject(*dir, false, !*noCache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		return 1
	}
	defer p.close()

	inputs, outputs, singleFile, err := p.targets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	b := &batch{
		stdout:  os.Stdout,
		msbuild: p.m.Build.MSBuild,
		opts:    p.compileOptions(),
		cache:   p.cache,
	}

	if *verbose {
		name := p.m.Project.Name
		if name == "" {
			name = p.m.Dir
		}
		fmt.Printf("Building %s (%d inputs)\n", name, len(inputs))
	}

	failed := b.run(context.Background(), inputs, outputs, singleFile)
	return b.finish(failed)
}
