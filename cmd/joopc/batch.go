package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/joop/cache"
	"github.com/chazu/joop/compiler"
	"github.com/chazu/joop/diag"
)

// exitCompileFailed is the process status when any input fails.
const exitCompileFailed = 100

// batch compiles a list of inputs. Each input is compiled independently;
// a failure is reported and the remaining inputs still run.
type batch struct {
	stdout  io.Writer
	msbuild bool
	opts    []compiler.Option
	cache   *cache.Cache // may be nil
}

// run compiles inputs[i] to outputs[i], or every input into outputs[0] when
// singleFile is set. It returns the number of inputs that failed.
func (b *batch) run(ctx context.Context, inputs, outputs []string, singleFile bool) int {
	var single *os.File
	if singleFile {
		f, err := createOutput(outputs[0])
		if err != nil {
			b.report(diag.Diagnostic{File: outputs[0], Message: err.Error()})
			return len(inputs)
		}
		defer f.Close()
		single = f
	}

	failed := 0
	for i, input := range inputs {
		out, ok := b.compileFile(ctx, input)
		if !ok {
			failed++
			continue
		}

		var err error
		if single != nil {
			_, err = io.WriteString(single, strings.TrimRight(out, "\n")+"\n\n")
		} else {
			err = writeOutput(outputs[i], out)
		}
		if err != nil {
			b.report(diag.Diagnostic{File: input, Message: err.Error()})
			failed++
			continue
		}
		log.Infof("compiled %s", input)
	}
	return failed
}

// compileFile compiles one input, consulting the cache first. Failures are
// reported before returning false.
func (b *batch) compileFile(ctx context.Context, input string) (string, bool) {
	data, err := os.ReadFile(input)
	if err != nil {
		b.report(diag.Diagnostic{File: input, Message: fmt.Sprintf("cannot read input: %s", err)})
		return "", false
	}
	source := string(data)

	fingerprint := compiler.Fingerprint(b.opts...)
	key := cache.Key(fingerprint, source)
	if b.cache != nil {
		entry, err := b.cache.Get(ctx, key)
		if err == nil {
			log.Debugf("cache hit for %s", input)
			return entry.Output, true
		}
		if !errors.Is(err, cache.ErrNotFound) {
			log.Warningf("cache: %s", err)
		}
	}

	out, err := compiler.Compile(source, b.opts...)
	if err != nil {
		b.report(diag.FromError(input, source, err))
		return "", false
	}

	if b.cache != nil {
		entry := &cache.Entry{Output: out, Fingerprint: fingerprint, Source: input}
		if err := b.cache.Put(ctx, key, entry); err != nil {
			log.Warningf("cache: %s", err)
		}
	}
	return out, true
}

func (b *batch) report(d diag.Diagnostic) {
	fmt.Fprintln(b.stdout, d.Render(b.msbuild))
}

func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create output: %w", err)
	}
	return f, nil
}

func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("cannot write output: %w", err)
	}
	return nil
}

// finish prints the batch summary and returns the process exit status.
func (b *batch) finish(failed int) int {
	if failed > 0 {
		log.Errorf("%d input(s) failed to compile", failed)
		return exitCompileFailed
	}
	fmt.Fprintln(b.stdout, "Compilation successful.")
	return 0
}
