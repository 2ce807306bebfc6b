package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/chazu/joop/compiler"
	"github.com/chazu/joop/diag"
)

const (
	historyFile = ".joop_history"
	promptMain  = "joop> "
	promptCont  = "  ... "
)

// replState holds the toggles a session can change.
type replState struct {
	raw bool
}

func (st *replState) options() []compiler.Option {
	if st.raw {
		return []compiler.Option{compiler.WithoutFormatting()}
	}
	return nil
}

func handleREPLCommand(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	raw := fs.Bool("raw", false, "Start with formatting disabled")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	fmt.Printf("joop %s (type :help for commands)\n", compiler.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	st := &replState{raw: *raw}
	for {
		src, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := st.command(os.Stdout, trimmed); quit {
				return 0
			}
			continue
		}
		st.eval(os.Stdout, src)
	}
}

// readByParseProbe reads lines until the accumulated input no longer ends
// inside an open block.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C discards the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src ends inside an unterminated block.
func incomplete(src string) bool {
	_, err := compiler.Tokenize(src)
	return errors.Is(err, compiler.ErrUnexpectedEOF)
}

// command runs a REPL meta-command and reports whether the session ends.
func (st *replState) command(w io.Writer, cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":raw":
		st.raw = !st.raw
		if st.raw {
			fmt.Fprintln(w, "formatting off")
		} else {
			fmt.Fprintln(w, "formatting on")
		}
	case ":help", ":h", ":?":
		fmt.Fprintln(w, "Enter joop source; blocks continue until their braces balance.")
		fmt.Fprintln(w, "  :raw     Toggle output formatting")
		fmt.Fprintln(w, "  :help    Show this help")
		fmt.Fprintln(w, "  :quit    Exit")
	default:
		fmt.Fprintf(w, "unknown command %s (type :help for commands)\n", cmd)
	}
	return false
}

// eval compiles src and prints the JavaScript or the diagnostic.
func (st *replState) eval(w io.Writer, src string) {
	out, err := compiler.Compile(src, st.options()...)
	if err != nil {
		fmt.Fprintln(w, diag.FromError("<repl>", src, err).Render(false))
		return
	}
	fmt.Fprintln(w, strings.TrimRight(out, "\n"))
}
