package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/rubble"
	"github.com/zephyrtronium/rubble/ast"
	"github.com/zephyrtronium/rubble/parser"
)

// shell holds the state of an interactive session. Each line sees the
// locals of the lines before it.
type shell struct {
	vm    *rubble.VM
	frame *rubble.Frame
	out   io.Writer
	errs  io.Writer
	line  int
}

// eval runs one complete piece of input and prints its result.
func (s *shell) eval(src string) {
	s.line++
	r, err := s.vm.Shell(src, fmt.Sprintf("(shell):%d", s.line), s.frame)
	if err != nil {
		fmt.Fprintln(s.errs, err)
		return
	}
	s.frame = r.Frame
	fmt.Fprintf(s.out, "=> %s\n", rubble.Inspect(r.Value))
}

// complete reports whether src can be run as is. Input that fails to parse
// for any reason other than ending early is complete, so that the error is
// reported instead of prompting for more.
func complete(src string) bool {
	_, err := parser.Parse(&ast.Source{Name: "(shell)", Text: src})
	return !parser.IsIncomplete(err)
}

// repl runs an interactive shell on the terminal.
func (a *app) repl() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	hist := a.cfg.historyPath()
	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(hist)
			if err != nil {
				a.log.Warn("couldn't save history", "file", hist, "err", err)
				return
			}
			ln.WriteHistory(f)
			f.Close()
		}()
	}

	s := &shell{vm: a.newVM(), out: a.stdout, errs: a.stderr}
	for {
		src, ok := a.read(ln)
		if !ok {
			fmt.Fprintln(a.stdout)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		s.eval(src)
	}
}

// read prompts until the input so far is complete. It returns false at the
// end of input.
func (a *app) read(ln *liner.State) (string, bool) {
	var b strings.Builder
	prompt := a.cfg.Prompt
	for {
		line, err := ln.Prompt(prompt)
		switch err {
		case nil:
		case liner.ErrPromptAborted:
			// Abandon the current input.
			b.Reset()
			prompt = a.cfg.Prompt
			continue
		default:
			if err != io.EOF {
				a.log.Error("couldn't read input", "err", err)
			}
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if complete(b.String()) {
			return b.String(), true
		}
		prompt = a.cfg.ContinuePrompt
	}
}
