package main

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/zephyrtronium/rubble"
	"github.com/zephyrtronium/rubble/ast"
	"github.com/zephyrtronium/rubble/parser"
)

// run runs each file in order in one VM. A file named "-" is read from
// standard input. Running stops at the first error.
func (a *app) run(files []string) error {
	vm := a.newVM()
	for _, file := range files {
		var err error
		if file == "-" {
			_, err = vm.DoReader(os.Stdin, "(stdin)")
		} else {
			err = runFile(vm, file)
		}
		if err != nil {
			return a.report(err)
		}
	}
	return nil
}

func runFile(vm *rubble.VM, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "couldn't open program")
	}
	defer f.Close()
	_, err = vm.DoReader(f, file)
	return err
}

// check translates each file without running it and reports every syntax
// error found.
func (a *app) check(files []string) error {
	vm := a.newVM()
	var result *multierror.Error
	for _, file := range files {
		if err := checkFile(vm, file); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return a.report(err)
	}
	return nil
}

func checkFile(vm *rubble.VM, file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, "couldn't read program")
	}
	src := &ast.Source{Name: file, Text: string(b)}
	if _, err := vm.Session.Parse(parser.Parser{}, src, rubble.TopLevelContext, nil); err != nil {
		return errors.Wrap(err, file)
	}
	return nil
}
