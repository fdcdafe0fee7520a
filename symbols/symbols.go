// Package symbols resolves board identifiers while bindings are being
// generated, so that a missing pin or peripheral handle is reported before
// the generated source is ever compiled.
package symbols

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"
)

var ErrLoadFailed = errors.New("failed to load board package")

// Table is a set of declared identifiers.
type Table map[string]struct{}

func NewTable(names ...string) Table {
	t := Table{}
	t.Add(names...)
	return t
}

func (t Table) Add(names ...string) {
	for _, name := range names {
		t[name] = struct{}{}
	}
}

func (t Table) Resolve(name string) bool {
	_, ok := t[name]
	return ok
}

// Names returns the identifiers in sorted order.
func (t Table) Names() []string {
	names := maps.Keys(t)
	slices.Sort(names)
	return names
}

// LoadOptions selects the board package to read.
type LoadOptions struct {
	Context context.Context
	// Dir is the working directory patterns are resolved against.
	Dir string
	// Pattern is the package pattern, e.g. "./board".
	Pattern string
	// Tags are the build tags the board package is read under.
	Tags []string
}

// Load reads the package-level declarations of a board package. Only the
// syntax is needed, so packages whose imports cannot be resolved on the
// host, such as the embedded runtime, still yield their identifiers.
func Load(opts LoadOptions) (Table, error) {
	cfg := &packages.Config{
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Context: opts.Context,
		Dir:     opts.Dir,
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, opts.Pattern)
	if err != nil {
		return nil, errors.Join(ErrLoadFailed, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("%w: pattern %s matched %d packages", ErrLoadFailed, opts.Pattern, len(pkgs))
	}

	pkg := pkgs[0]
	if len(pkg.Syntax) == 0 {
		errs := []error{fmt.Errorf("%w: %s has no Go files", ErrLoadFailed, opts.Pattern)}
		for _, pkgErr := range pkg.Errors {
			errs = append(errs, pkgErr)
		}
		return nil, errors.Join(errs...)
	}

	t := Table{}
	for _, file := range pkg.Syntax {
		t.Add(declaredNames(file)...)
	}
	return t, nil
}

func declaredNames(file *ast.File) (names []string) {
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.FuncDecl:
			if decl.Recv == nil {
				names = append(names, decl.Name.Name)
			}
		case *ast.GenDecl:
			if decl.Tok == token.IMPORT {
				continue
			}
			for _, spec := range decl.Specs {
				switch spec := spec.(type) {
				case *ast.ValueSpec:
					for _, name := range spec.Names {
						if name.Name != "_" {
							names = append(names, name.Name)
						}
					}
				case *ast.TypeSpec:
					names = append(names, spec.Name.Name)
				}
			}
		}
	}
	return names
}
