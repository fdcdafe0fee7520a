package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/exp/slices"
	"golang.org/x/tools/imports"

	"omibyte.io/sercomgen/binder"
)

var (
	ErrPlanInvalid  = errors.New("plan has errors")
	ErrFormatFailed = errors.New("error formatting generated source")
)

const header = "// Code generated by sercomgen. DO NOT EDIT."

// Options controls the generated files.
type Options struct {
	// Package is the package clause of the generated files.
	Package string
	Drivers Drivers
}

// File is one generated source file.
type File struct {
	Name string
	Src  []byte
}

type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	if len(opts.Package) == 0 {
		opts.Package = "board"
	}
	opts.Drivers = opts.Drivers.Merge(DefaultDrivers())
	return &Generator{opts: opts}
}

type importSpec struct {
	Alias, Path string
}

type handler struct {
	Pragma string
	Vector string
	Call   string
}

type object struct {
	Name     string
	Kind     binder.Kind
	Handle   string
	Init     string
	Handlers []handler
}

type fileData struct {
	Header     string
	Constraint string
	Package    string
	Imports    []importSpec
	Objects    []object
}

var fileTemplate = template.Must(template.New("file").Parse(`{{.Header}}

//go:build {{.Constraint}}

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{end}}
{{- range .Objects}}
// {{.Name}} is the {{.Kind}} interface bound to {{.Handle}}.
var {{.Name}} = {{.Init}}
{{range .Handlers}}
{{.Pragma}}
func {{.Vector}}() {
	{{.Call}}
}
{{end}}
{{- end}}`))

// FileName returns the name of the file generated for a strategy.
func FileName(strategy binder.Strategy) string {
	return fmt.Sprintf("sercom_%s.go", strategy.Target().Series)
}

// Generate emits the source for a plan. A plan that matched no chip
// family yields no files, leaving every object it would have defined
// undefined. A plan with binding errors yields no files and an error.
func (g *Generator) Generate(plan *binder.Plan) ([]File, error) {
	if err := plan.Verify(); err != nil {
		return nil, errors.Join(ErrPlanInvalid, err)
	}
	if !plan.Matched() {
		return nil, nil
	}

	data := fileData{
		Header:     header,
		Constraint: plan.Strategy().Constraint(),
		Package:    g.opts.Package,
	}

	var used []Driver
	for _, b := range plan.Bindings() {
		driver := g.driver(b.Kind)
		if !slices.Contains(used, driver) {
			used = append(used, driver)
		}
		data.Objects = append(data.Objects, g.object(b, driver))
	}

	for _, driver := range used {
		if len(driver.Import) == 0 {
			continue
		}
		spec := importSpec{Alias: driver.alias(), Path: driver.Import}
		if !slices.Contains(data.Imports, spec) {
			data.Imports = append(data.Imports, spec)
		}
	}

	var w strings.Builder
	if err := fileTemplate.Execute(&w, data); err != nil {
		return nil, err
	}

	name := FileName(plan.Strategy())
	src, err := imports.Process(name, []byte(w.String()), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormatFailed, name, err)
	}

	return []File{{Name: name, Src: src}}, nil
}

func (g *Generator) driver(kind binder.Kind) Driver {
	if kind == binder.Bus {
		return g.opts.Drivers.Bus
	}
	return g.opts.Drivers.Serial
}

func (g *Generator) object(b *binder.Binding, driver Driver) object {
	var args []string
	switch b.Kind {
	case binder.Bus:
		args = []string{b.Handle, string(b.Pins.SDA), string(b.Pins.SCL)}
	default:
		args = []string{
			b.Handle,
			string(b.Pins.RX),
			string(b.Pins.TX),
			fmt.Sprintf(driver.RXPad, int(b.Pads.RX)),
			fmt.Sprintf(driver.TXPad, int(b.Pads.TX)),
		}
	}

	obj := object{
		Name:   b.Name,
		Kind:   b.Kind,
		Handle: b.Handle,
		Init:   fmt.Sprintf("%s(%s)", driver.Constructor, strings.Join(args, ", ")),
	}
	for _, fwd := range b.Forwarders() {
		obj.Handlers = append(obj.Handlers, handler{
			Pragma: fmt.Sprintf(g.opts.Drivers.Pragma, fwd.Vector),
			Vector: fwd.Vector,
			Call:   fmt.Sprintf("%s.%s()", fwd.Object, driver.Service),
		})
	}
	return obj
}

// WriteFiles writes the generated files into dir, creating it if needed.
func WriteFiles(dir string, files []File) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	for _, file := range files {
		if err := os.WriteFile(filepath.Join(dir, file.Name), file.Src, 0644); err != nil {
			return err
		}
	}
	return nil
}
