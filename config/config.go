package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"os"

	"gopkg.in/yaml.v3"

	"omibyte.io/sercomgen/binder"
	"omibyte.io/sercomgen/generator"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Form names a binding form in a board file.
type Form string

const (
	FormSerial            Form = "serial"
	FormSerialPins        Form = "serial-pins"
	FormSerialPads        Form = "serial-pads"
	FormBus               Form = "bus"
	FormBusPins           Form = "bus-pins"
	FormSerialOverBus     Form = "serial-over-bus"
	FormSerialOverSyncBus Form = "serial-over-sync-bus"
)

// Board is the contents of a board file.
type Board struct {
	// Package is the Go package name of the generated files.
	Package string `yaml:"package"`
	// Targets are the series, chips or tags to generate for.
	Targets    []string          `yaml:"targets"`
	Symbols    Symbols           `yaml:"symbols"`
	Convention binder.Convention `yaml:"convention"`
	Drivers    generator.Drivers `yaml:"drivers"`
	Bindings   []Binding         `yaml:"bindings"`
	// Require lists objects that must exist after expansion.
	Require []string `yaml:"require"`
}

// Symbols describes where board identifiers are resolved from. Both
// sources may be given; an identifier is resolved if either declares it.
type Symbols struct {
	Package  string   `yaml:"package"`
	Declared []string `yaml:"declared"`
}

// Binding is one binding form invocation.
type Binding struct {
	Form   Form   `yaml:"form"`
	Sercom *int   `yaml:"sercom"`
	Serial *int   `yaml:"serial"`
	Bus    *int   `yaml:"bus"`
	Name   string `yaml:"name"`
	RX     string `yaml:"rx"`
	TX     string `yaml:"tx"`
	SDA    string `yaml:"sda"`
	SCL    string `yaml:"scl"`
	RXPad  *int   `yaml:"rxPad"`
	TXPad  *int   `yaml:"txPad"`
}

// Load reads and validates a board file.
func Load(path string) (*Board, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	board, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return board, nil
}

// Parse decodes a board file, fills in defaults and validates it.
func Parse(buf []byte) (*Board, error) {
	board := &Board{}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(board); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	board.applyDefaults()
	if err := board.Validate(); err != nil {
		return nil, err
	}
	return board, nil
}

func (b *Board) applyDefaults() {
	if len(b.Package) == 0 {
		b.Package = "board"
	}
	b.Convention = b.Convention.Merge(binder.DefaultConvention())
	b.Drivers = b.Drivers.Merge(generator.DefaultDrivers())
}

func (b *Board) Validate() error {
	var errs []error
	if !token.IsIdentifier(b.Package) {
		errs = append(errs, fmt.Errorf("%w: package name %q", ErrInvalidConfig, b.Package))
	}
	if len(b.Targets) == 0 {
		errs = append(errs, fmt.Errorf("%w: no targets", ErrInvalidConfig))
	}
	if err := b.Convention.Validate(); err != nil {
		errs = append(errs, errors.Join(ErrInvalidConfig, err))
	}
	if err := b.Drivers.Validate(); err != nil {
		errs = append(errs, errors.Join(ErrInvalidConfig, err))
	}
	if len(b.Bindings) == 0 {
		errs = append(errs, fmt.Errorf("%w: no bindings", ErrInvalidConfig))
	}
	for i, binding := range b.Bindings {
		if err := binding.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: binding %d: %v", ErrInvalidConfig, i, err))
		}
	}
	return errors.Join(errs...)
}

func (b Binding) validate() error {
	if b.Sercom == nil {
		return errors.New("missing sercom")
	}

	type fields struct {
		name, serial, bus, pins, pads bool
	}
	var want fields
	switch b.Form {
	case FormSerial:
		want = fields{serial: true}
	case FormBus:
		want = fields{bus: true}
	case FormSerialOverBus, FormSerialOverSyncBus:
		want = fields{serial: true, bus: true}
	case FormSerialPins, FormBusPins:
		want = fields{name: true, pins: true}
	case FormSerialPads:
		want = fields{name: true, pins: true, pads: true}
	default:
		return fmt.Errorf("unknown form %q", b.Form)
	}

	isBus := b.Form == FormBusPins
	serialPins := len(b.RX) > 0 || len(b.TX) > 0
	busPins := len(b.SDA) > 0 || len(b.SCL) > 0
	switch {
	case want.name && len(b.Name) == 0:
		return fmt.Errorf("form %s needs a name", b.Form)
	case !want.name && len(b.Name) > 0:
		return fmt.Errorf("form %s derives its name, remove name %q", b.Form, b.Name)
	case !want.serial && b.Serial != nil:
		return fmt.Errorf("form %s takes no serial number", b.Form)
	case !want.bus && b.Bus != nil:
		return fmt.Errorf("form %s takes no bus number", b.Form)
	case !want.pins && (serialPins || busPins):
		return fmt.Errorf("form %s derives its pins", b.Form)
	case want.pins && isBus && (len(b.SDA) == 0 || len(b.SCL) == 0):
		return fmt.Errorf("form %s needs sda and scl", b.Form)
	case want.pins && isBus && serialPins:
		return fmt.Errorf("form %s takes sda and scl, not rx and tx", b.Form)
	case want.pins && !isBus && (len(b.RX) == 0 || len(b.TX) == 0):
		return fmt.Errorf("form %s needs rx and tx", b.Form)
	case want.pins && !isBus && busPins:
		return fmt.Errorf("form %s takes rx and tx, not sda and scl", b.Form)
	case want.pads && (b.RXPad == nil || b.TXPad == nil):
		return fmt.Errorf("form %s needs rxPad and txPad", b.Form)
	case !want.pads && (b.RXPad != nil || b.TXPad != nil):
		return fmt.Errorf("form %s uses fixed pads", b.Form)
	}
	return nil
}

// Apply invokes the binding forms of the board against the plan.
func (b *Board) Apply(plan *binder.Plan) {
	for _, binding := range b.Bindings {
		binding.apply(plan)
	}
}

func (b Binding) apply(plan *binder.Plan) {
	periph := binder.Peripheral(*b.Sercom)
	switch b.Form {
	case FormSerial:
		plan.BindSerial(periph, number(b.Serial))
	case FormSerialPins:
		plan.BindSerialOnPins(periph, b.Name, binder.Pin(b.RX), binder.Pin(b.TX))
	case FormSerialPads:
		plan.BindSerialOnPinsAndPads(periph, b.Name, binder.Pin(b.RX), binder.Pin(b.TX), binder.Pad(*b.RXPad), binder.Pad(*b.TXPad))
	case FormBus:
		plan.BindBus(periph, number(b.Bus))
	case FormBusPins:
		plan.BindBusInterface(periph, b.Name, binder.Pin(b.SDA), binder.Pin(b.SCL))
	case FormSerialOverBus:
		plan.BindSerialOverBus(periph, number(b.Serial), number(b.Bus))
	case FormSerialOverSyncBus:
		plan.BindSerialOverSyncBus(periph, number(b.Serial), number(b.Bus))
	}
}

// number returns an omitted interface number as 0.
func number(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
