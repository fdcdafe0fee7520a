package binder

import (
	"errors"
	"fmt"
	"go/token"
)

// Resolver reports whether a board identifier exists.
type Resolver interface {
	Resolve(name string) bool
}

// Plan collects the bindings of one build. Each binding form validates
// its arguments, records the binding and returns a copy of it. Problems
// are accumulated and reported together by Err.
type Plan struct {
	strategy   Strategy
	convention Convention
	resolver   Resolver

	bindings []*Binding
	objects  map[string]*Binding
	vectors  map[string]*Binding
	errs     []error
}

// NewPlan creates a plan for the strategy. A nil strategy is the no-match
// case: every form expands to nothing. A nil resolver disables symbol
// checks, leaving them to the compiler.
func NewPlan(strategy Strategy, convention Convention, resolver Resolver) *Plan {
	return &Plan{
		strategy:   strategy,
		convention: convention.Merge(DefaultConvention()),
		resolver:   resolver,
		objects:    map[string]*Binding{},
		vectors:    map[string]*Binding{},
	}
}

func (p *Plan) Strategy() Strategy {
	return p.strategy
}

func (p *Plan) Convention() Convention {
	return p.convention
}

// Matched reports whether the plan has a chip family to expand against.
func (p *Plan) Matched() bool {
	return p.strategy != nil
}

// BindSerial binds the peripheral to Serial<n> on the board's
// PIN_SERIAL<n>_RX and PIN_SERIAL<n>_TX pins using the family's default
// pads.
func (p *Plan) BindSerial(periph Peripheral, n int) *Binding {
	pins := p.convention.SerialPins(n)
	return p.BindSerialOnPins(periph, p.convention.SerialName(n), pins.RX, pins.TX)
}

// BindSerialOnPins binds the peripheral to a named UART on explicit pins
// using the family's default pads.
func (p *Plan) BindSerialOnPins(periph Peripheral, name string, rx, tx Pin) *Binding {
	if p.strategy == nil {
		return nil
	}
	pads := p.strategy.DefaultPads()
	return p.BindSerialOnPinsAndPads(periph, name, rx, tx, pads.RX, pads.TX)
}

// BindSerialOnPinsAndPads binds the peripheral to a named UART with full
// control over pins and pads.
func (p *Plan) BindSerialOnPinsAndPads(periph Peripheral, name string, rx, tx Pin, rxPad, txPad Pad) *Binding {
	return p.bind(periph, name, Serial, PinSpec{RX: rx, TX: tx}, PadSpec{RX: rxPad, TX: txPad})
}

// BindBusInterface binds the peripheral to a named two-wire bus on the
// given data and clock pins.
func (p *Plan) BindBusInterface(periph Peripheral, name string, sda, scl Pin) *Binding {
	return p.bind(periph, name, Bus, PinSpec{SDA: sda, SCL: scl}, BusPads)
}

// BindBus binds the peripheral to Wire<bus> on the board's PIN_WIRE
// pins. Bus 0 has no numeric suffix.
func (p *Plan) BindBus(periph Peripheral, bus int) *Binding {
	pins := p.convention.WirePins(bus)
	return p.BindBusInterface(periph, p.convention.WireName(bus), pins.SDA, pins.SCL)
}

// BindSerialOverBus binds Serial<n> to the peripheral on the SDA and SCL
// lines of two-wire bus number bus.
func (p *Plan) BindSerialOverBus(periph Peripheral, n, bus int) *Binding {
	wire := p.convention.WirePins(bus)
	return p.BindSerialOnPinsAndPads(periph, p.convention.SerialName(n), wire.SCL, wire.SDA, OverBusPads.RX, OverBusPads.TX)
}

// BindSerialOverSyncBus binds Serial<n> to the peripheral on the MISO and
// MOSI lines of SPI bus number bus.
func (p *Plan) BindSerialOverSyncBus(periph Peripheral, n, bus int) *Binding {
	spi := p.convention.SPIPins(bus)
	return p.BindSerialOnPinsAndPads(periph, p.convention.SerialName(n), spi.RX, spi.TX, OverSyncBusPads.RX, OverSyncBusPads.TX)
}

func (p *Plan) bind(periph Peripheral, name string, kind Kind, pins PinSpec, pads PadSpec) *Binding {
	if p.strategy == nil {
		return nil
	}

	b := &Binding{
		Peripheral: periph,
		Handle:     p.convention.HandleName(periph),
		Name:       name,
		Kind:       kind,
		Pins:       pins,
		Pads:       pads,
		Strategy:   p.strategy,
	}

	var errs []error
	if !token.IsIdentifier(name) {
		errs = append(errs, fmt.Errorf("%w: object name %q", ErrInvalidName, name))
	}
	if periph < 0 || int(periph) >= p.strategy.Peripherals() {
		errs = append(errs, fmt.Errorf("%w: %s has no SERCOM%d", ErrUnresolvedSymbol, p.strategy.Target().Series, periph))
	} else if err := p.resolve(b.Handle); err != nil {
		errs = append(errs, err)
	}
	for _, pin := range pins.pins(kind) {
		if err := p.resolve(string(pin)); err != nil {
			errs = append(errs, err)
		}
	}
	if kind == Serial {
		errs = append(errs, p.checkSerialPads(pads)...)
	}

	// The binding is recorded even when it collides so that every
	// duplicate is reported, not only the first.
	if prev, ok := p.objects[name]; ok {
		errs = append(errs, fmt.Errorf("%w: object %s (%s and %s)", ErrDuplicateDefinition, name, prev, b))
	} else {
		p.objects[name] = b
	}

	for _, vector := range p.strategy.Vectors(periph) {
		b.forwarders = append(b.forwarders, Forwarder{Vector: vector, Object: name, Kind: kind})
		if prev, ok := p.vectors[vector]; ok {
			errs = append(errs, fmt.Errorf("%w: vector %s (%s and %s)", ErrDuplicateDefinition, vector, prev, b))
		} else {
			p.vectors[vector] = b
		}
	}

	p.bindings = append(p.bindings, b)
	if len(errs) > 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", b, errors.Join(errs...)))
	}
	return b.clone()
}

func (p *Plan) resolve(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("%w: empty pin identifier", ErrUnresolvedSymbol)
	}
	if p.resolver != nil && !p.resolver.Resolve(name) {
		return fmt.Errorf("%w: %s", ErrUnresolvedSymbol, name)
	}
	return nil
}

func (p *Plan) checkSerialPads(pads PadSpec) (errs []error) {
	if !pads.RX.valid() {
		errs = append(errs, fmt.Errorf("%w: RX pad %d", ErrInvalidPad, pads.RX))
	}
	if !pads.TX.valid() {
		errs = append(errs, fmt.Errorf("%w: TX pad %d", ErrInvalidPad, pads.TX))
	} else if !p.strategy.CanTransmitOn(pads.TX) {
		errs = append(errs, fmt.Errorf("%w: %s cannot transmit on pad %d", ErrInvalidPad, p.strategy.Target().Series, pads.TX))
	}
	if pads.RX == pads.TX {
		errs = append(errs, fmt.Errorf("%w: RX and TX share pad %d", ErrInvalidPad, pads.RX))
	}
	return errs
}

// Bindings returns copies of the recorded bindings in the order they were
// made.
func (p *Plan) Bindings() []*Binding {
	out := make([]*Binding, len(p.bindings))
	for i, b := range p.bindings {
		out[i] = b.clone()
	}
	return out
}

// Object returns the binding that defines the named object. Looking up an
// object in a plan that matched no chip family always fails.
func (p *Plan) Object(name string) (*Binding, error) {
	b, ok := p.objects[name]
	if !ok {
		if p.strategy == nil {
			return nil, fmt.Errorf("%w: %s (%w)", ErrUnresolvedSymbol, name, ErrNoChipFamily)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedSymbol, name)
	}
	return b.clone(), nil
}

// Require checks that every named object is defined.
func (p *Plan) Require(names ...string) error {
	var errs []error
	for _, name := range names {
		if _, err := p.Object(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Err returns every problem found while binding.
func (p *Plan) Err() error {
	return errors.Join(p.errs...)
}
