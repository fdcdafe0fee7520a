package binder

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Peripheral is the index of a SERCOM instance.
type Peripheral int

// Pin is the identifier of a board pin constant.
type Pin string

// Pad is a SERCOM pad number, 0 through 3.
type Pad int

const NumPads = 4

func (p Pad) valid() bool {
	return p >= 0 && p < NumPads
}

// Kind is the interface class an object is constructed as.
type Kind int

const (
	// Serial is a point-to-point UART.
	Serial Kind = iota
	// Bus is a two-wire (I2C) multi-drop bus.
	Bus
)

func (k Kind) String() string {
	switch k {
	case Serial:
		return "serial"
	case Bus:
		return "bus"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// PinSpec names the signal pins of a binding. Serial bindings use RX and
// TX, bus bindings use SDA and SCL.
type PinSpec struct {
	RX, TX   Pin
	SDA, SCL Pin
}

func (s PinSpec) pins(kind Kind) []Pin {
	if kind == Bus {
		return []Pin{s.SDA, s.SCL}
	}
	return []Pin{s.RX, s.TX}
}

// PadSpec names the pads carrying each signal.
type PadSpec struct {
	RX, TX   Pad
	SDA, SCL Pad
}

// BusPads is the pad assignment of every I2C master. The SERCOM hardware
// fixes SDA to pad 0 and SCL to pad 1.
var BusPads = PadSpec{SDA: 0, SCL: 1}

// OverBusPads is the serial pad assignment used when a UART borrows the
// SDA/SCL lines of a two-wire bus: RX on SCL's pad, TX on SDA's pad.
var OverBusPads = PadSpec{RX: 1, TX: 0}

// OverSyncBusPads is the serial pad assignment used when a UART borrows
// the data lines of an SPI bus: RX on MISO's pad 3, TX on MOSI's pad 0.
var OverSyncBusPads = PadSpec{RX: 3, TX: 0}

// Forwarder is an interrupt handler that relays a vector to an object's
// interrupt service routine.
type Forwarder struct {
	Vector string
	Object string
	Kind   Kind
}

// Binding ties one peripheral to one interface object and its
// forwarders.
type Binding struct {
	Peripheral Peripheral
	Handle     string
	Name       string
	Kind       Kind
	Pins       PinSpec
	Pads       PadSpec
	Strategy   Strategy

	forwarders []Forwarder
}

// Forwarders returns the binding's forwarders, one per vector of the
// peripheral.
func (b *Binding) Forwarders() []Forwarder {
	return slices.Clone(b.forwarders)
}

// Vectors returns the vector names the binding defines.
func (b *Binding) Vectors() []string {
	names := make([]string, len(b.forwarders))
	for i, fwd := range b.forwarders {
		names[i] = fwd.Vector
	}
	return names
}

func (b *Binding) clone() *Binding {
	c := *b
	c.forwarders = slices.Clone(b.forwarders)
	return &c
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s %s on SERCOM%d", b.Kind, b.Name, b.Peripheral)
}
