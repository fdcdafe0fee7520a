package generator

import (
	"errors"
	"fmt"
	"go/token"
	"path"
	"strings"
)

var ErrInvalidDriver = errors.New("invalid driver description")

// Driver describes the interface object type a binding constructs.
type Driver struct {
	// Import is the import path of the driver package.
	Import string `yaml:"import"`
	// Constructor is the qualified constructor, e.g. "uart.New".
	Constructor string `yaml:"constructor"`
	// Service is the interrupt service method forwarders call.
	Service string `yaml:"service"`
	// RXPad and TXPad format pad numbers as driver identifiers. They are
	// unused by bus drivers.
	RXPad string `yaml:"rxPad"`
	TXPad string `yaml:"txPad"`
}

// Drivers selects the drivers used for each interface kind and the
// pragma that places handlers in the vector table.
type Drivers struct {
	Serial Driver `yaml:"serial"`
	Bus    Driver `yaml:"bus"`
	// Pragma formats the directive preceding each handler; %[1]s is the
	// vector name.
	Pragma string `yaml:"pragma"`
}

// DefaultDrivers describes an Arduino-core style driver package: a Uart
// built from its SERCOM, pins and pads, and a two-wire bus built from its
// SERCOM and pins. The generated handlers define the SERCOM vectors
// themselves, so a runtime that already defines them needs its own
// drivers and pragma.
func DefaultDrivers() Drivers {
	return Drivers{
		Serial: Driver{
			Import:      "peripheral/uart",
			Constructor: "uart.New",
			Service:     "IrqHandler",
			RXPad:       "uart.RXPad%d",
			TXPad:       "uart.TXPad%d",
		},
		Bus: Driver{
			Import:      "peripheral/i2c",
			Constructor: "i2c.New",
			Service:     "OnService",
		},
		Pragma: "//sigo:interrupt %[1]s %[1]s",
	}
}

func (d Driver) merge(o Driver) Driver {
	// The import belongs to the constructor; a custom constructor keeps
	// its own import, even when it has none.
	if len(d.Constructor) == 0 {
		d.Constructor = o.Constructor
		if len(d.Import) == 0 {
			d.Import = o.Import
		}
	}
	if len(d.Service) == 0 {
		d.Service = o.Service
	}
	if len(d.RXPad) == 0 {
		d.RXPad = o.RXPad
	}
	if len(d.TXPad) == 0 {
		d.TXPad = o.TXPad
	}
	return d
}

// Merge fills the empty fields of d from o.
func (d Drivers) Merge(o Drivers) Drivers {
	d.Serial = d.Serial.merge(o.Serial)
	d.Bus = d.Bus.merge(o.Bus)
	if len(d.Pragma) == 0 {
		d.Pragma = o.Pragma
	}
	return d
}

func (d Driver) validate(kind string, pads bool) error {
	if !isQualified(d.Constructor) {
		return fmt.Errorf("%w: %s constructor %q", ErrInvalidDriver, kind, d.Constructor)
	}
	qualifier := d.qualifier()
	if (len(qualifier) > 0) != (len(d.Import) > 0) || strings.ContainsAny(d.Import, " \t\"\\`") {
		return fmt.Errorf("%w: %s import %q for constructor %s", ErrInvalidDriver, kind, d.Import, d.Constructor)
	}
	if !token.IsIdentifier(d.Service) {
		return fmt.Errorf("%w: %s service method %q", ErrInvalidDriver, kind, d.Service)
	}
	if pads {
		for _, format := range []string{d.RXPad, d.TXPad} {
			pad := fmt.Sprintf(format, 0)
			if pkg, _, found := strings.Cut(pad, "."); !isQualified(pad) || found && pkg != qualifier {
				return fmt.Errorf("%w: %s pad format %q", ErrInvalidDriver, kind, format)
			}
		}
	}
	return nil
}

func (d Drivers) Validate() error {
	if err := d.Serial.validate("serial", true); err != nil {
		return err
	}
	if err := d.Bus.validate("bus", false); err != nil {
		return err
	}
	pragma := fmt.Sprintf(d.Pragma, "SERCOM0_Handler")
	if !strings.HasPrefix(pragma, "//") || strings.ContainsAny(pragma, "\r\n") || strings.Contains(pragma, "%!") {
		return fmt.Errorf("%w: pragma %q", ErrInvalidDriver, d.Pragma)
	}
	return nil
}

// qualifier returns the package name the constructor is qualified with,
// or "" for a constructor in the generated package itself.
func (d Driver) qualifier() string {
	if pkg, _, found := strings.Cut(d.Constructor, "."); found {
		return pkg
	}
	return ""
}

// alias returns the import name needed for the constructor's qualifier,
// or "" when the import path already ends in it.
func (d Driver) alias() string {
	if q := d.qualifier(); q != path.Base(d.Import) {
		return q
	}
	return ""
}

// isQualified reports whether s is an identifier optionally qualified by
// a package name.
func isQualified(s string) bool {
	pkg, name, found := strings.Cut(s, ".")
	if !found {
		return token.IsIdentifier(s)
	}
	return token.IsIdentifier(pkg) && token.IsIdentifier(name)
}
