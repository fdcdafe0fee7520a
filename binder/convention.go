package binder

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"
)

// Convention composes board identifiers from interface numbers. Serial
// formats take the interface number (%d); bus formats take the bus
// suffix (%s), which is empty for bus 0 and the number otherwise.
type Convention struct {
	Handle   string `yaml:"handle"`
	Serial   string `yaml:"serial"`
	SerialRX string `yaml:"serialRX"`
	SerialTX string `yaml:"serialTX"`
	Wire     string `yaml:"wire"`
	WireSDA  string `yaml:"wireSDA"`
	WireSCL  string `yaml:"wireSCL"`
	SPIMOSI  string `yaml:"spiMOSI"`
	SPIMISO  string `yaml:"spiMISO"`
}

// DefaultConvention follows the Arduino variant naming that SAM board
// packages mirror.
func DefaultConvention() Convention {
	return Convention{
		Handle:   "SERCOM%d",
		Serial:   "Serial%d",
		SerialRX: "PIN_SERIAL%d_RX",
		SerialTX: "PIN_SERIAL%d_TX",
		Wire:     "Wire%s",
		WireSDA:  "PIN_WIRE%s_SDA",
		WireSCL:  "PIN_WIRE%s_SCL",
		SPIMOSI:  "PIN_SPI%s_MOSI",
		SPIMISO:  "PIN_SPI%s_MISO",
	}
}

// Merge fills the empty formats of c from o.
func (c Convention) Merge(o Convention) Convention {
	fill := func(dst *string, src string) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&c.Handle, o.Handle)
	fill(&c.Serial, o.Serial)
	fill(&c.SerialRX, o.SerialRX)
	fill(&c.SerialTX, o.SerialTX)
	fill(&c.Wire, o.Wire)
	fill(&c.WireSDA, o.WireSDA)
	fill(&c.WireSCL, o.WireSCL)
	fill(&c.SPIMOSI, o.SPIMOSI)
	fill(&c.SPIMISO, o.SPIMISO)
	return c
}

// Validate checks that every format composes a Go identifier.
func (c Convention) Validate() error {
	checks := []struct {
		field, format string
		arg           any
	}{
		{"handle", c.Handle, 1},
		{"serial", c.Serial, 1},
		{"serialRX", c.SerialRX, 1},
		{"serialTX", c.SerialTX, 1},
		{"wire", c.Wire, "1"},
		{"wireSDA", c.WireSDA, "1"},
		{"wireSCL", c.WireSCL, "1"},
		{"spiMOSI", c.SPIMOSI, "1"},
		{"spiMISO", c.SPIMISO, "1"},
	}
	for _, check := range checks {
		if name := fmt.Sprintf(check.format, check.arg); !token.IsIdentifier(name) || !strings.Contains(check.format, "%") {
			return fmt.Errorf("%w: convention %s %q", ErrInvalidName, check.field, check.format)
		}
	}
	return nil
}

func busSuffix(bus int) string {
	if bus == 0 {
		return ""
	}
	return strconv.Itoa(bus)
}

func (c Convention) HandleName(p Peripheral) string {
	return fmt.Sprintf(c.Handle, int(p))
}

func (c Convention) SerialName(n int) string {
	return fmt.Sprintf(c.Serial, n)
}

func (c Convention) SerialPins(n int) PinSpec {
	return PinSpec{
		RX: Pin(fmt.Sprintf(c.SerialRX, n)),
		TX: Pin(fmt.Sprintf(c.SerialTX, n)),
	}
}

func (c Convention) WireName(bus int) string {
	return fmt.Sprintf(c.Wire, busSuffix(bus))
}

func (c Convention) WirePins(bus int) PinSpec {
	return PinSpec{
		SDA: Pin(fmt.Sprintf(c.WireSDA, busSuffix(bus))),
		SCL: Pin(fmt.Sprintf(c.WireSCL, busSuffix(bus))),
	}
}

// SPIPins returns the data lines of an SPI bus as a serial pair: RX is
// MISO and TX is MOSI.
func (c Convention) SPIPins(bus int) PinSpec {
	return PinSpec{
		RX: Pin(fmt.Sprintf(c.SPIMISO, busSuffix(bus))),
		TX: Pin(fmt.Sprintf(c.SPIMOSI, busSuffix(bus))),
	}
}
