package binder

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type symbolSet map[string]bool

func (s symbolSet) Resolve(name string) bool {
	return s[name]
}

func mustSelect(t *testing.T, flag string) Strategy {
	t.Helper()
	strategy, ok := Select(flag)
	if !ok {
		t.Fatalf("no strategy for %s", flag)
	}
	return strategy
}

func TestSelect(t *testing.T) {
	tests := []struct {
		flag    string
		vectors int
	}{
		{"samd51", 4},
		{"atsame54p20a", 4},
		{"same51", 4},
		{"samd21", 1},
		{"atsamd21g18a", 1},
		{"samd11", 1},
		{"samd10", 1},
	}

	for _, tc := range tests {
		t.Run(tc.flag, func(t *testing.T) {
			strategy := mustSelect(t, tc.flag)
			if got := len(strategy.Vectors(0)); got != tc.vectors {
				t.Errorf("vectors = %d, want %d", got, tc.vectors)
			}
		})
	}

	if _, ok := Select("rp2040"); ok {
		t.Error("rp2040 should not match a chip family")
	}
}

func TestForwarderCount(t *testing.T) {
	tests := []struct {
		flag    string
		vectors []string
	}{
		{"samd51", []string{"SERCOM3_0_Handler", "SERCOM3_1_Handler", "SERCOM3_2_Handler", "SERCOM3_3_Handler"}},
		{"samd21", []string{"SERCOM3_Handler"}},
	}

	for _, tc := range tests {
		t.Run(tc.flag, func(t *testing.T) {
			plan := NewPlan(mustSelect(t, tc.flag), Convention{}, nil)
			forms := []*Binding{
				plan.BindSerial(3, 4),
				NewPlan(plan.Strategy(), Convention{}, nil).BindSerialOnPins(3, "SerialX", "D1", "D2"),
				NewPlan(plan.Strategy(), Convention{}, nil).BindSerialOnPinsAndPads(3, "SerialY", "D1", "D2", 3, 0),
				NewPlan(plan.Strategy(), Convention{}, nil).BindBusInterface(3, "WireX", "D1", "D2"),
				NewPlan(plan.Strategy(), Convention{}, nil).BindSerialOverBus(3, 5, 1),
				NewPlan(plan.Strategy(), Convention{}, nil).BindSerialOverSyncBus(3, 6, 0),
			}

			for _, b := range forms {
				if !reflect.DeepEqual(b.Vectors(), tc.vectors) {
					t.Errorf("%s: vectors = %v, want %v", b, b.Vectors(), tc.vectors)
				}
				for _, fwd := range b.Forwarders() {
					if fwd.Object != b.Name || fwd.Kind != b.Kind {
						t.Errorf("%s: forwarder %+v does not target the binding's object", b, fwd)
					}
				}
			}
		})
	}
}

func TestBindSerialScenario(t *testing.T) {
	plan := NewPlan(mustSelect(t, "samd51"), Convention{}, nil)
	b := plan.BindSerial(3, 4)
	if err := plan.Verify(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Name != "Serial4" {
		t.Errorf("name = %s, want Serial4", b.Name)
	}
	if b.Handle != "SERCOM3" {
		t.Errorf("handle = %s, want SERCOM3", b.Handle)
	}
	if b.Pins.RX != "PIN_SERIAL4_RX" || b.Pins.TX != "PIN_SERIAL4_TX" {
		t.Errorf("pins = %+v", b.Pins)
	}
	if b.Pads.RX != 1 || b.Pads.TX != 0 {
		t.Errorf("pads = %+v, want RX 1 TX 0", b.Pads)
	}
	if n := len(b.Forwarders()); n != 4 {
		t.Errorf("forwarders = %d, want 4", n)
	}
}

func TestImplicitMatchesExplicit(t *testing.T) {
	for _, flag := range []string{"samd51", "samd21"} {
		t.Run(flag, func(t *testing.T) {
			strategy := mustSelect(t, flag)
			implicit := NewPlan(strategy, Convention{}, nil).BindSerial(2, 3)
			explicit := NewPlan(strategy, Convention{}, nil).BindSerialOnPins(2, "Serial3", "PIN_SERIAL3_RX", "PIN_SERIAL3_TX")
			if !reflect.DeepEqual(implicit, explicit) {
				t.Errorf("implicit %+v != explicit %+v", implicit, explicit)
			}
		})
	}
}

func TestShortcutPads(t *testing.T) {
	strategy := mustSelect(t, "samd21")

	overBus := NewPlan(strategy, Convention{}, nil).BindSerialOverBus(1, 2, 0)
	direct := NewPlan(strategy, Convention{}, nil).BindSerialOnPinsAndPads(1, "Serial2", "PIN_WIRE_SCL", "PIN_WIRE_SDA", 1, 0)
	if !reflect.DeepEqual(overBus, direct) {
		t.Errorf("serial over bus %+v != direct %+v", overBus, direct)
	}

	overSync := NewPlan(strategy, Convention{}, nil).BindSerialOverSyncBus(4, 5, 1)
	direct = NewPlan(strategy, Convention{}, nil).BindSerialOnPinsAndPads(4, "Serial5", "PIN_SPI1_MISO", "PIN_SPI1_MOSI", 3, 0)
	if !reflect.DeepEqual(overSync, direct) {
		t.Errorf("serial over sync bus %+v != direct %+v", overSync, direct)
	}
}

func TestExplicitPadsHonoured(t *testing.T) {
	plan := NewPlan(mustSelect(t, "samd21"), Convention{}, nil)
	b := plan.BindSerialOnPinsAndPads(0, "Serial9", "PA11", "PA10", 3, 2)
	if err := plan.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Pads.RX != 3 || b.Pads.TX != 2 {
		t.Errorf("pads = %+v, want RX 3 TX 2", b.Pads)
	}
}

func TestBusScenario(t *testing.T) {
	for _, tc := range []struct {
		flag    string
		vectors int
	}{{"samd51", 4}, {"samd21", 1}} {
		t.Run(tc.flag, func(t *testing.T) {
			plan := NewPlan(mustSelect(t, tc.flag), Convention{}, nil)
			b := plan.BindBus(1, 0)
			if err := plan.Verify(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Kind != Bus || b.Name != "Wire" {
				t.Errorf("binding = %s", b)
			}
			if b.Pins.SDA != "PIN_WIRE_SDA" || b.Pins.SCL != "PIN_WIRE_SCL" {
				t.Errorf("pins = %+v", b.Pins)
			}
			if b.Pads != BusPads {
				t.Errorf("pads = %+v, want %+v", b.Pads, BusPads)
			}
			if n := len(b.Forwarders()); n != tc.vectors {
				t.Errorf("forwarders = %d, want %d", n, tc.vectors)
			}
		})
	}
}

func TestDistinctPeripherals(t *testing.T) {
	plan := NewPlan(mustSelect(t, "samd51"), Convention{}, nil)
	a := plan.BindSerial(2, 2)
	b := plan.BindBusInterface(5, "Wire2", "PB01", "PB00")
	if err := plan.Verify(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Name == b.Name {
		t.Error("bindings share an object")
	}
	seen := map[string]bool{}
	for _, v := range append(a.Vectors(), b.Vectors()...) {
		if seen[v] {
			t.Errorf("vector %s is shared", v)
		}
		seen[v] = true
	}
}

func TestDuplicateDefinition(t *testing.T) {
	tests := []struct {
		name string
		bind func(p *Plan)
	}{
		{"same peripheral", func(p *Plan) {
			p.BindSerial(3, 4)
			p.BindBusInterface(3, "Wire1", "PA22", "PA23")
		}},
		{"same object", func(p *Plan) {
			p.BindSerial(3, 4)
			p.BindSerialOnPins(4, "Serial4", "PA22", "PA23")
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := NewPlan(mustSelect(t, "samd51"), Convention{}, nil)
			tc.bind(plan)
			if err := plan.Err(); !errors.Is(err, ErrDuplicateDefinition) {
				t.Errorf("expected ErrDuplicateDefinition, got %v", err)
			}
			err := plan.Verify()
			if !errors.Is(err, ErrOwnership) {
				t.Errorf("expected ErrOwnership, got %v", err)
			}
			if !errors.Is(err, ErrDuplicateDefinition) {
				t.Errorf("Verify dropped the binding errors: %v", err)
			}
		})
	}
}

func TestUnresolvedSymbol(t *testing.T) {
	symbols := symbolSet{"SERCOM3": true, "PIN_SERIAL4_RX": true, "PIN_SERIAL4_TX": true}

	tests := []struct {
		name string
		bind func(p *Plan)
		ok   bool
	}{
		{"resolved", func(p *Plan) { p.BindSerial(3, 4) }, true},
		{"missing pin", func(p *Plan) { p.BindSerial(3, 5) }, false},
		{"missing handle", func(p *Plan) { p.BindSerialOnPins(2, "SerialX", "PIN_SERIAL4_RX", "PIN_SERIAL4_TX") }, false},
		{"peripheral out of range", func(p *Plan) { p.BindSerialOnPins(8, "SerialX", "PIN_SERIAL4_RX", "PIN_SERIAL4_TX") }, false},
		{"negative peripheral", func(p *Plan) { p.BindSerialOnPins(-1, "SerialX", "PIN_SERIAL4_RX", "PIN_SERIAL4_TX") }, false},
		{"empty pin", func(p *Plan) { p.BindSerialOnPins(3, "SerialX", "", "PIN_SERIAL4_TX") }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := NewPlan(mustSelect(t, "samd51"), Convention{}, symbols)
			tc.bind(plan)
			err := plan.Err()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrUnresolvedSymbol) {
				t.Errorf("expected ErrUnresolvedSymbol, got %v", err)
			}
		})
	}
}

func TestInvalidPads(t *testing.T) {
	tests := []struct {
		flag         string
		rxPad, txPad Pad
		ok           bool
	}{
		{"samd51", 1, 0, true},
		{"samd51", 3, 0, true},
		{"samd51", 1, 2, false},
		{"samd21", 1, 2, true},
		{"samd21", 0, 2, true},
		{"samd21", 1, 1, false},
		{"samd21", 0, 0, false},
		{"samd21", 4, 0, false},
		{"samd21", 1, -1, false},
	}

	for _, tc := range tests {
		plan := NewPlan(mustSelect(t, tc.flag), Convention{}, nil)
		plan.BindSerialOnPinsAndPads(0, "Serial", "RX", "TX", tc.rxPad, tc.txPad)
		err := plan.Err()
		if tc.ok && err != nil {
			t.Errorf("%s rx=%d tx=%d: unexpected error: %v", tc.flag, tc.rxPad, tc.txPad, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPad) {
			t.Errorf("%s rx=%d tx=%d: expected ErrInvalidPad, got %v", tc.flag, tc.rxPad, tc.txPad, err)
		}
	}
}

func TestInvalidName(t *testing.T) {
	plan := NewPlan(mustSelect(t, "samd21"), Convention{}, nil)
	plan.BindSerialOnPins(0, "Serial-1", "RX", "TX")
	if err := plan.Err(); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestNoChipFamily(t *testing.T) {
	strategy, ok := Select("stm32f4")
	if ok {
		t.Fatal("unexpected match")
	}

	plan := NewPlan(strategy, Convention{}, nil)
	if b := plan.BindSerial(3, 4); b != nil {
		t.Errorf("expected no binding, got %s", b)
	}
	if b := plan.BindBus(1, 0); b != nil {
		t.Errorf("expected no binding, got %s", b)
	}
	if len(plan.Bindings()) != 0 {
		t.Error("plan should be empty")
	}
	if err := plan.Verify(); err != nil {
		t.Errorf("an empty expansion is not itself an error: %v", err)
	}

	err := plan.Require("Serial4")
	if !errors.Is(err, ErrUnresolvedSymbol) || !errors.Is(err, ErrNoChipFamily) {
		t.Errorf("expected unresolved Serial4 with no chip family, got %v", err)
	}
}

func TestBindingsAreCopies(t *testing.T) {
	plan := NewPlan(mustSelect(t, "samd51"), Convention{}, nil)
	b := plan.BindSerial(3, 4)
	b.Name = "Changed"
	b.Pads.RX = 3

	got, err := plan.Object("Serial4")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Serial4" || got.Pads.RX != 1 {
		t.Errorf("plan binding was modified through a returned copy: %+v", got)
	}
}

func TestConventionOverride(t *testing.T) {
	conv := Convention{Serial: "UART%d", SerialRX: "UART%d_RX_PIN", SerialTX: "UART%d_TX_PIN"}
	if err := conv.Merge(DefaultConvention()).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plan := NewPlan(mustSelect(t, "samd21"), conv, nil)
	b := plan.BindSerial(2, 1)
	if b.Name != "UART1" || b.Pins.RX != "UART1_RX_PIN" || b.Pins.TX != "UART1_TX_PIN" {
		t.Errorf("binding = %+v", b)
	}
	if b.Handle != "SERCOM2" {
		t.Errorf("handle = %s", b.Handle)
	}
}

func TestConventionValidate(t *testing.T) {
	bad := []Convention{
		{Serial: "Serial"},
		{Serial: "Serial-%d"},
		{Wire: "Wire%d"},
	}
	for _, conv := range bad {
		if err := conv.Merge(DefaultConvention()).Validate(); !errors.Is(err, ErrInvalidName) {
			t.Errorf("%+v: expected ErrInvalidName, got %v", conv, err)
		}
	}
}

func TestVerifyOwnershipIslands(t *testing.T) {
	plan := NewPlan(mustSelect(t, "samd21"), Convention{}, nil)
	plan.BindSerial(0, 1)
	plan.BindBus(2, 0)
	plan.BindSerialOnPins(0, "Serial9", "PA10", "PA11")
	plan.BindSerialOnPins(5, "Serial1", "PB22", "PB23")

	err := plan.Verify()
	if !errors.Is(err, ErrOwnership) {
		t.Fatalf("expected ErrOwnership, got %v", err)
	}

	// SERCOM0 is claimed by two objects and Serial1 spans two peripherals;
	// both share an island. Wire on SERCOM2 is untouched.
	msg := err.Error()
	if !strings.Contains(msg, "peripherals [SERCOM0 SERCOM5] bound to objects [Serial1 Serial9]") {
		t.Errorf("unexpected ownership report: %s", msg)
	}
	if strings.Contains(msg, "Wire") {
		t.Errorf("independent binding reported: %s", msg)
	}
}
