package binder

import (
	"fmt"

	"golang.org/x/exp/slices"

	"omibyte.io/sercomgen/targets"
)

// Strategy is the generation strategy of a chip family. It decides how
// many vectors a SERCOM exposes, what they are called and which pads are
// used when the caller does not say.
type Strategy interface {
	Target() targets.TargetInfo
	Family() targets.Family

	// Vectors returns the names of every interrupt vector of the
	// peripheral, in vector table order.
	Vectors(p Peripheral) []string
	DefaultPads() PadSpec

	// Constraint is the build constraint selecting this strategy's output.
	Constraint() string
	Peripherals() int
	CanTransmitOn(pad Pad) bool
}

type base struct {
	target targets.TargetInfo
}

func (b base) Target() targets.TargetInfo { return b.target }
func (b base) Family() targets.Family     { return b.target.Family }
func (b base) Constraint() string         { return b.target.Constraint() }
func (b base) Peripherals() int           { return b.target.Sercoms }

func (b base) DefaultPads() PadSpec {
	return PadSpec{RX: Pad(b.target.RxPad), TX: Pad(b.target.TxPad)}
}

func (b base) CanTransmitOn(pad Pad) bool {
	return slices.Contains(b.target.TxPads, int(pad))
}

type multiVector struct{ base }

func (multiVector) Vectors(p Peripheral) []string {
	return []string{
		fmt.Sprintf("SERCOM%d_0_Handler", p),
		fmt.Sprintf("SERCOM%d_1_Handler", p),
		fmt.Sprintf("SERCOM%d_2_Handler", p),
		fmt.Sprintf("SERCOM%d_3_Handler", p),
	}
}

type singleVector struct{ base }

func (singleVector) Vectors(p Peripheral) []string {
	return []string{fmt.Sprintf("SERCOM%d_Handler", p)}
}

// ForTarget returns the strategy of the target's family, or nil if the
// family is unknown.
func ForTarget(target targets.TargetInfo) Strategy {
	switch target.Family {
	case targets.MultiVector:
		return multiVector{base{target}}
	case targets.SingleVector:
		return singleVector{base{target}}
	default:
		return nil
	}
}

// Select resolves the build flags to a strategy. Flags may name a series,
// a chip or a build tag. The result is false when no family matches, in
// which case every binding form expands to nothing.
func Select(flags ...string) (Strategy, bool) {
	target, err := targets.All().Find(flags...)
	if err != nil {
		return nil, false
	}

	strategy := ForTarget(target)
	return strategy, strategy != nil
}
