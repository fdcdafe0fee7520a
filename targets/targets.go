package targets

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

var (
	ErrTargetNotFound = errors.New("target not found")
	ErrInvalidTarget  = errors.New("invalid target information")
)

// Family is the interrupt vector layout of a chip series' SERCOM blocks.
type Family string

const (
	// MultiVector chips route each SERCOM to four NVIC lines.
	MultiVector Family = "multi-vector"
	// SingleVector chips route each SERCOM to a single NVIC line.
	SingleVector Family = "single-vector"
)

func All() Targets {
	return targets
}

type Targets []TargetInfo
type TargetInfo struct {
	Series  string   `yaml:"series"`
	Family  Family   `yaml:"family"`
	Chips   []string `yaml:"chips"`
	Tags    []string `yaml:"tags"`
	Sercoms int      `yaml:"sercoms"`
	RxPad   int      `yaml:"rxPad"`
	TxPad   int      `yaml:"txPad"`
	TxPads  []int    `yaml:"txPads"`
}

// Constraint returns the build constraint expression that selects this
// target, e.g. "samd51 || sam_d5x".
func (t TargetInfo) Constraint() string {
	return strings.Join(t.Tags, " || ")
}

// Matches reports whether the flag names this target by series, chip or
// build tag.
func (t TargetInfo) Matches(flag string) bool {
	flag = strings.ToLower(flag)
	return t.Series == flag || slices.Contains(t.Chips, flag) || slices.Contains(t.Tags, flag)
}

func (t TargetInfo) validate() error {
	switch {
	case len(t.Series) == 0:
		return fmt.Errorf("%w: missing series", ErrInvalidTarget)
	case t.Family != MultiVector && t.Family != SingleVector:
		return fmt.Errorf("%w: %s: unknown family %q", ErrInvalidTarget, t.Series, t.Family)
	case len(t.Tags) == 0:
		return fmt.Errorf("%w: %s: no build tags", ErrInvalidTarget, t.Series)
	case t.Sercoms <= 0:
		return fmt.Errorf("%w: %s: no SERCOM instances", ErrInvalidTarget, t.Series)
	case !slices.Contains(t.TxPads, t.TxPad):
		return fmt.Errorf("%w: %s: default TX pad %d cannot be routed", ErrInvalidTarget, t.Series, t.TxPad)
	case t.RxPad == t.TxPad:
		return fmt.Errorf("%w: %s: default RX and TX share pad %d", ErrInvalidTarget, t.Series, t.RxPad)
	}
	return nil
}

func (t Targets) FindBySeries(name string) (TargetInfo, error) {
	for _, target := range t {
		if target.Series == strings.ToLower(name) {
			return target, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: series %s", ErrTargetNotFound, name)
}

func (t Targets) FindByChip(name string) (TargetInfo, error) {
	for _, target := range t {
		if slices.Contains(target.Chips, strings.ToLower(name)) {
			return target, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: chip %s", ErrTargetNotFound, name)
}

// Find returns the first target matched by any of the flags. Flags may be
// series names, chip names or build tags.
func (t Targets) Find(flags ...string) (TargetInfo, error) {
	for _, flag := range flags {
		for _, target := range t {
			if target.Matches(flag) {
				return target, nil
			}
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: %s", ErrTargetNotFound, strings.Join(flags, ","))
}

func parse(raw []byte) (Targets, error) {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, err
	}

	for _, target := range t.Elements {
		if err := target.validate(); err != nil {
			return nil, err
		}
	}
	return t.Elements, nil
}

func init() {
	var err error
	if targets, err = parse(rawTargets); err != nil {
		panic(err)
	}
}
