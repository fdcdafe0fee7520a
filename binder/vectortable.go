package binder

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Servicer is an interface object with an interrupt service routine.
type Servicer interface {
	ServiceInterrupt()
}

// VectorTable maps vector names to installed forwarders. It stands in for
// the linker's vector table when exercising bindings on the host.
type VectorTable struct {
	handlers map[string]func()
}

func NewVectorTable() *VectorTable {
	return &VectorTable{handlers: map[string]func(){}}
}

// Install wires every vector of the binding to obj's service routine.
// Nothing is installed if any vector is already taken.
func (t *VectorTable) Install(b *Binding, obj Servicer) error {
	for _, fwd := range b.forwarders {
		if _, ok := t.handlers[fwd.Vector]; ok {
			return fmt.Errorf("%w: vector %s", ErrDuplicateDefinition, fwd.Vector)
		}
	}

	for _, fwd := range b.forwarders {
		t.handlers[fwd.Vector] = obj.ServiceInterrupt
	}
	return nil
}

// Fire runs the forwarder installed at the vector. It returns false when
// the vector is unbound.
func (t *VectorTable) Fire(vector string) bool {
	handler, ok := t.handlers[vector]
	if !ok {
		return false
	}
	handler()
	return true
}

func (t *VectorTable) Len() int {
	return len(t.handlers)
}

// Vectors returns the bound vector names in sorted order.
func (t *VectorTable) Vectors() []string {
	names := maps.Keys(t.handlers)
	slices.Sort(names)
	return names
}
