package binder

import (
	"errors"
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
)

type nodeKind int

const (
	peripheralNode nodeKind = iota
	objectNode
	vectorNode
)

type ownershipNode struct {
	kind nodeKind
	name string
	id   int64
}

func (n *ownershipNode) ID() int64 {
	return n.id
}

type ownershipGraph struct {
	*multi.DirectedGraph
	nodes map[string]*ownershipNode
}

func (g *ownershipGraph) node(kind nodeKind, name string) *ownershipNode {
	key := fmt.Sprintf("%d/%s", kind, name)
	if node, ok := g.nodes[key]; ok {
		return node
	}

	hasher := fnv.New64()
	hasher.Write([]byte(key))
	node := &ownershipNode{kind: kind, name: name, id: int64(hasher.Sum64())}
	g.nodes[key] = node
	return node
}

// Verify reports the plan's binding errors together with any breach of
// ownership: each peripheral, its object and its vectors must form an
// island holding exactly one peripheral and one object. Two bindings that
// share an object name, a vector or a handle merge their islands and fail
// the check.
func (p *Plan) Verify() error {
	return errors.Join(p.Err(), p.verifyOwnership())
}

func (p *Plan) verifyOwnership() error {
	g := &ownershipGraph{
		DirectedGraph: multi.NewDirectedGraph(),
		nodes:         map[string]*ownershipNode{},
	}
	for _, b := range p.bindings {
		// Vectors fan in to the object, the object owns the peripheral.
		object := g.node(objectNode, b.Name)
		g.SetLine(g.NewLine(object, g.node(peripheralNode, b.Handle)))
		for _, fwd := range b.forwarders {
			g.SetLine(g.NewLine(g.node(vectorNode, fwd.Vector), object))
		}
	}

	var islands []string
	for _, component := range topo.ConnectedComponents(graph.Undirect{G: g}) {
		var peripherals, objects []string
		for _, n := range component {
			node := n.(*ownershipNode)
			switch node.kind {
			case peripheralNode:
				peripherals = append(peripherals, node.name)
			case objectNode:
				objects = append(objects, node.name)
			}
		}
		if len(peripherals) != 1 || len(objects) != 1 {
			slices.Sort(peripherals)
			slices.Sort(objects)
			islands = append(islands, fmt.Sprintf("peripherals %v bound to objects %v", peripherals, objects))
		}
	}
	slices.Sort(islands)

	errs := make([]error, len(islands))
	for i, island := range islands {
		errs[i] = fmt.Errorf("%w: %s", ErrOwnership, island)
	}
	return errors.Join(errs...)
}
