// Package molecule models the molecular junction bridging the two
// ferromagnetic leads: a small graph of magnetic nodes joined by edges
// carrying their own coupling coefficients. Prototypes are built once,
// then instantiated or embedded into a device lattice.
package molecule

import "github.com/spinsim/msd/internal/vec"

// NodeParams are the on-site coefficients of a single molecule node.
type NodeParams struct {
	Sm   float64  // spin magnitude
	Fm   float64  // spin fluctuation magnitude
	Je0m float64  // local spin-fluctuation exchange
	Am   vec.Vec3 // anisotropy
}

// DefaultNodeParams returns the coefficients a fresh node starts with.
func DefaultNodeParams() NodeParams {
	return NodeParams{Sm: 1}
}

// EdgeParams are the coupling coefficients of one molecule bond.
type EdgeParams struct {
	Jm   float64  // spin-spin exchange
	Je1m float64  // nonlocal spin-fluctuation exchange
	Jeem float64  // fluctuation-fluctuation exchange
	Bqm  float64  // biquadratic coupling
	Dm   vec.Vec3 // Dzyaloshinskii-Moriya interaction
}

// Link is one adjacency entry: the bond and the node on its far side.
type Link struct {
	Edge int
	Node int
}

type node struct {
	params    NodeParams
	neighbors []Link
}

type edge struct {
	params EdgeParams
	a, b   int // source and destination node handles
}

// Prototype is a molecule design: nodes and edges addressed by stable
// integer handles, plus the two lead nodes where the device couples in.
// The zero value is an empty prototype with both leads at node 0.
type Prototype struct {
	nodes []node
	edges []edge

	leftLead  int
	rightLead int
}

// NewPrototype returns an empty prototype.
func NewPrototype() *Prototype { return &Prototype{} }

// NewPrototypeN returns a prototype of n unconnected nodes, each with
// the given parameters.
func NewPrototypeN(n int, params NodeParams) (*Prototype, error) {
	if n < 1 {
		return nil, ErrSize
	}
	p := &Prototype{}
	for i := 0; i < n; i++ {
		p.AddNode(params)
	}
	return p, nil
}

// NewLinear builds a chain of n nodes with default parameters, bonded
// in sequence, leads at the two ends.
func NewLinear(n int) (*Prototype, error) {
	if n < 1 {
		return nil, ErrSize
	}
	p := &Prototype{}
	for i := 0; i < n; i++ {
		p.AddNode(DefaultNodeParams())
	}
	for i := 1; i < n; i++ {
		if _, err := p.Connect(i-1, i, EdgeParams{}); err != nil {
			return nil, err
		}
	}
	if err := p.SetLeads(0, n-1); err != nil {
		return nil, err
	}
	return p, nil
}

// NewRing builds a cycle of n nodes with default parameters. The left
// lead sits at node 0 and the right lead halfway around.
func NewRing(n int) (*Prototype, error) {
	if n < 3 {
		return nil, ErrSize
	}
	p, err := NewLinear(n)
	if err != nil {
		return nil, err
	}
	if _, err := p.Connect(n-1, 0, EdgeParams{}); err != nil {
		return nil, err
	}
	if err := p.SetLeads(0, n/2); err != nil {
		return nil, err
	}
	return p, nil
}

// AddNode appends a node and returns its handle.
func (p *Prototype) AddNode(params NodeParams) int {
	p.nodes = append(p.nodes, node{params: params})
	return len(p.nodes) - 1
}

// Connect bonds nodes a and b with the given coefficients and returns
// the new edge's handle. The edge points from a to b; the order fixes
// the sign of the antisymmetric coupling. Parallel edges are permitted;
// self edges are not.
func (p *Prototype) Connect(a, b int, params EdgeParams) (int, error) {
	if !p.validNode(a) || !p.validNode(b) {
		return 0, ErrNodeIndex
	}
	if a == b {
		return 0, ErrSelfEdge
	}
	p.edges = append(p.edges, edge{params: params, a: a, b: b})
	idx := len(p.edges) - 1
	p.nodes[a].neighbors = append(p.nodes[a].neighbors, Link{Edge: idx, Node: b})
	p.nodes[b].neighbors = append(p.nodes[b].neighbors, Link{Edge: idx, Node: a})
	return idx, nil
}

func (p *Prototype) validNode(i int) bool { return i >= 0 && i < len(p.nodes) }
func (p *Prototype) validEdge(i int) bool { return i >= 0 && i < len(p.edges) }

// Nodes reports the node count.
func (p *Prototype) Nodes() int { return len(p.nodes) }

// Edges reports the edge count.
func (p *Prototype) Edges() int { return len(p.edges) }

// Node returns the on-site coefficients of node i.
func (p *Prototype) Node(i int) (NodeParams, error) {
	if !p.validNode(i) {
		return NodeParams{}, ErrNodeIndex
	}
	return p.nodes[i].params, nil
}

// SetNode replaces the on-site coefficients of node i.
func (p *Prototype) SetNode(i int, params NodeParams) error {
	if !p.validNode(i) {
		return ErrNodeIndex
	}
	p.nodes[i].params = params
	return nil
}

// Edge returns the coefficients of edge e.
func (p *Prototype) Edge(e int) (EdgeParams, error) {
	if !p.validEdge(e) {
		return EdgeParams{}, ErrEdgeIndex
	}
	return p.edges[e].params, nil
}

// SetEdge replaces the coefficients of edge e.
func (p *Prototype) SetEdge(e int, params EdgeParams) error {
	if !p.validEdge(e) {
		return ErrEdgeIndex
	}
	p.edges[e].params = params
	return nil
}

// Endpoints returns the two node handles edge e joins, source first.
func (p *Prototype) Endpoints(e int) (a, b int, err error) {
	if !p.validEdge(e) {
		return 0, 0, ErrEdgeIndex
	}
	return p.edges[e].a, p.edges[e].b, nil
}

// EdgeBetween returns the handle of an edge joining a and b in either
// direction. With parallel edges, the one connected first wins.
func (p *Prototype) EdgeBetween(a, b int) (int, bool) {
	if !p.validNode(a) || !p.validNode(b) {
		return 0, false
	}
	for _, l := range p.nodes[a].neighbors {
		if l.Node == b {
			return l.Edge, true
		}
	}
	return 0, false
}

// Clone returns an independent copy of the prototype.
func (p *Prototype) Clone() *Prototype {
	q := &Prototype{
		nodes:     make([]node, len(p.nodes)),
		edges:     append([]edge(nil), p.edges...),
		leftLead:  p.leftLead,
		rightLead: p.rightLead,
	}
	for i := range p.nodes {
		q.nodes[i].params = p.nodes[i].params
		q.nodes[i].neighbors = append([]Link(nil), p.nodes[i].neighbors...)
	}
	return q
}

// Neighbors returns the adjacency list of node i. The slice is shared;
// callers must not modify it.
func (p *Prototype) Neighbors(i int) ([]Link, error) {
	if !p.validNode(i) {
		return nil, ErrNodeIndex
	}
	return p.nodes[i].neighbors, nil
}

// SetLeads designates the nodes the left and right device leads couple
// to. The same node may serve both.
func (p *Prototype) SetLeads(left, right int) error {
	if !p.validNode(left) || !p.validNode(right) {
		return ErrNodeIndex
	}
	p.leftLead = left
	p.rightLead = right
	return nil
}

// Leads returns the left and right lead node handles.
func (p *Prototype) Leads() (left, right int) {
	return p.leftLead, p.rightLead
}
