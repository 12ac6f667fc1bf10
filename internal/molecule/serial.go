package molecule

import (
	"encoding/binary"
	"math"
)

// The wire format is a flat little-endian record with a fixed field
// order: edge count, then each edge's coefficients (Jm, Je1m, Jeem,
// Bqm, Dm.x, Dm.y, Dm.z); node count, then each node's coefficients
// (Sm, Fm, Je0m, Am.x, Am.y, Am.z); then each node's adjacency list as
// a count followed by (edge, node, direction) triplets, the direction
// +1 when the edge points away from the node being listed and -1 when
// it points toward it; finally the two lead handles. Counts and
// handles are uint64, coefficients and directions are float64 bits.

const (
	wordSize      = 8
	edgeParamSize = 7 * wordSize
	nodeParamSize = 6 * wordSize
)

// SerializedSize reports the byte length MarshalBinary will produce.
func (p *Prototype) SerializedSize() int {
	n := wordSize + len(p.edges)*edgeParamSize
	n += wordSize + len(p.nodes)*nodeParamSize
	for i := range p.nodes {
		n += wordSize + len(p.nodes[i].neighbors)*3*wordSize
	}
	return n + 2*wordSize
}

type writer struct{ buf []byte }

func (w *writer) word(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) float(v float64) { w.word(math.Float64bits(v)) }

// MarshalBinary encodes the prototype.
func (p *Prototype) MarshalBinary() ([]byte, error) {
	w := &writer{buf: make([]byte, 0, p.SerializedSize())}

	w.word(uint64(len(p.edges)))
	for i := range p.edges {
		ep := &p.edges[i].params
		w.float(ep.Jm)
		w.float(ep.Je1m)
		w.float(ep.Jeem)
		w.float(ep.Bqm)
		w.float(ep.Dm.X)
		w.float(ep.Dm.Y)
		w.float(ep.Dm.Z)
	}

	w.word(uint64(len(p.nodes)))
	for i := range p.nodes {
		np := &p.nodes[i].params
		w.float(np.Sm)
		w.float(np.Fm)
		w.float(np.Je0m)
		w.float(np.Am.X)
		w.float(np.Am.Y)
		w.float(np.Am.Z)
	}

	for i := range p.nodes {
		w.word(uint64(len(p.nodes[i].neighbors)))
		for _, l := range p.nodes[i].neighbors {
			w.word(uint64(l.Edge))
			w.word(uint64(l.Node))
			if p.edges[l.Edge].a == i {
				w.float(1)
			} else {
				w.float(-1)
			}
		}
	}

	w.word(uint64(p.leftLead))
	w.word(uint64(p.rightLead))
	return w.buf, nil
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) word() (uint64, error) {
	if r.off+wordSize > len(r.buf) {
		return 0, corruptf("truncated at byte %d", r.off)
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += wordSize
	return v, nil
}

func (r *reader) float() (float64, error) {
	v, err := r.word()
	return math.Float64frombits(v), err
}

func (r *reader) index(limit int, what string) (int, error) {
	v, err := r.word()
	if err != nil {
		return 0, err
	}
	if v >= uint64(limit) {
		return 0, corruptf("%s %d out of range [0,%d)", what, v, limit)
	}
	return int(v), nil
}

func (r *reader) count(what string) (int, error) {
	v, err := r.word()
	if err != nil {
		return 0, err
	}
	// A count cannot exceed the words remaining in the buffer.
	if v > uint64(len(r.buf)/wordSize) {
		return 0, corruptf("%s %d exceeds buffer", what, v)
	}
	return int(v), nil
}

// UnmarshalBinary decodes a prototype in place, replacing any previous
// contents. The blob's adjacency lists must describe each edge exactly
// twice, once from each endpoint.
func (p *Prototype) UnmarshalBinary(data []byte) error {
	r := &reader{buf: data}

	edgeCount, err := r.count("edge count")
	if err != nil {
		return err
	}
	edges := make([]edge, edgeCount)
	for i := range edges {
		ep := &edges[i].params
		for _, f := range []*float64{
			&ep.Jm, &ep.Je1m, &ep.Jeem, &ep.Bqm,
			&ep.Dm.X, &ep.Dm.Y, &ep.Dm.Z,
		} {
			if *f, err = r.float(); err != nil {
				return err
			}
		}
		edges[i].a = -1
		edges[i].b = -1
	}

	nodeCount, err := r.count("node count")
	if err != nil {
		return err
	}
	if nodeCount == 0 && edgeCount > 0 {
		return corruptf("%d edges with no nodes", edgeCount)
	}
	nodes := make([]node, nodeCount)
	for i := range nodes {
		np := &nodes[i].params
		for _, f := range []*float64{
			&np.Sm, &np.Fm, &np.Je0m,
			&np.Am.X, &np.Am.Y, &np.Am.Z,
		} {
			if *f, err = r.float(); err != nil {
				return err
			}
		}
	}

	refs := make([]int, edgeCount)
	for i := range nodes {
		n, err := r.count("neighbor count")
		if err != nil {
			return err
		}
		links := make([]Link, n)
		for j := range links {
			if links[j].Edge, err = r.index(edgeCount, "edge handle"); err != nil {
				return err
			}
			if links[j].Node, err = r.index(nodeCount, "node handle"); err != nil {
				return err
			}
			if links[j].Node == i {
				return corruptf("node %d links to itself", i)
			}
			dir, err := r.float()
			if err != nil {
				return err
			}
			src, dst := i, links[j].Node
			switch dir {
			case 1:
			case -1:
				src, dst = dst, src
			default:
				return corruptf("edge %d direction %g, want +1 or -1", links[j].Edge, dir)
			}
			e := &edges[links[j].Edge]
			switch refs[links[j].Edge] {
			case 0:
				e.a, e.b = src, dst
			case 1:
				if e.a != src || e.b != dst {
					return corruptf("edge %d joins inconsistent endpoints", links[j].Edge)
				}
			default:
				return corruptf("edge %d referenced more than twice", links[j].Edge)
			}
			refs[links[j].Edge]++
		}
		nodes[i].neighbors = links
	}
	for e, n := range refs {
		if n != 2 {
			return corruptf("edge %d referenced %d times, want 2", e, n)
		}
	}

	// An empty prototype still records its (zero) lead handles.
	leadLimit := nodeCount
	if leadLimit == 0 {
		leadLimit = 1
	}
	left, err := r.index(leadLimit, "left lead")
	if err != nil {
		return err
	}
	right, err := r.index(leadLimit, "right lead")
	if err != nil {
		return err
	}
	if r.off != len(data) {
		return corruptf("%d trailing bytes", len(data)-r.off)
	}

	p.nodes = nodes
	p.edges = edges
	p.leftLead = left
	p.rightLead = right
	return nil
}
