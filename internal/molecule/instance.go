package molecule

import "github.com/spinsim/msd/internal/vec"

// Instance is a prototype with live magnetic state: one spin and one
// flux vector per node. It models a molecule in isolation; a molecule
// coupled into a device is driven by the lattice instead.
type Instance struct {
	proto  *Prototype
	spins  []vec.Vec3
	fluxes []vec.Vec3
}

// Summary aggregates an instance's state and internal energy.
type Summary struct {
	M  vec.Vec3 // net magnetization, MS + MF
	MS vec.Vec3 // net spin
	MF vec.Vec3 // net spin fluctuation
	U  float64  // internal energy, external field included
}

// NewInstance instantiates proto. Spins start along +x scaled by each
// node's Sm; fluxes start at zero.
func NewInstance(proto *Prototype) *Instance {
	inst := &Instance{
		proto:  proto,
		spins:  make([]vec.Vec3, proto.Nodes()),
		fluxes: make([]vec.Vec3, proto.Nodes()),
	}
	for i := range inst.spins {
		inst.spins[i] = vec.I.Scale(proto.nodes[i].params.Sm)
	}
	return inst
}

// Prototype returns the design this instance was built from.
func (inst *Instance) Prototype() *Prototype { return inst.proto }

// Clone returns an independent copy of the instance's state. The
// prototype is shared.
func (inst *Instance) Clone() *Instance {
	return &Instance{
		proto:  inst.proto,
		spins:  append([]vec.Vec3(nil), inst.spins...),
		fluxes: append([]vec.Vec3(nil), inst.fluxes...),
	}
}

// Spin returns the spin vector of node i.
func (inst *Instance) Spin(i int) (vec.Vec3, error) {
	if !inst.proto.validNode(i) {
		return vec.Zero, ErrNodeIndex
	}
	return inst.spins[i], nil
}

// Flux returns the spin fluctuation vector of node i.
func (inst *Instance) Flux(i int) (vec.Vec3, error) {
	if !inst.proto.validNode(i) {
		return vec.Zero, ErrNodeIndex
	}
	return inst.fluxes[i], nil
}

// SetLocalM replaces the spin and flux of node i.
func (inst *Instance) SetLocalM(i int, spin, flux vec.Vec3) error {
	if !inst.proto.validNode(i) {
		return ErrNodeIndex
	}
	inst.spins[i] = spin
	inst.fluxes[i] = flux
	return nil
}

func sq(x float64) float64 { return x * x }

// Summarize computes the instance's magnetization and internal energy
// under external field B. Edge cross products take the source node as
// the left operand.
func (inst *Instance) Summarize(B vec.Vec3) Summary {
	var s Summary
	for i := range inst.proto.nodes {
		np := &inst.proto.nodes[i].params
		spin, flux := inst.spins[i], inst.fluxes[i]
		m := spin.Add(flux)
		s.MS = s.MS.Add(spin)
		s.MF = s.MF.Add(flux)
		s.U -= np.Je0m * spin.Dot(flux)
		s.U -= np.Am.Dot(m.SqSum())
	}
	s.M = s.MS.Add(s.MF)
	s.U -= B.Dot(s.M)

	for e := range inst.proto.edges {
		ed := &inst.proto.edges[e]
		sa, fa := inst.spins[ed.a], inst.fluxes[ed.a]
		sb, fb := inst.spins[ed.b], inst.fluxes[ed.b]
		ma, mb := sa.Add(fa), sb.Add(fb)
		ep := &ed.params
		s.U -= ep.Jm * sa.Dot(sb)
		s.U -= ep.Je1m * (sa.Dot(fb) + fa.Dot(sb))
		s.U -= ep.Jeem * fa.Dot(fb)
		s.U -= ep.Bqm * sq(ma.Dot(mb))
		s.U -= ep.Dm.Dot(ma.Cross(mb))
	}
	return s
}
