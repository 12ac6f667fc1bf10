// Package msd simulates a molecular spintronic device: two
// ferromagnetic leads bridged by a molecular junction on a 3D lattice,
// sampled by Metropolis Monte Carlo. The lattice keeps its aggregate
// energy and magnetization incrementally so a single spin update costs
// O(1) regardless of device size.
package msd

import (
	"fmt"

	"github.com/spinsim/msd/internal/molecule"
	"github.com/spinsim/msd/internal/sparse"
	"github.com/spinsim/msd/internal/vec"
)

// Geometry fixes the device's shape inside a width x height x depth
// bounding box. The left lead spans x < MolPosL restricted to rows
// TopL..BottomL; the right lead spans x > MolPosR restricted to layers
// FrontR..BackR; the molecule occupies the ring of sites where the two
// cross-sections overlap, for MolPosL <= x <= MolPosR.
type Geometry struct {
	Width, Height, Depth int

	MolPosL, MolPosR int
	TopL, BottomL    int
	FrontR, BackR    int
}

// FullGeometry centers the molecule columns in a box whose leads use
// the full cross-section.
func FullGeometry(width, height, depth int) Geometry {
	return Geometry{
		Width: width, Height: height, Depth: depth,
		MolPosL: (width - 1) / 2, MolPosR: width / 2,
		TopL: 0, BottomL: height - 1,
		FrontR: 0, BackR: depth - 1,
	}
}

// normalized clamps contradictory bounds the way the device has always
// defined them: dimensions at least 1, MolPosR pulled inside the box,
// and inverted windows collapsed.
func (g Geometry) normalized() Geometry {
	if g.Width < 1 {
		g.Width = 1
	}
	if g.Height < 1 {
		g.Height = 1
	}
	if g.Depth < 1 {
		g.Depth = 1
	}
	if g.MolPosL < 0 {
		g.MolPosL = 0
	}
	if g.MolPosR >= g.Width {
		g.MolPosR = g.Width - 1
	}
	if g.MolPosL > g.Width {
		g.MolPosL = g.Width
	}
	if g.MolPosR < g.MolPosL {
		g.MolPosR = g.MolPosL - 1
	}
	if g.TopL < 0 {
		g.TopL = 0
	}
	if g.BottomL >= g.Height {
		g.BottomL = g.Height - 1
	}
	if g.TopL > g.Height {
		g.TopL = g.Height
	}
	if g.BottomL < g.TopL {
		g.TopL = max(g.BottomL-1, 0)
	}
	if g.FrontR < 0 {
		g.FrontR = 0
	}
	if g.BackR >= g.Depth {
		g.BackR = g.Depth - 1
	}
	if g.FrontR > g.Depth {
		g.FrontR = g.Depth
	}
	if g.BackR < g.FrontR {
		g.FrontR = max(g.BackR-1, 0)
	}
	return g
}

// Counts holds the number of sites per region. The interface counts
// tally endpoint sites on both sides; when the two windows differ some
// endpoints face no partner, so a tally can exceed twice the bonds
// crossing its interface.
type Counts struct {
	N, NL, NR, Nm, NmL, NmR, NLR int
}

// Of returns the count for reg.
func (c Counts) Of(reg Region) int {
	switch reg {
	case RegionL:
		return c.NL
	case RegionR:
		return c.NR
	case RegionM:
		return c.Nm
	case RegionML:
		return c.NmL
	case RegionMR:
		return c.NmR
	case RegionLR:
		return c.NLR
	default:
		return c.N
	}
}

// Embedding maps a molecule node handle to an x offset within the
// molecule region. It must be a bijection onto 0..nodes-1.
type Embedding func(node, nodes int) int

// ChainEmbedding places node i at the i-th molecule column. It is the
// conventional layout for linear and ring molecules built by the
// prototype factories.
func ChainEmbedding(node, nodes int) int { return node }

// Lattice is the device state: one spin and one fluctuation vector per
// occupied site, plus the incrementally maintained Results aggregate.
type Lattice struct {
	geom Geometry

	fmL, fmR, hasMol bool

	spins  *sparse.Array[vec.Vec3]
	fluxes *sparse.Array[vec.Vec3]
	sites  []int // occupied flat indices in canonical order
	counts Counts

	params  Parameters
	results Results

	// cached uniform bond coefficient sets, refreshed on SetParameters
	cL, cR, cm, cmL, cmR, cLR bondCoeffs

	// optional embedded molecule
	proto    *molecule.Prototype
	xToNode  []int // per x offset in the molecule span
	nodeToX  []int // inverse of xToNode
	leadOffL int
	leadOffR int
}

var (
	initSpin = vec.J
	initFlux = vec.Zero
)

// New builds a device with the given geometry and default parameters.
// Out-of-range bounds are clamped, not rejected.
func New(g Geometry) *Lattice {
	g = g.normalized()
	lat := &Lattice{
		geom:   g,
		fmL:    g.MolPosL != 0,
		fmR:    g.MolPosR+1 < g.Width,
		hasMol: g.MolPosL <= g.MolPosR,
		spins:  sparse.New[vec.Vec3](g.Width * g.Height * g.Depth),
		fluxes: sparse.New[vec.Vec3](g.Width * g.Height * g.Depth),
	}
	// Without a prototype the leads attach to the outermost molecule
	// columns. EmbedMolecule overwrites these with the lead nodes.
	lat.leadOffR = g.MolPosR - g.MolPosL
	lat.enumerate()
	lat.SetParameters(DefaultParameters())
	return lat
}

// enumerate walks the bounding box in canonical order (z, then y, then
// left lead, molecule, right lead by x) marking occupied sites and
// tallying region counts.
func (lat *Lattice) enumerate() {
	g := lat.geom
	c := &lat.counts
	for z := 0; z < g.Depth; z++ {
		for y := 0; y < g.Height; y++ {
			if g.TopL <= y && y <= g.BottomL {
				for x := 0; x < g.MolPosL; x++ {
					a := lat.Index(x, y, z)
					lat.addSite(a)
					c.NL++
					if x+1 == g.MolPosL {
						if lat.hasMol {
							c.NmL++
						}
						if lat.fmR {
							c.NLR++
						}
					}
				}
			}
			if lat.onRing(y, z) {
				for x := g.MolPosL; x <= g.MolPosR; x++ {
					a := lat.Index(x, y, z)
					lat.addSite(a)
					c.Nm++
					if x == g.MolPosL && lat.fmL {
						c.NmL++
					}
					if x == g.MolPosR && lat.fmR {
						c.NmR++
					}
				}
			}
			if g.FrontR <= z && z <= g.BackR {
				for x := g.MolPosR + 1; x < g.Width; x++ {
					a := lat.Index(x, y, z)
					lat.addSite(a)
					c.NR++
					if x == g.MolPosR+1 {
						if lat.hasMol {
							c.NmR++
						}
						if lat.fmL {
							c.NLR++
						}
					}
				}
			}
		}
	}
	c.N = c.NL + c.NR + c.Nm
}

func (lat *Lattice) addSite(a int) {
	lat.sites = append(lat.sites, a)
	lat.spins.Set(a, initSpin)
	lat.fluxes.Set(a, initFlux)
}

// onRing reports whether molecule sites exist in row (y, z): the walls
// of the rectangular tube where the two lead cross-sections overlap.
func (lat *Lattice) onRing(y, z int) bool {
	g := lat.geom
	yIn := g.TopL <= y && y <= g.BottomL
	zIn := g.FrontR <= z && z <= g.BackR
	return ((y == g.TopL || y == g.BottomL) && zIn) ||
		((z == g.FrontR || z == g.BackR) && yIn)
}

// Index converts box coordinates to a flat site index.
func (lat *Lattice) Index(x, y, z int) int {
	return (z*lat.geom.Height+y)*lat.geom.Width + x
}

// Coords converts a flat site index back to box coordinates.
func (lat *Lattice) Coords(a int) (x, y, z int) {
	x = a % lat.geom.Width
	y = a / lat.geom.Width % lat.geom.Height
	z = a / (lat.geom.Width * lat.geom.Height)
	return
}

// Geometry returns the normalized device shape.
func (lat *Lattice) Geometry() Geometry { return lat.geom }

// Counts returns the per-region site counts.
func (lat *Lattice) Counts() Counts { return lat.counts }

// Sites returns the occupied flat indices in canonical order. The
// returned slice is a copy.
func (lat *Lattice) Sites() []int {
	out := make([]int, len(lat.sites))
	copy(out, lat.sites)
	return out
}

// HasSite reports whether flat index a names an occupied site.
func (lat *Lattice) HasSite(a int) bool { return lat.spins.Has(a) }

// Region classifies an occupied site by its x coordinate.
func (lat *Lattice) Region(a int) (Region, error) {
	if !lat.spins.Has(a) {
		return RegionAll, fmt.Errorf("%w %d", ErrSite, a)
	}
	x, _, _ := lat.Coords(a)
	switch {
	case x < lat.geom.MolPosL:
		return RegionL, nil
	case x > lat.geom.MolPosR:
		return RegionR, nil
	default:
		return RegionM, nil
	}
}

// Spin returns the spin vector at site a.
func (lat *Lattice) Spin(a int) (vec.Vec3, error) {
	s, ok := lat.spins.Get(a)
	if !ok {
		return vec.Zero, fmt.Errorf("%w %d", ErrSite, a)
	}
	return s, nil
}

// Flux returns the fluctuation vector at site a.
func (lat *Lattice) Flux(a int) (vec.Vec3, error) {
	f, ok := lat.fluxes.Get(a)
	if !ok {
		return vec.Zero, fmt.Errorf("%w %d", ErrSite, a)
	}
	return f, nil
}

// LocalM returns the local magnetization at site a, spin plus flux.
func (lat *Lattice) LocalM(a int) (vec.Vec3, error) {
	s, err := lat.Spin(a)
	if err != nil {
		return vec.Zero, err
	}
	f, _ := lat.fluxes.Get(a)
	return s.Add(f), nil
}

// SetSpin replaces the spin at site a, keeping its fluctuation.
func (lat *Lattice) SetSpin(a int, spin vec.Vec3) error {
	f, ok := lat.fluxes.Get(a)
	if !ok {
		return fmt.Errorf("%w %d", ErrSite, a)
	}
	return lat.SetLocalM(a, spin, f)
}

// SetFlux replaces the fluctuation at site a, keeping its spin.
func (lat *Lattice) SetFlux(a int, flux vec.Vec3) error {
	s, ok := lat.spins.Get(a)
	if !ok {
		return fmt.Errorf("%w %d", ErrSite, a)
	}
	return lat.SetLocalM(a, s, flux)
}

// Parameters returns the active coefficient set.
func (lat *Lattice) Parameters() Parameters { return lat.params }

// Results returns a snapshot of the aggregate state.
func (lat *Lattice) Results() Results { return lat.results }

// Molecule returns the embedded prototype, or nil when the molecule
// region uses the uniform coefficient group.
func (lat *Lattice) Molecule() *molecule.Prototype { return lat.proto }

// NodeAtX returns the molecule node embedded at column x.
func (lat *Lattice) NodeAtX(x int) (int, bool) {
	if lat.proto == nil || x < lat.geom.MolPosL || x > lat.geom.MolPosR {
		return 0, false
	}
	return lat.xToNode[x-lat.geom.MolPosL], true
}

// EmbedMolecule places proto into the molecule region with the chain
// layout: node i at the i-th column.
func (lat *Lattice) EmbedMolecule(proto *molecule.Prototype) error {
	return lat.EmbedMoleculeWith(proto, ChainEmbedding)
}

// EmbedMoleculeWith places proto into the molecule region using a
// custom column layout. The prototype must have exactly one node per
// molecule column, and embed must map nodes onto columns one-to-one.
// Once embedded, molecule sites take their on-site coefficients and
// internal bonds from the prototype; the lattice holds a reference, so
// callers must not mutate proto afterwards. Spins are rescaled to each
// node's Sm and fluctuations clamped to its Fm.
func (lat *Lattice) EmbedMoleculeWith(proto *molecule.Prototype, embed Embedding) error {
	span := lat.geom.MolPosR - lat.geom.MolPosL + 1
	if !lat.hasMol || proto.Nodes() != span {
		return fmt.Errorf("%w: %d nodes into %d columns", ErrMoleculeShape, proto.Nodes(), max(span, 0))
	}
	xToNode := make([]int, span)
	nodeToX := make([]int, span)
	for i := range xToNode {
		xToNode[i] = -1
	}
	for node := 0; node < span; node++ {
		off := embed(node, span)
		if off < 0 || off >= span || xToNode[off] != -1 {
			return fmt.Errorf("%w: node %d maps to column %d", ErrEmbedding, node, off)
		}
		xToNode[off] = node
		nodeToX[node] = off
	}

	lat.proto = proto
	lat.xToNode = xToNode
	lat.nodeToX = nodeToX
	left, right := proto.Leads()
	lat.leadOffL = nodeToX[left]
	lat.leadOffR = nodeToX[right]

	g := lat.geom
	for _, a := range lat.sites {
		x, _, _ := lat.Coords(a)
		if x < g.MolPosL || x > g.MolPosR {
			continue
		}
		np, _ := proto.Node(xToNode[x-g.MolPosL])
		s, _ := lat.spins.Get(a)
		f, _ := lat.fluxes.Get(a)
		lat.spins.Set(a, s.WithNorm(np.Sm))
		lat.fluxes.Set(a, clampFlux(f, np.Fm))
	}
	lat.results = lat.recomputeResults()
	return nil
}

// moleculeRow maps each node handle to its flat site index within row
// (y,z) of the embedded molecule.
func (lat *Lattice) moleculeRow(y, z int) ([]int, error) {
	if lat.proto == nil {
		return nil, ErrNoMolecule
	}
	g := lat.geom
	if y < 0 || y >= g.Height || z < 0 || z >= g.Depth || !lat.onRing(y, z) {
		return nil, fmt.Errorf("%w: no molecule row at y=%d z=%d", ErrSite, y, z)
	}
	sites := make([]int, lat.proto.Nodes())
	for node := range sites {
		sites[node] = lat.Index(g.MolPosL+lat.nodeToX[node], y, z)
	}
	return sites, nil
}

// MoleculeAt copies the embedded molecule's state in row (y,z) into a
// fresh Instance. The copy is independent of the device.
func (lat *Lattice) MoleculeAt(y, z int) (*molecule.Instance, error) {
	sites, err := lat.moleculeRow(y, z)
	if err != nil {
		return nil, err
	}
	inst := molecule.NewInstance(lat.proto)
	for node, a := range sites {
		s, _ := lat.spins.Get(a)
		f, _ := lat.fluxes.Get(a)
		inst.SetLocalM(node, s, f)
	}
	return inst, nil
}

// SetMoleculeAt writes inst's node states into row (y,z) through the
// incremental update path. inst must be built from the embedded
// prototype.
func (lat *Lattice) SetMoleculeAt(y, z int, inst *molecule.Instance) error {
	if inst.Prototype() != lat.proto {
		return ErrMoleculeShape
	}
	sites, err := lat.moleculeRow(y, z)
	if err != nil {
		return err
	}
	for node, a := range sites {
		s, _ := inst.Spin(node)
		f, _ := inst.Flux(node)
		if err := lat.SetLocalM(a, s, f); err != nil {
			return err
		}
	}
	return nil
}

// clampFlux caps a fluctuation vector's magnitude at limit.
func clampFlux(f vec.Vec3, limit float64) vec.Vec3 {
	if limit <= 0 {
		return vec.Zero
	}
	if f.NormSq() > limit*limit {
		return f.WithNorm(limit)
	}
	return f
}

// maxFlux returns the fluctuation magnitude cap for the site's column.
func (lat *Lattice) maxFlux(x int) float64 {
	switch {
	case x < lat.geom.MolPosL:
		return lat.params.FL
	case x > lat.geom.MolPosR:
		return lat.params.FR
	default:
		if lat.proto != nil {
			np, _ := lat.proto.Node(lat.xToNode[x-lat.geom.MolPosL])
			return np.Fm
		}
		return lat.params.Fm
	}
}
