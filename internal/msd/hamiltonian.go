package msd

import (
	"fmt"
	"math"

	"github.com/spinsim/msd/internal/vec"
)

// bondCoeffs is one bond's resolved coupling set. Uniform region bonds
// share the six cached sets; embedded molecule bonds resolve per edge.
type bondCoeffs struct {
	j   float64
	je1 float64
	jee float64
	bq  float64
	d   vec.Vec3
}

func (lat *Lattice) refreshCoeffs() {
	p := &lat.params
	lat.cL = bondCoeffs{p.JL, p.Je1L, p.JeeL, p.BqL, p.DL}
	lat.cR = bondCoeffs{p.JR, p.Je1R, p.JeeR, p.BqR, p.DR}
	lat.cm = bondCoeffs{p.Jm, p.Je1m, p.Jeem, p.Bqm, p.Dm}
	lat.cmL = bondCoeffs{p.JmL, p.Je1mL, p.JeemL, p.BqmL, p.DmL}
	lat.cmR = bondCoeffs{p.JmR, p.Je1mR, p.JeemR, p.BqmR, p.DmR}
	lat.cLR = bondCoeffs{p.JLR, p.Je1LR, p.JeeLR, p.BqLR, p.DLR}
}

// onsite resolves the local coefficients for a site in column x.
func (lat *Lattice) onsite(x int) (je0 float64, a vec.Vec3) {
	g := lat.geom
	switch {
	case x < g.MolPosL:
		return lat.params.Je0L, lat.params.AL
	case x > g.MolPosR:
		return lat.params.Je0R, lat.params.AR
	default:
		if lat.proto != nil {
			np, _ := lat.proto.Node(lat.xToNode[x-g.MolPosL])
			return np.Je0m, np.Am
		}
		return lat.params.Je0m, lat.params.Am
	}
}

// eachBond visits every bond incident to site a: the neighbor's flat
// index, the bond's coupling set, and the energy bucket it belongs to.
// A bond is visited from both of its endpoints.
func (lat *Lattice) eachBond(a int, fn func(b int, c *bondCoeffs, bucket Region)) {
	g := lat.geom
	x, y, z := lat.Coords(a)

	switch {
	case x < g.MolPosL: // left lead
		if x != 0 {
			fn(lat.Index(x-1, y, z), &lat.cL, RegionL)
		}
		if y != g.TopL {
			fn(lat.Index(x, y-1, z), &lat.cL, RegionL)
		}
		if y != g.BottomL {
			fn(lat.Index(x, y+1, z), &lat.cL, RegionL)
		}
		if z != 0 {
			fn(lat.Index(x, y, z-1), &lat.cL, RegionL)
		}
		if z+1 != g.Depth {
			fn(lat.Index(x, y, z+1), &lat.cL, RegionL)
		}
		if x+1 == g.MolPosL {
			if lat.hasMol {
				// The molecule neighbor is the left lead node's
				// column, present only in ring rows.
				b := lat.Index(g.MolPosL+lat.leadOffL, y, z)
				if lat.spins.Has(b) {
					fn(b, &lat.cmL, RegionML)
				}
			}
			if lat.fmR {
				b := lat.Index(g.MolPosR+1, y, z)
				if lat.spins.Has(b) {
					fn(b, &lat.cLR, RegionLR)
				}
			}
		} else if x+1 < g.MolPosL {
			fn(lat.Index(x+1, y, z), &lat.cL, RegionL)
		}

	case x > g.MolPosR: // right lead
		if x+1 != g.Width {
			fn(lat.Index(x+1, y, z), &lat.cR, RegionR)
		}
		if y != 0 {
			fn(lat.Index(x, y-1, z), &lat.cR, RegionR)
		}
		if y+1 != g.Height {
			fn(lat.Index(x, y+1, z), &lat.cR, RegionR)
		}
		if z != g.FrontR {
			fn(lat.Index(x, y, z-1), &lat.cR, RegionR)
		}
		if z != g.BackR {
			fn(lat.Index(x, y, z+1), &lat.cR, RegionR)
		}
		if x-1 == g.MolPosR {
			if lat.hasMol {
				b := lat.Index(g.MolPosL+lat.leadOffR, y, z)
				if lat.spins.Has(b) {
					fn(b, &lat.cmR, RegionMR)
				}
			}
			if lat.fmL {
				b := lat.Index(g.MolPosL-1, y, z)
				if lat.spins.Has(b) {
					fn(b, &lat.cLR, RegionLR)
				}
			}
		} else {
			fn(lat.Index(x-1, y, z), &lat.cR, RegionR)
		}

	default: // molecule
		if lat.proto != nil {
			node := lat.xToNode[x-g.MolPosL]
			links, _ := lat.proto.Neighbors(node)
			for _, l := range links {
				ep, _ := lat.proto.Edge(l.Edge)
				c := bondCoeffs{ep.Jm, ep.Je1m, ep.Jeem, ep.Bqm, ep.Dm}
				// Callers evaluate cross products in flat index
				// order; flip Dm when the edge points the other way.
				src, _, _ := lat.proto.Endpoints(l.Edge)
				lower := node
				if lat.nodeToX[l.Node] < lat.nodeToX[node] {
					lower = l.Node
				}
				if lower != src {
					c.d = c.d.Neg()
				}
				fn(lat.Index(g.MolPosL+lat.nodeToX[l.Node], y, z), &c, RegionM)
			}
			left, right := lat.proto.Leads()
			if node == left && lat.fmL {
				fn(lat.Index(g.MolPosL-1, y, z), &lat.cmL, RegionML)
			}
			if node == right && lat.fmR {
				fn(lat.Index(g.MolPosR+1, y, z), &lat.cmR, RegionMR)
			}
			return
		}
		if x == g.MolPosL {
			if lat.fmL {
				fn(lat.Index(x-1, y, z), &lat.cmL, RegionML)
			}
		} else {
			fn(lat.Index(x-1, y, z), &lat.cm, RegionM)
		}
		if x == g.MolPosR {
			if lat.fmR {
				fn(lat.Index(x+1, y, z), &lat.cmR, RegionMR)
			}
		} else {
			fn(lat.Index(x+1, y, z), &lat.cm, RegionM)
		}
	}
}

func sq(v float64) float64 { return v * v }

// recomputeResults rebuilds the aggregate from scratch. It is the
// reference the incremental path must agree with.
func (lat *Lattice) recomputeResults() Results {
	var r Results
	r.T = lat.results.T
	p := &lat.params

	var uL, uR, uM, uML, uMR, uLR float64

	for _, a := range lat.sites {
		x, _, _ := lat.Coords(a)
		s, _ := lat.spins.Get(a)
		f, _ := lat.fluxes.Get(a)
		m := s.Add(f)

		je0, aniso := lat.onsite(x)
		local := je0*s.Dot(f) + aniso.Dot(m.SqSum())
		switch {
		case x < lat.geom.MolPosL:
			r.MSL = r.MSL.Add(s)
			r.MFL = r.MFL.Add(f)
			uL -= local
		case x > lat.geom.MolPosR:
			r.MSR = r.MSR.Add(s)
			r.MFR = r.MFR.Add(f)
			uR -= local
		default:
			r.MSm = r.MSm.Add(s)
			r.MFm = r.MFm.Add(f)
			uM -= local
		}

		lat.eachBond(a, func(b int, c *bondCoeffs, bucket Region) {
			if b <= a {
				return // counted from the lower endpoint
			}
			sb, _ := lat.spins.Get(b)
			fb, _ := lat.fluxes.Get(b)
			mb := sb.Add(fb)
			u := c.j*s.Dot(sb) +
				c.je1*(s.Dot(fb)+f.Dot(sb)) +
				c.jee*f.Dot(fb) +
				c.bq*sq(m.Dot(mb)) +
				c.d.Dot(m.Cross(mb))
			switch bucket {
			case RegionL:
				uL -= u
			case RegionR:
				uR -= u
			case RegionM:
				uM -= u
			case RegionML:
				uML -= u
			case RegionMR:
				uMR -= u
			case RegionLR:
				uLR -= u
			}
		})
	}

	r.MS = r.MSL.Add(r.MSR).Add(r.MSm)
	r.MF = r.MFL.Add(r.MFR).Add(r.MFm)
	r.ML = r.MSL.Add(r.MFL)
	r.MR = r.MSR.Add(r.MFR)
	r.Mm = r.MSm.Add(r.MFm)
	r.M = r.ML.Add(r.MR).Add(r.Mm)

	r.UL = uL - p.B.Dot(r.ML)
	r.UR = uR - p.B.Dot(r.MR)
	r.Um = uM - p.B.Dot(r.Mm)
	r.UmL = uML
	r.UmR = uMR
	r.ULR = uLR
	r.U = r.UL + r.UR + r.Um + r.UmL + r.UmR + r.ULR
	return r
}

// SetParameters swaps in a new coefficient set. Spins are rescaled to
// the new region magnitudes and fluctuations by the ratio of the new F
// to the old, then the aggregate is rebuilt. Elapsed time is kept.
func (lat *Lattice) SetParameters(p Parameters) {
	p0 := lat.params
	lat.params = p
	lat.refreshCoeffs()

	g := lat.geom
	for _, a := range lat.sites {
		x, _, _ := lat.Coords(a)
		s, _ := lat.spins.Get(a)
		f, _ := lat.fluxes.Get(a)
		switch {
		case x < g.MolPosL:
			lat.spins.Set(a, s.WithNorm(p.SL))
			lat.fluxes.Set(a, scaleFlux(f, p.FL, p0.FL))
		case x > g.MolPosR:
			lat.spins.Set(a, s.WithNorm(p.SR))
			lat.fluxes.Set(a, scaleFlux(f, p.FR, p0.FR))
		default:
			if lat.proto != nil {
				np, _ := lat.proto.Node(lat.xToNode[x-g.MolPosL])
				lat.spins.Set(a, s.WithNorm(np.Sm))
				lat.fluxes.Set(a, clampFlux(f, np.Fm))
			} else {
				lat.spins.Set(a, s.WithNorm(p.Sm))
				lat.fluxes.Set(a, scaleFlux(f, p.Fm, p0.Fm))
			}
		}
	}
	lat.results = lat.recomputeResults()
}

// scaleFlux rescales a fluctuation by the ratio of the new cap to the
// old. A previously zero cap leaves nothing to scale.
func scaleFlux(f vec.Vec3, fNew, fOld float64) vec.Vec3 {
	if fOld == 0 {
		return vec.Zero
	}
	return f.Scale(fNew / fOld)
}

// SetB changes only the external field, adjusting the Zeeman terms
// directly instead of rebuilding the whole aggregate.
func (lat *Lattice) SetB(b vec.Vec3) {
	deltaB := b.Sub(lat.params.B)
	r := &lat.results
	r.UL -= deltaB.Dot(r.ML)
	r.UR -= deltaB.Dot(r.MR)
	r.Um -= deltaB.Dot(r.Mm)
	r.U = r.UL + r.UR + r.Um + r.UmL + r.UmR + r.ULR
	lat.params.B = b
}

// SetLocalM replaces the spin and fluctuation at site a, folding the
// change into the aggregate in O(1). Writing back the identical state
// is a no-op.
func (lat *Lattice) SetLocalM(a int, spin, flux vec.Vec3) error {
	s, ok := lat.spins.Get(a)
	if !ok {
		return fmt.Errorf("%w %d", ErrSite, a)
	}
	f, _ := lat.fluxes.Get(a)
	if s == spin && f == flux {
		return nil
	}

	m := s.Add(f)
	mag := spin.Add(flux)
	dS := spin.Sub(s)
	dF := flux.Sub(f)
	dM := mag.Sub(m)

	r := &lat.results
	r.M = r.M.Add(dM)
	r.MS = r.MS.Add(dS)
	r.MF = r.MF.Add(dF)

	x, _, _ := lat.Coords(a)
	var bucketU *float64
	switch {
	case x < lat.geom.MolPosL:
		r.ML = r.ML.Add(dM)
		r.MSL = r.MSL.Add(dS)
		r.MFL = r.MFL.Add(dF)
		bucketU = &r.UL
	case x > lat.geom.MolPosR:
		r.MR = r.MR.Add(dM)
		r.MSR = r.MSR.Add(dS)
		r.MFR = r.MFR.Add(dF)
		bucketU = &r.UR
	default:
		r.Mm = r.Mm.Add(dM)
		r.MSm = r.MSm.Add(dS)
		r.MFm = r.MFm.Add(dF)
		bucketU = &r.Um
	}

	dUB := lat.params.B.Dot(dM)
	r.U -= dUB
	*bucketU -= dUB

	je0, aniso := lat.onsite(x)
	dU := aniso.Dot(mag.SqSum().Sub(m.SqSum())) + je0*(spin.Dot(flux)-s.Dot(f))
	r.U -= dU
	*bucketU -= dU

	lat.eachBond(a, func(b int, c *bondCoeffs, bucket Region) {
		sb, _ := lat.spins.Get(b)
		fb, _ := lat.fluxes.Get(b)
		mb := sb.Add(fb)
		// Cross product order follows flat index order.
		var dmi float64
		if b < a {
			dmi = c.d.Dot(mb.Cross(dM))
		} else {
			dmi = c.d.Dot(dM.Cross(mb))
		}
		du := c.j*sb.Dot(dS) +
			c.je1*(fb.Dot(dS)+sb.Dot(dF)) +
			c.jee*fb.Dot(dF) +
			c.bq*(sq(mb.Dot(mag))-sq(mb.Dot(m))) +
			dmi
		r.U -= du
		switch bucket {
		case RegionL:
			r.UL -= du
		case RegionR:
			r.UR -= du
		case RegionM:
			r.Um -= du
		case RegionML:
			r.UmL -= du
		case RegionMR:
			r.UmR -= du
		case RegionLR:
			r.ULR -= du
		}
	})

	lat.spins.Set(a, spin)
	lat.fluxes.Set(a, flux)
	return nil
}

// CheckConsistency compares the incremental aggregate against a full
// recompute. Each energy bucket and magnetization component must agree
// within tol relative to the larger magnitude.
func (lat *Lattice) CheckConsistency(tol float64) error {
	rec := lat.recomputeResults()
	cur := lat.results

	check := func(field string, a, b float64) error {
		scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
		if math.Abs(a-b) > tol*scale {
			return &ConsistencyError{Field: field, Cached: a, Recompute: b}
		}
		return nil
	}
	scalars := []struct {
		name     string
		cur, rec float64
	}{
		{"U", cur.U, rec.U},
		{"UL", cur.UL, rec.UL},
		{"UR", cur.UR, rec.UR},
		{"Um", cur.Um, rec.Um},
		{"UmL", cur.UmL, rec.UmL},
		{"UmR", cur.UmR, rec.UmR},
		{"ULR", cur.ULR, rec.ULR},
		{"M.X", cur.M.X, rec.M.X},
		{"M.Y", cur.M.Y, rec.M.Y},
		{"M.Z", cur.M.Z, rec.M.Z},
		{"MS.X", cur.MS.X, rec.MS.X},
		{"MS.Y", cur.MS.Y, rec.MS.Y},
		{"MS.Z", cur.MS.Z, rec.MS.Z},
		{"MF.X", cur.MF.X, rec.MF.X},
		{"MF.Y", cur.MF.Y, rec.MF.Y},
		{"MF.Z", cur.MF.Z, rec.MF.Z},
	}
	for _, s := range scalars {
		if err := check(s.name, s.cur, s.rec); err != nil {
			return err
		}
	}
	return nil
}
