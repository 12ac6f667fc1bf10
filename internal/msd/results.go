package msd

import "github.com/spinsim/msd/internal/vec"

// Region selects a portion of the device for energies, magnetizations
// and site counts. The three interface regions carry energy but no
// sites of their own.
type Region int

const (
	RegionAll Region = iota
	RegionL          // left ferromagnetic lead
	RegionR          // right ferromagnetic lead
	RegionM          // molecule
	RegionML         // left lead / molecule interface
	RegionMR         // right lead / molecule interface
	RegionLR         // direct lead / lead interface
)

var regionNames = map[Region]string{
	RegionAll: "total",
	RegionL:   "L",
	RegionR:   "R",
	RegionM:   "m",
	RegionML:  "mL",
	RegionMR:  "mR",
	RegionLR:  "LR",
}

func (r Region) String() string {
	if s, ok := regionNames[r]; ok {
		return s
	}
	return "unknown"
}

// Results is the running aggregate state of a lattice: simulation time,
// region magnetizations, and region internal energies. It is maintained
// incrementally by SetLocalM and must always equal a full recompute.
// A plain value type; snapshots are complete copies.
type Results struct {
	T uint64 // elapsed Monte Carlo steps

	M, ML, MR, Mm     vec.Vec3 // magnetization, spin plus flux
	MS, MSL, MSR, MSm vec.Vec3 // spin portion
	MF, MFL, MFR, MFm vec.Vec3 // fluctuation portion

	U, UL, UR, Um, UmL, UmR, ULR float64 // internal energy
}

// Energy returns the internal energy attributed to reg.
func (r Results) Energy(reg Region) float64 {
	switch reg {
	case RegionL:
		return r.UL
	case RegionR:
		return r.UR
	case RegionM:
		return r.Um
	case RegionML:
		return r.UmL
	case RegionMR:
		return r.UmR
	case RegionLR:
		return r.ULR
	default:
		return r.U
	}
}

// Magnetization returns the net magnetization of reg. The interface
// regions hold no sites; asking for them reports ok false.
func (r Results) Magnetization(reg Region) (vec.Vec3, bool) {
	switch reg {
	case RegionAll:
		return r.M, true
	case RegionL:
		return r.ML, true
	case RegionR:
		return r.MR, true
	case RegionM:
		return r.Mm, true
	default:
		return vec.Zero, false
	}
}
