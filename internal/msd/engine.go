package msd

import (
	"math"
	"math/rand"
	"time"

	"github.com/spinsim/msd/internal/vec"
)

// FlippingStrategy proposes a replacement spin during a Metropolis
// step. rnd yields uniform values in [0, 1).
type FlippingStrategy func(spin vec.Vec3, rnd func() float64) vec.Vec3

// FluctuationStrategy proposes a replacement fluctuation vector with
// magnitude below limit.
type FluctuationStrategy func(limit float64, rnd func() float64) vec.Vec3

// UpDownModel inverts the spin, the Ising-like proposal.
func UpDownModel(spin vec.Vec3, rnd func() float64) vec.Vec3 {
	return spin.Neg()
}

// ContinuousSpinModel redraws the spin uniformly on the sphere of the
// same magnitude.
func ContinuousSpinModel(spin vec.Vec3, rnd func() float64) vec.Vec3 {
	return vec.Spherical(spin.Norm(), 2*math.Pi*rnd(), math.Asin(2*rnd()-1))
}

// SphericalFluctuation redraws the fluctuation with uniform magnitude
// in [0, limit) and uniform direction.
func SphericalFluctuation(limit float64, rnd func() float64) vec.Vec3 {
	return vec.Spherical(limit*rnd(), 2*math.Pi*rnd(), math.Asin(2*rnd()-1))
}

// EngineConfig selects the proposal strategies and seeding for a
// Metropolis engine. Zero fields take defaults: continuous spins,
// spherical fluctuations, and a time-derived seed.
type EngineConfig struct {
	Seed  int64
	Flip  FlippingStrategy
	Fluct FluctuationStrategy

	// DebugTol, when positive, verifies recompute agreement after every
	// accepted step. Expensive; meant for tests and bug hunts.
	DebugTol float64
}

// Engine drives Metropolis Monte Carlo over a lattice and records
// Results snapshots for the statistics layer.
type Engine struct {
	lat    *Lattice
	cfg    EngineConfig
	seed   int64
	rng    *rand.Rand
	record []Results
}

// NewEngine wraps lat. The lattice must not be mutated elsewhere while
// the engine owns it.
func NewEngine(lat *Lattice, cfg EngineConfig) *Engine {
	if cfg.Flip == nil {
		cfg.Flip = ContinuousSpinModel
	}
	if cfg.Fluct == nil {
		cfg.Fluct = SphericalFluctuation
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		lat:  lat,
		cfg:  cfg,
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Lattice returns the device this engine drives.
func (e *Engine) Lattice() *Lattice { return e.lat }

// Seed returns the seed of the current random stream.
func (e *Engine) Seed() int64 { return e.seed }

// Record returns the snapshots taken so far. The slice is a copy.
func (e *Engine) Record() []Results {
	out := make([]Results, len(e.record))
	copy(out, e.record)
	return out
}

// ClearRecord drops all snapshots.
func (e *Engine) ClearRecord() { e.record = e.record[:0] }

// Metropolis runs n single-site steps. Each step picks a random site,
// proposes a new spin and fluctuation, and keeps the proposal when it
// lowers the energy or survives the Boltzmann draw at temperature KT.
// Rejection restores the exact prior state, bit for bit.
func (e *Engine) Metropolis(n uint64) {
	lat := e.lat
	rnd := e.rng.Float64
	r := lat.Results()
	for i := uint64(0); i < n; i++ {
		a := lat.sites[e.rng.Intn(len(lat.sites))]
		s, _ := lat.spins.Get(a)
		f, _ := lat.fluxes.Get(a)

		x, _, _ := lat.Coords(a)
		lat.SetLocalM(a, e.cfg.Flip(s, rnd), e.cfg.Fluct(lat.maxFlux(x), rnd))

		r2 := lat.Results()
		if r2.U <= r.U || rnd() < math.Exp((r.U-r2.U)/lat.params.KT) {
			r = r2
			if e.cfg.DebugTol > 0 {
				if err := lat.CheckConsistency(e.cfg.DebugTol); err != nil {
					panic(err)
				}
			}
		} else {
			// Raw revert: bypass SetLocalM so the cached aggregate
			// returns to its exact prior value.
			lat.spins.Set(a, s)
			lat.fluxes.Set(a, f)
			lat.results = r
		}
	}
	lat.results.T += n
}

// MetropolisRecord runs n steps, snapshotting the aggregate before
// every chunk of freq steps. freq of zero disables recording. When
// freq divides n the last snapshot lands on the final state; a
// trailing partial chunk runs unrecorded.
func (e *Engine) MetropolisRecord(n, freq uint64) {
	if freq == 0 {
		e.Metropolis(n)
		return
	}
	for {
		e.record = append(e.record, e.lat.Results())
		if n >= freq {
			e.Metropolis(freq)
			n -= freq
		} else {
			if n != 0 {
				e.Metropolis(n)
			}
			return
		}
	}
}

// Reinitialize restores the ordered initial state: spins along +y,
// fluctuations zero, record cleared, time reset. With reseed, the
// random stream gets a fresh seed; otherwise it restarts from the
// engine's existing one.
func (e *Engine) Reinitialize(reseed bool) {
	if reseed {
		e.seed = time.Now().UnixNano()
	}
	e.rng = rand.New(rand.NewSource(e.seed))
	for _, a := range e.lat.sites {
		e.lat.SetLocalM(a, initSpin, initFlux)
	}
	e.record = e.record[:0]
	e.lat.SetParameters(e.lat.params)
	e.lat.results.T = 0
}

// Randomize scatters every site: spins uniform on the unit sphere and
// fluctuations with uniform magnitude in [0, 1), then rescales both to
// the active parameters. Record and time reset as in Reinitialize.
func (e *Engine) Randomize(reseed bool) {
	if reseed {
		e.seed = time.Now().UnixNano()
	}
	e.rng = rand.New(rand.NewSource(e.seed))

	// Unit fluctuation caps so the restore below scales correctly.
	p0 := e.lat.params
	pTmp := p0
	pTmp.FL, pTmp.FR, pTmp.Fm = 1, 1, 1
	e.lat.SetParameters(pTmp)

	rnd := e.rng.Float64
	for _, a := range e.lat.sites {
		e.lat.SetLocalM(a,
			vec.Spherical(1, 2*math.Pi*rnd(), math.Asin(2*rnd()-1)),
			vec.Spherical(rnd(), 2*math.Pi*rnd(), math.Asin(2*rnd()-1)))
	}
	e.record = e.record[:0]
	e.lat.SetParameters(p0)
	e.lat.results.T = 0
}
