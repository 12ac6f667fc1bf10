// Package stats derives thermodynamic observables from a recorded
// series of Results snapshots. Snapshots are unevenly spaced in Monte
// Carlo time, so every average integrates the linear interpolant of
// the series by the trapezoidal rule rather than averaging samples.
package stats

import (
	"errors"
	"fmt"

	"github.com/spinsim/msd/internal/msd"
	"github.com/spinsim/msd/internal/vec"
)

var (
	// ErrNoSamples reports an empty record.
	ErrNoSamples = errors.New("stats: empty record")

	// ErrRegion reports a region that carries no magnetization.
	ErrRegion = errors.New("stats: region has no magnetization")
)

// MagKind selects which portion of the magnetization to average.
type MagKind int

const (
	MagTotal MagKind = iota // spin plus fluctuation
	MagSpin                 // spin only
	MagFlux                 // fluctuation only
)

func magOf(r *msd.Results, kind MagKind, reg msd.Region) (vec.Vec3, bool) {
	switch kind {
	case MagSpin:
		switch reg {
		case msd.RegionAll:
			return r.MS, true
		case msd.RegionL:
			return r.MSL, true
		case msd.RegionR:
			return r.MSR, true
		case msd.RegionM:
			return r.MSm, true
		}
	case MagFlux:
		switch reg {
		case msd.RegionAll:
			return r.MF, true
		case msd.RegionL:
			return r.MFL, true
		case msd.RegionR:
			return r.MFR, true
		case msd.RegionM:
			return r.MFm, true
		}
	default:
		return r.Magnetization(reg)
	}
	return vec.Zero, false
}

// span returns the total simulated time the record covers.
func span(rec []msd.Results) float64 {
	return float64(rec[len(rec)-1].T) - float64(rec[0].T)
}

// MeanEnergy is the time-weighted mean internal energy of reg. A
// single snapshot is its own mean; an empty record is an error.
func MeanEnergy(rec []msd.Results, reg msd.Region) (float64, error) {
	if len(rec) == 0 {
		return 0, ErrNoSamples
	}
	if len(rec) == 1 {
		return rec[0].Energy(reg), nil
	}
	var s float64
	for i := 1; i < len(rec); i++ {
		dt := float64(rec[i].T) - float64(rec[i-1].T)
		s += dt * (rec[i-1].Energy(reg) + rec[i].Energy(reg))
	}
	return 0.5 * s / span(rec), nil
}

// MeanMag is the time-weighted mean magnetization of reg. Interface
// regions hold no sites and are rejected.
func MeanMag(rec []msd.Results, kind MagKind, reg msd.Region) (vec.Vec3, error) {
	if len(rec) == 0 {
		return vec.Zero, ErrNoSamples
	}
	if _, ok := magOf(&rec[0], kind, reg); !ok {
		return vec.Zero, fmt.Errorf("%w: %v", ErrRegion, reg)
	}
	if len(rec) == 1 {
		m, _ := magOf(&rec[0], kind, reg)
		return m, nil
	}
	var s vec.Vec3
	for i := 1; i < len(rec); i++ {
		dt := float64(rec[i].T) - float64(rec[i-1].T)
		m0, _ := magOf(&rec[i-1], kind, reg)
		m1, _ := magOf(&rec[i], kind, reg)
		s = s.Add(m0.Add(m1).Scale(dt))
	}
	return s.Scale(0.5 / span(rec)), nil
}

// SpecificHeat estimates the heat capacity of reg from its energy
// fluctuations: (<U^2> - <U>^2) / (n kT^2), with <U^2> integrating the
// square of the linear interpolant. One snapshot has no fluctuation
// and yields zero.
func SpecificHeat(rec []msd.Results, reg msd.Region, kT float64, n int) float64 {
	if len(rec) <= 1 {
		return 0
	}
	var s, s2 float64
	for i := 1; i < len(rec); i++ {
		u0 := rec[i-1].Energy(reg)
		u1 := rec[i].Energy(reg)
		dU := u1 - u0
		dt := float64(rec[i].T) - float64(rec[i-1].T)
		s += (u0 + u1) * dt
		s2 += ((dt/3*dU+u0)*dU + u0*u0) * dt
	}
	dt := span(rec)
	avg := 0.5 * s / dt
	avgSq := s2 / dt
	return (avgSq - avg*avg) / (float64(n) * kT * kT)
}

// Susceptibility estimates the magnetic susceptibility of reg from the
// fluctuations of its magnetization vector. Interface regions are
// rejected; one snapshot yields zero.
func Susceptibility(rec []msd.Results, reg msd.Region, kT float64, n int) (float64, error) {
	if len(rec) == 0 {
		return 0, ErrNoSamples
	}
	if _, ok := rec[0].Magnetization(reg); !ok {
		return 0, fmt.Errorf("%w: %v", ErrRegion, reg)
	}
	if len(rec) == 1 {
		return 0, nil
	}
	var s vec.Vec3
	var s2 float64
	for i := 1; i < len(rec); i++ {
		m0, _ := rec[i-1].Magnetization(reg)
		m1, _ := rec[i].Magnetization(reg)
		dM := m1.Sub(m0)
		dt := float64(rec[i].T) - float64(rec[i-1].T)
		s = s.Add(m0.Add(m1).Scale(dt))
		s2 += (dM.Scale(dt/3).Add(m0).Dot(dM) + m0.Dot(m0)) * dt
	}
	dt := span(rec)
	avg := s.Scale(0.5 / dt)
	avgSq := s2 / dt
	return (avgSq - avg.Dot(avg)) / (float64(n) * kT * kT), nil
}
