package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinsim/msd/internal/msd"
	"github.com/spinsim/msd/internal/vec"
)

func record() []msd.Results {
	return []msd.Results{
		{T: 0, U: 1, UL: 2, M: vec.Vec3{X: 1}, ML: vec.Vec3{Y: 4}, MS: vec.Vec3{Z: 1}},
		{T: 2, U: 3, UL: 2, M: vec.Vec3{X: 1, Y: 2}, ML: vec.Vec3{Y: 4}, MS: vec.Vec3{Z: 3}},
		{T: 3, U: 3, UL: 2, M: vec.Vec3{X: 1, Y: 2}, ML: vec.Vec3{Y: 4}, MS: vec.Vec3{Z: 3}},
	}
}

func TestMeanEnergy(t *testing.T) {
	// Trapezoids: 2*(1+3)/2 + 1*(3+3)/2 = 7 over a span of 3.
	got, err := MeanEnergy(record(), msd.RegionAll)
	require.NoError(t, err)
	assert.InDelta(t, 7.0/3.0, got, 1e-12)

	// A constant series averages to itself.
	got, err = MeanEnergy(record(), msd.RegionL)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-12)
}

func TestMeanEnergyDegenerate(t *testing.T) {
	_, err := MeanEnergy(nil, msd.RegionAll)
	assert.ErrorIs(t, err, ErrNoSamples)

	got, err := MeanEnergy(record()[:1], msd.RegionAll)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestMeanMag(t *testing.T) {
	got, err := MeanMag(record(), MagTotal, msd.RegionAll)
	require.NoError(t, err)
	// x stays 1; y: (2*(0+2)/2 + 1*(2+2)/2) / 3 = 4/3.
	assert.InDelta(t, 1.0, got.X, 1e-12)
	assert.InDelta(t, 4.0/3.0, got.Y, 1e-12)
	assert.InDelta(t, 0.0, got.Z, 1e-12)

	got, err = MeanMag(record(), MagSpin, msd.RegionAll)
	require.NoError(t, err)
	// z: (2*(1+3)/2 + 1*(3+3)/2) / 3 = 7/3.
	assert.InDelta(t, 7.0/3.0, got.Z, 1e-12)

	got, err = MeanMag(record(), MagTotal, msd.RegionL)
	require.NoError(t, err)
	assert.Equal(t, vec.Vec3{Y: 4}, got)
}

func TestMeanMagInterfaceRegion(t *testing.T) {
	_, err := MeanMag(record(), MagTotal, msd.RegionML)
	assert.ErrorIs(t, err, ErrRegion)
	_, err = Susceptibility(record(), msd.RegionLR, 1, 1)
	assert.ErrorIs(t, err, ErrRegion)
}

func TestSpecificHeat(t *testing.T) {
	// Hand-evaluated quadrature over the record above with n=2, kT=0.5:
	// s2 = 34/3 + 9, avgSq = 61/9, avg = 7/3, so the variance is 4/3
	// and the heat 8/3.
	got := SpecificHeat(record(), msd.RegionAll, 0.5, 2)
	assert.InDelta(t, 8.0/3.0, got, 1e-12)
}

func TestSpecificHeatConstantEnergy(t *testing.T) {
	// No fluctuation, no heat.
	got := SpecificHeat(record(), msd.RegionL, 0.5, 2)
	assert.InDelta(t, 0.0, got, 1e-12)
}

func TestSpecificHeatSingleSample(t *testing.T) {
	assert.Zero(t, SpecificHeat(record()[:1], msd.RegionAll, 0.5, 2))
	assert.Zero(t, SpecificHeat(nil, msd.RegionAll, 0.5, 2))
}

func TestSusceptibility(t *testing.T) {
	rec := []msd.Results{
		{T: 0, M: vec.Vec3{X: 1}},
		{T: 2, M: vec.Vec3{X: 1, Y: 2}},
	}
	// avg = (1,1,0); avgSq = 11/3; variance 5/3 with n=1, kT=1.
	got, err := Susceptibility(rec, msd.RegionAll, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 5.0/3.0, got, 1e-12)
}

func TestSusceptibilityDegenerate(t *testing.T) {
	_, err := Susceptibility(nil, msd.RegionAll, 1, 1)
	assert.ErrorIs(t, err, ErrNoSamples)

	got, err := Susceptibility(record()[:1], msd.RegionAll, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, got)
}
