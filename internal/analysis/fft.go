// Package analysis inspects recorded Monte Carlo traces: frequency
// content of an observable and how quickly it decorrelates.
package analysis

import (
	"math"
	"math/cmplx"
)

func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		return data
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// Spectrum returns the magnitude spectrum of a trace up to the Nyquist
// bin. The mean is removed first so the zero bin does not swamp the
// fluctuations, and the trace is zero-padded to a power of two.
func Spectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]complex128, n)
	for i, v := range data {
		padded[i] = complex(v-mean, 0)
	}

	out := fft(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(out[i])
	}
	return ps
}

// DominantBin returns the strongest non-zero frequency bin of a
// spectrum, or -1 when the spectrum is too short to have one.
func DominantBin(ps []float64) int {
	best := -1
	bestPower := 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > bestPower {
			bestPower = ps[i]
			best = i
		}
	}
	return best
}
