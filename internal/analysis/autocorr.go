package analysis

// Autocorrelation returns the normalized autocorrelation of a trace
// for lags 0..maxLag. Lag zero is always 1 unless the trace has no
// variance, in which case every lag reads zero.
func Autocorrelation(data []float64, maxLag int) []float64 {
	n := len(data)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	for _, v := range data {
		variance += (v - mean) * (v - mean)
	}

	acf := make([]float64, maxLag+1)
	if variance == 0 {
		return acf
	}
	for lag := 0; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < n; i++ {
			sum += (data[i] - mean) * (data[i+lag] - mean)
		}
		acf[lag] = sum / variance
	}
	return acf
}

// IntegratedTime estimates the integrated autocorrelation time in
// snapshot intervals: 1/2 + sum of the autocorrelation until it first
// drops below zero. Uncorrelated snapshots give roughly 1/2; a large
// value means the sampling interval is too short for independent
// samples.
func IntegratedTime(data []float64) float64 {
	acf := Autocorrelation(data, len(data)-1)
	if len(acf) == 0 {
		return 0
	}
	tau := 0.5
	for lag := 1; lag < len(acf); lag++ {
		if acf[lag] <= 0 {
			break
		}
		tau += acf[lag]
	}
	return tau
}
