package testutil

import "math"

// FlatSpectrum returns channels channels all holding value.
func FlatSpectrum(channels int, value float64) []float64 {
	out := make([]float64, channels)
	for i := range out {
		out[i] = value
	}
	return out
}

// GaussianPeak adds a Gaussian of the given height, centre and sigma
// (all in channel units) to data and returns data.
func GaussianPeak(data []float64, height, centreCh, sigmaCh float64) []float64 {
	inv := 1 / (2 * sigmaCh * sigmaCh)
	for i := range data {
		d := float64(i) - centreCh
		data[i] += height * math.Exp(-d*d*inv)
	}
	return data
}
