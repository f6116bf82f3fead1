package elements

import "fmt"

// AtomicToWeight converts atomic fractions to weight fractions using
// the atomic weights of the table. The result is normalized to sum to
// one; the input need not be.
func AtomicToWeight(symbols []string, fractions []float64) ([]float64, error) {
	return convertComposition(symbols, fractions, func(el *Element, f float64) float64 {
		return f * el.AtomicWeight
	})
}

// WeightToAtomic converts weight fractions to atomic fractions, the
// inverse of AtomicToWeight.
func WeightToAtomic(symbols []string, fractions []float64) ([]float64, error) {
	return convertComposition(symbols, fractions, func(el *Element, f float64) float64 {
		return f / el.AtomicWeight
	})
}

// Density returns the density of a sample with the given atomic
// composition in g/cm3, the weight-fraction average of the pure-element
// densities.
func Density(symbols []string, atomicFractions []float64) (float64, error) {
	weights, err := AtomicToWeight(symbols, atomicFractions)
	if err != nil {
		return 0, err
	}
	density := 0.0
	for i, symbol := range symbols {
		el, _ := Get(symbol)
		density += weights[i] * el.DensityGCC
	}
	return density, nil
}

func convertComposition(symbols []string, fractions []float64, scale func(*Element, float64) float64) ([]float64, error) {
	if len(symbols) != len(fractions) {
		return nil, fmt.Errorf("elements: %d symbols against %d fractions", len(symbols), len(fractions))
	}

	out := make([]float64, len(symbols))
	total := 0.0
	for i, symbol := range symbols {
		el, ok := Get(symbol)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
		}
		if fractions[i] < 0 {
			return nil, fmt.Errorf("elements: negative fraction for %q: %f", symbol, fractions[i])
		}
		out[i] = scale(el, fractions[i])
		total += out[i]
	}
	if total <= 0 {
		return nil, fmt.Errorf("elements: fractions sum to zero")
	}
	for i := range out {
		out[i] /= total
	}
	return out, nil
}
