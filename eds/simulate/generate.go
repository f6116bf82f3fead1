// Package simulate builds synthetic EDS spectra for testing and
// detector studies: characteristic line sticks from a composition,
// Gaussian detector broadening via FFT convolution, and Poisson
// counting noise.
package simulate

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/cwbudde/algo-eds/eds/elements"
	"github.com/cwbudde/algo-eds/eds/lines"
	"github.com/cwbudde/algo-eds/eds/spectrum"
)

// Generator creates deterministic synthetic spectra from a shared axis
// and calibration.
type Generator struct {
	axis spectrum.Axis
	cal  spectrum.Calibration
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the deterministic seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.seed = seed }
}

// NewGenerator creates a configured generator. The calibration must
// carry a beam energy and a detector resolution.
func NewGenerator(axis spectrum.Axis, cal spectrum.Calibration, opts ...Option) (*Generator, error) {
	if axis.Size <= 0 || axis.ScaleKeV <= 0 {
		return nil, fmt.Errorf("simulate: invalid axis: size=%d scale=%f", axis.Size, axis.ScaleKeV)
	}
	if cal.BeamEnergyKeV <= 0 || cal.ResolutionMnKaEV <= 0 {
		return nil, fmt.Errorf("%w: beam energy and detector resolution", lines.ErrMissingCalibration)
	}
	g := &Generator{axis: axis, cal: cal, seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Sticks returns a stick spectrum: for every line of every element in
// the composition that lies inside the spectral range and below the beam
// energy, the channel nearest the line energy receives
// weight * factor * dose counts. Composition weights are normalized to
// sum to one.
func (g *Generator) Sticks(composition map[string]float64, dose float64) ([]float64, error) {
	if len(composition) == 0 {
		return nil, fmt.Errorf("simulate: empty composition")
	}
	if dose <= 0 {
		return nil, fmt.Errorf("simulate: dose must be > 0: %f", dose)
	}

	total := 0.0
	symbols := make([]string, 0, len(composition))
	for symbol, w := range composition {
		if w < 0 {
			return nil, fmt.Errorf("simulate: negative weight for %q: %f", symbol, w)
		}
		total += w
		symbols = append(symbols, symbol)
	}
	if total <= 0 {
		return nil, fmt.Errorf("simulate: composition weights sum to zero")
	}

	sel, err := lines.Select(symbols, g.cal.BeamEnergyKeV, g.axis.HighKeV(), lines.Policy{})
	if err != nil {
		return nil, err
	}

	out := make([]float64, g.axis.Size)
	for _, id := range sel.Lines {
		l, err := lines.Validate(id)
		if err != nil {
			return nil, err
		}
		ch := int(math.Round((l.EnergyKeV - g.axis.OffsetKeV) / g.axis.ScaleKeV))
		if ch < 0 || ch >= g.axis.Size {
			continue
		}
		out[ch] += composition[id.Element()] / total * l.Factor * dose
	}
	return out, nil
}

// SticksAtomic is Sticks with the composition given in atomic fractions,
// converted to weight fractions through the atomic weights first.
func (g *Generator) SticksAtomic(composition map[string]float64, dose float64) ([]float64, error) {
	symbols := make([]string, 0, len(composition))
	for symbol := range composition {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	fractions := make([]float64, len(symbols))
	for i, symbol := range symbols {
		fractions[i] = composition[symbol]
	}
	weights, err := elements.AtomicToWeight(symbols, fractions)
	if err != nil {
		return nil, err
	}

	byWeight := make(map[string]float64, len(symbols))
	for i, symbol := range symbols {
		byWeight[symbol] = weights[i]
	}
	return g.Sticks(byWeight, dose)
}

// Spectrum builds a broadened synthetic spectrum: line sticks convolved
// with the Gaussian detector response at the axis mid-range energy.
func (g *Generator) Spectrum(composition map[string]float64, dose float64) (*spectrum.Spectrum, error) {
	sticks, err := g.Sticks(composition, dose)
	if err != nil {
		return nil, err
	}

	mid := (g.axis.LowKeV() + g.axis.HighKeV()) / 2
	fwhm, err := lines.FWHMAtEnergy(g.cal.ResolutionMnKaEV, mid)
	if err != nil {
		return nil, err
	}
	data, err := g.Broaden(sticks, fwhm)
	if err != nil {
		return nil, err
	}

	s, err := spectrum.FromData(g.axis, nil, data)
	if err != nil {
		return nil, err
	}
	s.Cal = g.cal
	s.Title = "simulated spectrum"
	return s, nil
}

// AddPoissonNoise replaces every channel with a Poisson draw around its
// value, in place. Draws are deterministic for a given generator seed.
func (g *Generator) AddPoissonNoise(data []float64) {
	rng := rand.New(rand.NewSource(g.seed))
	for i, v := range data {
		data[i] = poisson(rng, v)
	}
}

// poisson samples a Poisson variate with mean lambda. Knuth's product
// method below 30, normal approximation above.
func poisson(rng *rand.Rand, lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	if lambda > 30 {
		v := math.Round(lambda + math.Sqrt(lambda)*rng.NormFloat64())
		if v < 0 {
			return 0
		}
		return v
	}
	limit := math.Exp(-lambda)
	p := 1.0
	k := -1
	for p > limit {
		p *= rng.Float64()
		k++
	}
	return float64(k)
}
