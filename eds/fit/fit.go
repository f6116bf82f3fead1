// Package fit provides the peak-fitting engine used for line
// deconvolution: a joint linear least-squares fit of fixed-shape
// components whose only free parameter is an amplitude.
//
// Peak centres and widths are held fixed (they come from the physics
// tables and the detector resolution model), so fitting all component
// amplitudes reduces to one normal-equations solve per spectrum. Linked
// components contribute their shape, scaled by a fixed factor, to
// another component's amplitude and carry no parameter of their own.
package fit

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by model construction and fitting.
var (
	ErrSingular     = errors.New("fit: singular design matrix")
	ErrNoComponents = errors.New("fit: model has no components")
	ErrDataLength   = errors.New("fit: data length does not match model axis")
	ErrBadComponent = errors.New("fit: invalid component")
)

// Component is a fixed peak shape evaluated over the model's energy
// axis at unit amplitude.
type Component interface {
	eval(x []float64) ([]float64, error)
}

// Gaussian is a peak of fixed centre and width with a free amplitude.
type Gaussian struct {
	CentreKeV float64
	SigmaKeV  float64
}

func (g Gaussian) eval(x []float64) ([]float64, error) {
	if g.SigmaKeV <= 0 {
		return nil, fmt.Errorf("%w: gaussian sigma must be > 0: %f", ErrBadComponent, g.SigmaKeV)
	}
	out := make([]float64, len(x))
	inv := 1 / (2 * g.SigmaKeV * g.SigmaKeV)
	for i, xi := range x {
		d := xi - g.CentreKeV
		out[i] = math.Exp(-d * d * inv)
	}
	return out, nil
}

// FixedPattern is a reference shape with a free overall scale.
type FixedPattern struct {
	Pattern []float64
}

func (p FixedPattern) eval(x []float64) ([]float64, error) {
	if len(p.Pattern) != len(x) {
		return nil, fmt.Errorf("%w: pattern length %d does not match axis length %d",
			ErrBadComponent, len(p.Pattern), len(x))
	}
	out := make([]float64, len(p.Pattern))
	copy(out, p.Pattern)
	return out, nil
}

// Model is a set of components over a shared energy axis. Append free
// components, optionally link secondary shapes to them, then Fit against
// one or more spectra. A Model is reusable across fits: the design
// matrix is factored from the component shapes alone.
type Model struct {
	x    []float64
	cols [][]float64
}

// NewModel creates a model over the given channel energies.
func NewModel(energiesKeV []float64) *Model {
	x := make([]float64, len(energiesKeV))
	copy(x, energiesKeV)
	return &Model{x: x}
}

// Append adds a free component and returns its index, used to retrieve
// the fitted amplitude and to link secondaries.
func (m *Model) Append(c Component) (int, error) {
	col, err := c.eval(m.x)
	if err != nil {
		return 0, err
	}
	m.cols = append(m.cols, col)
	return len(m.cols) - 1, nil
}

// Link ties a secondary shape to the component at primary: the secondary
// contributes factor times its unit-amplitude shape for every unit of
// the primary's amplitude. This is the linear twin constraint used for
// sibling lines of one element.
func (m *Model) Link(primary int, factor float64, c Component) error {
	if primary < 0 || primary >= len(m.cols) {
		return fmt.Errorf("%w: link target %d out of range", ErrBadComponent, primary)
	}
	shape, err := c.eval(m.x)
	if err != nil {
		return err
	}
	col := m.cols[primary]
	for i, v := range shape {
		col[i] += factor * v
	}
	return nil
}

// Params holds fitted amplitudes, indexed by component.
type Params struct {
	amp []float64
}

// Amplitude returns the fitted amplitude (or pattern scale) of the
// component at index i.
func (p Params) Amplitude(i int) float64 { return p.amp[i] }

// Fit solves for all component amplitudes jointly against y, one value
// per channel. The solve is a single linear least-squares step; it
// returns ErrSingular when the components are degenerate (for example
// two identical peaks).
func (m *Model) Fit(y []float64) (Params, error) {
	k := len(m.cols)
	if k == 0 {
		return Params{}, ErrNoComponents
	}
	if len(y) != len(m.x) {
		return Params{}, fmt.Errorf("%w: got %d, want %d", ErrDataLength, len(y), len(m.x))
	}

	// Normal equations: (A^T A) amp = A^T y.
	ata := make([][]float64, k)
	aty := make([]float64, k)
	for i := range ata {
		ata[i] = make([]float64, k)
		aty[i] = dot(m.cols[i], y)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			s := dot(m.cols[i], m.cols[j])
			ata[i][j] = s
			ata[j][i] = s
		}
	}

	amp, err := solve(ata, aty)
	if err != nil {
		return Params{}, err
	}
	return Params{amp: amp}, nil
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// solve performs Gaussian elimination with partial pivoting on a
// symmetric positive system. a and b are clobbered.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)

	scale := 0.0
	for i := range a {
		for _, v := range a[i] {
			if av := math.Abs(v); av > scale {
				scale = av
			}
		}
	}
	if scale == 0 {
		return nil, ErrSingular
	}
	tiny := scale * 1e-12

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < tiny {
			return nil, ErrSingular
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		inv := 1 / a[col][col]
		for row := col + 1; row < n; row++ {
			f := a[row][col] * inv
			if f == 0 {
				continue
			}
			for j := col; j < n; j++ {
				a[row][j] -= f * a[col][j]
			}
			b[row] -= f * b[col]
		}
	}

	out := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < n; j++ {
			s -= a[i][j] * out[j]
		}
		out[i] = s / a[i][i]
	}
	return out, nil
}
