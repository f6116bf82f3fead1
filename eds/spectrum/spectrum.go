// Package spectrum provides the spectral data model for EDS analysis:
// a uniform energy axis, detector calibration, N-dimensional navigation
// over independent spectra, and the element/X-ray-line registry attached
// to a spectrum.
//
// Data is stored navigation-major with the energy channel innermost, so
// one navigation cell is a contiguous spectrum. A Spectrum is not safe
// for concurrent mutation; callers sharing one across goroutines must
// serialize access.
package spectrum

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-eds/eds/lines"
)

// Errors returned by spectrum construction and arithmetic.
var (
	ErrDataShape     = errors.New("spectrum: data length does not match axis and navigation shape")
	ErrShapeMismatch = errors.New("spectrum: operand shapes differ")
)

// Calibration carries the acquisition parameters analysis needs from the
// instrument. A zero value means the parameter is not set.
type Calibration struct {
	// BeamEnergyKeV is the incident electron energy.
	BeamEnergyKeV float64

	// ResolutionMnKaEV is the detector FWHM at the Mn Ka line, in eV.
	ResolutionMnKaEV float64
}

// Spectrum is an EDS spectrum or spectral image.
type Spectrum struct {
	Axis  Axis
	Cal   Calibration
	Title string

	// NavShape lists the navigation (scan) dimensions; empty for a
	// single spectrum.
	NavShape []int

	// Data is navigation-major with energy innermost:
	// len(Data) = NavSize() * Axis.Size.
	Data []float64

	elems  []string
	xlines []lines.ID
}

// New allocates a zero-filled spectrum for the given axis and navigation
// shape.
func New(axis Axis, navShape []int) (*Spectrum, error) {
	if err := axis.validate(); err != nil {
		return nil, err
	}
	nav := 1
	for _, d := range navShape {
		if d <= 0 {
			return nil, fmt.Errorf("spectrum: navigation dimension must be > 0: %d", d)
		}
		nav *= d
	}
	return &Spectrum{
		Axis:     axis,
		NavShape: append([]int(nil), navShape...),
		Data:     make([]float64, nav*axis.Size),
	}, nil
}

// FromData wraps existing data in a spectrum. The slice is used directly,
// not copied.
func FromData(axis Axis, navShape []int, data []float64) (*Spectrum, error) {
	s, err := New(axis, navShape)
	if err != nil {
		return nil, err
	}
	if len(data) != len(s.Data) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDataShape, len(data), len(s.Data))
	}
	s.Data = data
	return s, nil
}

// NavSize returns the number of independent spectra (1 for 0-D data).
func (s *Spectrum) NavSize() int {
	nav := 1
	for _, d := range s.NavShape {
		nav *= d
	}
	return nav
}

// Cell returns the spectrum of one navigation cell as a view into Data.
func (s *Spectrum) Cell(nav int) []float64 {
	start := nav * s.Axis.Size
	return s.Data[start : start+s.Axis.Size]
}

// ReduceWindow sums each navigation cell over the closed energy interval
// [lowKeV, highKeV]. The result has one entry per navigation cell; an
// interval containing no channel reduces to zeros.
func (s *Spectrum) ReduceWindow(lowKeV, highKeV float64) []float64 {
	out := make([]float64, s.NavSize())
	i0, i1, ok := s.Axis.window(lowKeV, highKeV)
	if !ok {
		return out
	}
	for nav := range out {
		cell := s.Cell(nav)
		sum := 0.0
		for i := i0; i <= i1; i++ {
			sum += cell[i]
		}
		out[nav] = sum
	}
	return out
}

// Sub returns s minus b channel by channel. Axis and navigation shape
// must match.
func (s *Spectrum) Sub(b *Spectrum) (*Spectrum, error) {
	if s.Axis != b.Axis || len(s.Data) != len(b.Data) {
		return nil, ErrShapeMismatch
	}
	out, err := New(s.Axis, s.NavShape)
	if err != nil {
		return nil, err
	}
	out.Cal = s.Cal
	out.Title = s.Title
	for i, v := range s.Data {
		out.Data[i] = v - b.Data[i]
	}
	return out, nil
}

// SubScalar returns s with a constant background removed from every
// channel.
func (s *Spectrum) SubScalar(bck float64) *Spectrum {
	out, _ := New(s.Axis, s.NavShape)
	out.Cal = s.Cal
	out.Title = s.Title
	for i, v := range s.Data {
		out.Data[i] = v - bck
	}
	return out
}
