package intensity

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-eds/eds/elements"
	"github.com/cwbudde/algo-eds/eds/fit"
	"github.com/cwbudde/algo-eds/eds/lines"
	"github.com/cwbudde/algo-eds/eds/spectrum"
)

// CalibrateResolution estimates the detector energy resolution from an
// isolated measured peak and returns it as the FWHM at Mn Ka in eV.
//
// A constant background, estimated from the quiet band 2.5 to 2.7 FWHM
// above the line, is removed; a fixed-centre Gaussian is then fitted
// over the peak window, scanning the width between half and twice the
// value the current calibration predicts. The fitted FWHM is
// extrapolated from the line energy to the Mn Ka reference. The
// spectrum's calibration is left untouched; storing the result is the
// caller's decision.
//
// The line should have no neighbouring peak within the scan window.
func CalibrateResolution(s *spectrum.Spectrum, id lines.ID) (float64, error) {
	l, err := lines.Validate(id)
	if err != nil {
		return 0, err
	}
	if s.Cal.ResolutionMnKaEV <= 0 {
		return 0, fmt.Errorf("%w: detector resolution at Mn Ka", lines.ErrMissingCalibration)
	}
	if s.NavSize() != 1 {
		return 0, fmt.Errorf("intensity: resolution calibration needs a single spectrum, got %d cells", s.NavSize())
	}

	fwhm0, err := lines.FWHMAtEnergy(s.Cal.ResolutionMnKaEV, l.EnergyKeV)
	if err != nil {
		return 0, err
	}

	bck := bandMean(s, l.EnergyKeV+2.5*fwhm0, l.EnergyKeV+2.7*fwhm0)

	var x, y []float64
	lo := l.EnergyKeV - 1.2*fwhm0
	hi := l.EnergyKeV + 1.6*fwhm0
	for ch := 0; ch < s.Axis.Size; ch++ {
		e := s.Axis.EnergyAt(ch)
		if e >= lo && e <= hi {
			x = append(x, e)
			y = append(y, s.Data[ch]-bck)
		}
	}
	if len(x) < 3 {
		return 0, fmt.Errorf("intensity: peak window for %s holds only %d channels", id, len(x))
	}

	sigma, err := bestSigma(x, y, l.EnergyKeV, fwhm0/2.355)
	if err != nil {
		return 0, err
	}

	mnKa, ok := elements.MustGet("Mn").Line("Ka")
	if !ok {
		return 0, fmt.Errorf("intensity: Mn Ka missing from element table")
	}
	res, err := lines.FWHMAt(sigma*2.355*1000, mnKa.EnergyKeV, l.EnergyKeV)
	if err != nil {
		return 0, err
	}
	return res * 1000, nil
}

// bandMean averages the spectrum over the closed energy interval, zero
// when no channel falls inside.
func bandMean(s *spectrum.Spectrum, lowKeV, highKeV float64) float64 {
	sum := 0.0
	n := 0
	for ch := 0; ch < s.Axis.Size; ch++ {
		e := s.Axis.EnergyAt(ch)
		if e >= lowKeV && e <= highKeV {
			sum += s.Data[ch]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// bestSigma finds the Gaussian width minimizing the fit residual by
// golden-section search; the amplitude is solved linearly at each
// candidate width.
func bestSigma(x, y []float64, centreKeV, sigma0 float64) (float64, error) {
	const phi = 0.6180339887498949

	lo, hi := sigma0/2, sigma0*2
	a := hi - phi*(hi-lo)
	b := lo + phi*(hi-lo)
	fa, err := widthResidual(x, y, centreKeV, a)
	if err != nil {
		return 0, err
	}
	fb, err := widthResidual(x, y, centreKeV, b)
	if err != nil {
		return 0, err
	}

	for i := 0; i < 90 && hi-lo > sigma0*1e-9; i++ {
		if fa < fb {
			hi, b, fb = b, a, fa
			a = hi - phi*(hi-lo)
			if fa, err = widthResidual(x, y, centreKeV, a); err != nil {
				return 0, err
			}
		} else {
			lo, a, fa = a, b, fb
			b = lo + phi*(hi-lo)
			if fb, err = widthResidual(x, y, centreKeV, b); err != nil {
				return 0, err
			}
		}
	}
	return (lo + hi) / 2, nil
}

func widthResidual(x, y []float64, centreKeV, sigmaKeV float64) (float64, error) {
	m := fit.NewModel(x)
	i, err := m.Append(fit.Gaussian{CentreKeV: centreKeV, SigmaKeV: sigmaKeV})
	if err != nil {
		return 0, err
	}
	p, err := m.Fit(y)
	if err != nil {
		return 0, err
	}

	amp := p.Amplitude(i)
	inv := 1 / (2 * sigmaKeV * sigmaKeV)
	ss := 0.0
	for j, xj := range x {
		d := xj - centreKeV
		r := y[j] - amp*math.Exp(-d*d*inv)
		ss += r * r
	}
	return ss, nil
}
