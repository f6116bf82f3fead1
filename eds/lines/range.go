package lines

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-eds/eds/elements"
)

// XRayRange returns the Anderson-Hasler X-ray generation range in
// micrometres: the maximum depth from which the line is excited under
// the given beam energy. rhoGCC <= 0 uses the pure-element density.
//
// Anderson and Hasler (1966); Goldstein et al., 3rd ed., p. 286.
func XRayRange(id ID, beamKeV, rhoGCC float64) (float64, error) {
	l, err := Validate(id)
	if err != nil {
		return 0, err
	}
	if beamKeV <= l.EnergyKeV {
		return 0, fmt.Errorf("lines: beam energy %.3f keV does not excite %s at %.3f keV",
			beamKeV, id, l.EnergyKeV)
	}
	if rhoGCC <= 0 {
		rhoGCC = elements.MustGet(id.Element()).DensityGCC
	}
	return 0.064 / rhoGCC * (math.Pow(beamKeV, 1.68) - math.Pow(l.EnergyKeV, 1.68)), nil
}

// ElectronRange returns the Kanaya-Okayama electron range in
// micrometres for a beam hitting the element at the given tilt.
// rhoGCC <= 0 uses the pure-element density.
//
// Kanaya and Okayama (1972); Goldstein et al., 3rd ed., p. 72.
func ElectronRange(symbol string, beamKeV, rhoGCC, tiltDeg float64) (float64, error) {
	el, ok := elements.Get(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: %q", elements.ErrUnknownElement, symbol)
	}
	if beamKeV <= 0 {
		return 0, fmt.Errorf("%w: beam energy required", ErrMissingCalibration)
	}
	if rhoGCC <= 0 {
		rho, err := elements.Density([]string{symbol}, []float64{1})
		if err != nil {
			return 0, err
		}
		rhoGCC = rho
	}
	return 0.0276 * el.AtomicWeight /
		(math.Pow(float64(el.AtomicNumber), 0.89) * rhoGCC) *
		math.Pow(beamKeV, 1.67) * math.Cos(tiltDeg*math.Pi/180), nil
}
