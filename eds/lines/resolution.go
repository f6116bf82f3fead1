package lines

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-eds/eds/elements"
)

// ErrBroadening is returned when the broadening model is evaluated far
// enough below its reference energy that the squared FWHM would be
// negative.
var ErrBroadening = errors.New("lines: negative squared FWHM below reference energy")

// FWHMAt extrapolates the detector FWHM from a reference line to an
// arbitrary energy:
//
//	fwhm_eV^2 = 2.5*(E - Eref)*1000 + refFWHMeV^2
//
// refFWHMeV is the FWHM at the reference line in eV, energyKeV and
// refEnergyKeV are in keV, and the result is in keV. The model follows
// Fiori and Newbury (1978).
func FWHMAt(refFWHMeV, energyKeV, refEnergyKeV float64) (float64, error) {
	sq := 2.5*(energyKeV-refEnergyKeV)*1000 + refFWHMeV*refFWHMeV
	if sq < 0 {
		return 0, fmt.Errorf("%w: %.3f keV against reference %.3f keV at %.0f eV",
			ErrBroadening, energyKeV, refEnergyKeV, refFWHMeV)
	}
	return math.Sqrt(sq) / 1000, nil
}

// FWHMAtEnergy extrapolates the detector FWHM from the Mn Ka calibration
// line, the customary reference for EDS detectors. refFWHMeV is the
// quoted resolution at Mn Ka in eV; the result is in keV.
func FWHMAtEnergy(refFWHMeV, energyKeV float64) (float64, error) {
	return FWHMAt(refFWHMeV, energyKeV, mnKaEnergyKeV())
}

func mnKaEnergyKeV() float64 {
	l, ok := elements.MustGet("Mn").Line("Ka")
	if !ok {
		panic("lines: Mn Ka missing from element table")
	}
	return l.EnergyKeV
}
