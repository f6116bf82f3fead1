package lines

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-eds/internal/testutil"
)

func TestFWHMAtReferenceEnergy(t *testing.T) {
	// Zero broadening term: the result is the reference FWHM itself.
	got, err := FWHMAt(130, 5.899, 5.899)
	if err != nil {
		t.Fatalf("FWHMAt: %v", err)
	}
	testutil.RequireNear(t, got, 0.130, 1e-12)
}

func TestFWHMAtKnownValue(t *testing.T) {
	// Fe Ka at a 130 eV Mn Ka detector.
	got, err := FWHMAtEnergy(130, 6.404)
	if err != nil {
		t.Fatalf("FWHMAtEnergy: %v", err)
	}
	want := math.Sqrt(2.5*(6.404-5.899)*1000+130*130) / 1000
	testutil.RequireNear(t, got, want, 1e-12)
	if got <= 0.130 {
		t.Fatalf("broadening above reference should exceed reference FWHM: %v", got)
	}
}

func TestFWHMBelowReference(t *testing.T) {
	// Below the reference line the FWHM narrows.
	got, err := FWHMAtEnergy(130, 1.0)
	if err != nil {
		t.Fatalf("FWHMAtEnergy: %v", err)
	}
	if got >= 0.130 {
		t.Fatalf("FWHM below reference should be narrower: %v", got)
	}
}

func TestFWHMNegativeRadicand(t *testing.T) {
	// A tiny reference FWHM far below the reference energy drives the
	// squared FWHM negative.
	if _, err := FWHMAt(10, 0.1, 5.899); !errors.Is(err, ErrBroadening) {
		t.Fatalf("got %v, want ErrBroadening", err)
	}
}
