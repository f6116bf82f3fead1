package spectrum

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eds/eds/elements"
	"github.com/cwbudde/algo-eds/eds/lines"
)

func newTestSpectrum(t *testing.T) *Spectrum {
	t.Helper()
	s, err := New(Axis{ScaleKeV: 0.01, Size: 1024}, nil)
	require.NoError(t, err)
	s.Cal = Calibration{BeamEnergyKeV: 20, ResolutionMnKaEV: 130}
	return s
}

func TestSetElements(t *testing.T) {
	s := newTestSpectrum(t)

	require.NoError(t, s.SetElements([]string{"Fe", "Al"}))
	require.Equal(t, []string{"Al", "Fe"}, s.Elements())

	require.NoError(t, s.SetElements([]string{"Cu"}))
	require.Equal(t, []string{"Cu"}, s.Elements())
}

func TestSetElementsKeepsLineImpliedElements(t *testing.T) {
	s := newTestSpectrum(t)
	_, err := s.AddLines([]lines.ID{"Fe_Ka"}, lines.Policy{})
	require.NoError(t, err)

	// Replacing the element set must not orphan the stored Fe line.
	require.NoError(t, s.SetElements([]string{"Cu"}))
	require.Equal(t, []string{"Cu", "Fe"}, s.Elements())
	require.Equal(t, []lines.ID{"Fe_Ka"}, s.XRayLines())
}

func TestSetElementsValidatesBeforeMutating(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.SetElements([]string{"Fe"}))

	require.ErrorIs(t, s.SetElements([]string{"Xx"}), elements.ErrUnknownElement)
	require.Equal(t, []string{"Fe"}, s.Elements(), "failed replace must not mutate")
}

func TestAddElementsValidatesBeforeMutating(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.AddElements([]string{"Fe"}))

	err := s.AddElements([]string{"Cu", "Xx"})
	require.ErrorIs(t, err, elements.ErrUnknownElement)
	require.Equal(t, []string{"Fe"}, s.Elements(), "failed add must not mutate")
}

func TestAddElementsUnion(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.AddElements([]string{"Fe", "Al"}))
	require.NoError(t, s.AddElements([]string{"Fe", "Cu"}))
	require.Equal(t, []string{"Al", "Cu", "Fe"}, s.Elements())
}

func TestAddLinesImpliesElement(t *testing.T) {
	s := newTestSpectrum(t)

	report, err := s.AddLines([]lines.ID{"Fe_Ka"}, lines.Policy{})
	require.NoError(t, err)
	require.Empty(t, report.AboveRange)
	require.Equal(t, []lines.ID{"Fe_Ka"}, s.XRayLines())
	require.Equal(t, []string{"Fe"}, s.Elements())
}

func TestAddLinesAutoFillsRegisteredElements(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.SetElements([]string{"Al", "Fe"}))

	pol := lines.Policy{OnlyOne: true, OnlyLines: lines.AlphaLines}
	report, err := s.AddLines([]lines.ID{"Fe_Kb"}, pol)
	require.NoError(t, err)
	require.Empty(t, report.Missing)

	// Fe is covered by the explicit line; Al gets its alpha line.
	require.Equal(t, []lines.ID{"Al_Ka", "Fe_Kb"}, s.XRayLines())
}

func TestAddLinesIdempotent(t *testing.T) {
	s := newTestSpectrum(t)

	_, err := s.AddLines([]lines.ID{"Fe_Ka", "Al_Ka"}, lines.Policy{})
	require.NoError(t, err)
	first := s.XRayLines()

	_, err = s.AddLines([]lines.ID{"Fe_Ka"}, lines.Policy{})
	require.NoError(t, err)
	require.Equal(t, first, s.XRayLines())
}

func TestAddLinesValidatesBeforeMutating(t *testing.T) {
	s := newTestSpectrum(t)
	_, err := s.AddLines([]lines.ID{"Fe_Ka"}, lines.Policy{})
	require.NoError(t, err)

	_, err = s.AddLines([]lines.ID{"Cu_Ka", "bogus"}, lines.Policy{})
	require.ErrorIs(t, err, lines.ErrMalformedID)
	require.Equal(t, []lines.ID{"Fe_Ka"}, s.XRayLines())
	require.Equal(t, []string{"Fe"}, s.Elements())
}

func TestSetLinesReplaces(t *testing.T) {
	s := newTestSpectrum(t)
	_, err := s.AddLines([]lines.ID{"Fe_Ka"}, lines.Policy{})
	require.NoError(t, err)

	// Fe stays registered as an element, so the replacement auto-fills
	// its alpha line alongside the explicit Cu line.
	pol := lines.Policy{OnlyOne: true, OnlyLines: lines.AlphaLines}
	_, err = s.SetLines([]lines.ID{"Cu_Ka"}, pol)
	require.NoError(t, err)
	require.Equal(t, []lines.ID{"Cu_Ka", "Fe_Ka"}, s.XRayLines())
	require.Equal(t, []string{"Cu", "Fe"}, s.Elements())
}

func TestAddLinesNoDuplicateAutoFill(t *testing.T) {
	s := newTestSpectrum(t)
	require.NoError(t, s.SetElements([]string{"Al", "Fe"}))

	pol := lines.Policy{OnlyOne: true, OnlyLines: lines.AlphaLines}
	_, err := s.SetLines([]lines.ID{"Fe_Ka"}, pol)
	require.NoError(t, err)
	after := s.XRayLines()

	// A later empty add with the elements already covered changes
	// nothing.
	_, err = s.AddLines(nil, pol)
	require.NoError(t, err)
	require.Equal(t, after, s.XRayLines())
	require.Equal(t, []string{"Al", "Fe"}, s.Elements())
}

func TestAddLinesReportsAboveRange(t *testing.T) {
	s, err := New(Axis{ScaleKeV: 0.01, Size: 500}, nil) // high edge 4.99 keV
	require.NoError(t, err)
	s.Cal = Calibration{BeamEnergyKeV: 20}

	report, err := s.AddLines([]lines.ID{"Fe_Ka"}, lines.Policy{})
	require.NoError(t, err)
	require.Equal(t, []lines.ID{"Fe_Ka"}, report.AboveRange)
	// The line is registered regardless.
	require.Equal(t, []lines.ID{"Fe_Ka"}, s.XRayLines())
}

func TestAddLinesReportsMissing(t *testing.T) {
	s, err := New(Axis{ScaleKeV: 0.001, Size: 300}, nil) // high edge 0.299 keV
	require.NoError(t, err)
	s.Cal = Calibration{BeamEnergyKeV: 20}
	require.NoError(t, s.SetElements([]string{"O"}))

	report, err := s.AddLines(nil, lines.Policy{})
	require.NoError(t, err)
	require.Equal(t, []string{"O"}, report.Missing)
	require.Empty(t, s.XRayLines())
}
