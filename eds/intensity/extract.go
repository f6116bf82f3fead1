// Package intensity reduces EDS spectra to per-line intensities.
//
// For each resolved X-ray line the extractor derives an energy window
// from the detector resolution model and either sums the spectrum over
// it directly, or deconvolves overlapping peaks with a joint fit against
// fixed peak shapes. Results carry the navigation shape of the input and
// can be persisted in a Store.
package intensity

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-eds/eds/elements"
	"github.com/cwbudde/algo-eds/eds/fit"
	"github.com/cwbudde/algo-eds/eds/lines"
	"github.com/cwbudde/algo-eds/eds/spectrum"
)

// Errors returned by extraction.
var (
	ErrNoLines         = errors.New("intensity: no X-ray lines selected")
	ErrMissingStandard = errors.New("intensity: no standard spectrum registered for element")
)

// Mode selects how line intensities are obtained.
type Mode int

const (
	// ModeDirect sums the spectrum over the integration window.
	ModeDirect Mode = iota

	// ModeModel deconvolves lines with fixed Gaussians, sibling lines
	// tied to their primary by the database intensity factor.
	ModeModel

	// ModeStandard scales background-free reference spectra, windowed
	// around each line, through a joint fit.
	ModeStandard
)

// Result is the intensity of one X-ray line across all navigation cells.
type Result struct {
	Line      lines.ID
	EnergyKeV float64

	// NavShape mirrors the source spectrum; Data holds one value per
	// navigation cell, a single value for 0-D input.
	NavShape []int
	Data     []float64

	Title string
}

// DefaultWindowFactor is the integration window width in FWHM units.
const DefaultWindowFactor = 2.0

// ResultKindIntensities is the store kind extraction persists under.
const ResultKindIntensities = "intensities"

type config struct {
	windowFactor float64
	mode         Mode
	background   *spectrum.Spectrum
	standards    map[string][]float64
	store        *Store
	storeKind    string
}

// Option configures an extraction.
type Option func(*config)

// WithWindowFactor sets the integration window width as a multiple of
// the line FWHM.
func WithWindowFactor(f float64) Option {
	return func(c *config) {
		if f > 0 {
			c.windowFactor = f
		}
	}
}

// WithDeconvolution switches extraction to the given deconvolution mode.
func WithDeconvolution(m Mode) Option {
	return func(c *config) { c.mode = m }
}

// WithBackground sets the background removed before a standard-mode fit.
func WithBackground(b *spectrum.Spectrum) Option {
	return func(c *config) { c.background = b }
}

// WithStandard registers the reference spectrum of a pure element for
// standard-mode deconvolution. data must have one value per channel.
func WithStandard(element string, data []float64) Option {
	return func(c *config) {
		if c.standards == nil {
			c.standards = make(map[string][]float64)
		}
		c.standards[element] = data
	}
}

// WithStore persists every result into st under the given kind.
func WithStore(st *Store, kind string) Option {
	return func(c *config) {
		c.store = st
		c.storeKind = kind
	}
}

// Extract computes the intensity of each line in ids, index-aligned with
// the input.
//
// When ids is nil the spectrum's registered lines are used; when those
// are absent too, lines are selected from the registered elements with
// the one-line-per-element policy over the alpha series. Extraction
// requires the detector resolution calibration.
func Extract(s *spectrum.Spectrum, ids []lines.ID, opts ...Option) ([]Result, error) {
	cfg := config{windowFactor: DefaultWindowFactor}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ids, err := resolveLines(s, ids)
	if err != nil {
		return nil, err
	}
	if s.Cal.ResolutionMnKaEV <= 0 {
		return nil, fmt.Errorf("%w: detector resolution at Mn Ka", lines.ErrMissingCalibration)
	}

	var results []Result
	switch cfg.mode {
	case ModeDirect:
		results, err = extractDirect(s, ids, cfg)
	case ModeModel:
		results, err = extractModel(s, ids, cfg)
	case ModeStandard:
		results, err = extractStandard(s, ids, cfg)
	default:
		return nil, fmt.Errorf("intensity: unknown mode %d", cfg.mode)
	}
	if err != nil {
		return nil, err
	}

	if cfg.store != nil {
		for _, r := range results {
			cfg.store.Put(cfg.storeKind, r)
		}
	}
	return results, nil
}

func resolveLines(s *spectrum.Spectrum, ids []lines.ID) ([]lines.ID, error) {
	if len(ids) > 0 {
		return ids, nil
	}
	if stored := s.XRayLines(); len(stored) > 0 {
		return stored, nil
	}
	elems := s.Elements()
	if len(elems) == 0 {
		return nil, ErrNoLines
	}
	sel, err := lines.Select(elems, s.Cal.BeamEnergyKeV, s.Axis.HighKeV(),
		lines.Policy{OnlyOne: true, OnlyLines: lines.AlphaLines})
	if err != nil {
		return nil, err
	}
	if len(sel.Lines) == 0 {
		return nil, ErrNoLines
	}
	return sel.Lines, nil
}

func makeResult(s *spectrum.Spectrum, id lines.ID, energyKeV float64, data []float64) Result {
	title := fmt.Sprintf("Intensity of %s at %.2f keV", id, energyKeV)
	if s.Title != "" {
		title += " from " + s.Title
	}
	return Result{
		Line:      id,
		EnergyKeV: energyKeV,
		NavShape:  append([]int(nil), s.NavShape...),
		Data:      data,
		Title:     title,
	}
}

func extractDirect(s *spectrum.Spectrum, ids []lines.ID, cfg config) ([]Result, error) {
	out := make([]Result, 0, len(ids))
	for _, id := range ids {
		l, err := lines.Validate(id)
		if err != nil {
			return nil, err
		}
		fwhm, err := lines.FWHMAtEnergy(s.Cal.ResolutionMnKaEV, l.EnergyKeV)
		if err != nil {
			return nil, err
		}
		half := cfg.windowFactor * fwhm / 2
		data := s.ReduceWindow(l.EnergyKeV-half, l.EnergyKeV+half)
		out = append(out, makeResult(s, id, l.EnergyKeV, data))
	}
	return out, nil
}

func extractModel(s *spectrum.Spectrum, ids []lines.ID, _ config) ([]Result, error) {
	energies := axisEnergies(s)
	m := fit.NewModel(energies)

	comp := make([]int, len(ids))
	lineData := make([]elements.Line, len(ids))
	for i, id := range ids {
		l, err := lines.Validate(id)
		if err != nil {
			return nil, err
		}
		lineData[i] = l

		fwhm, err := lines.FWHMAtEnergy(s.Cal.ResolutionMnKaEV, l.EnergyKeV)
		if err != nil {
			return nil, err
		}
		comp[i], err = m.Append(fit.Gaussian{CentreKeV: l.EnergyKeV, SigmaKeV: fwhm / 2.355})
		if err != nil {
			return nil, err
		}

		// Sibling lines of the same series ride on the primary's
		// amplitude through the database intensity factor.
		symbol := id.Element()
		el, _ := elements.Get(symbol)
		for _, sib := range el.Lines() {
			if sib.Name == l.Name || sib.Name[0] != l.Name[0] {
				continue
			}
			sibFWHM, err := lines.FWHMAtEnergy(s.Cal.ResolutionMnKaEV, sib.EnergyKeV)
			if err != nil {
				return nil, err
			}
			err = m.Link(comp[i], sib.Factor, fit.Gaussian{
				CentreKeV: sib.EnergyKeV,
				SigmaKeV:  sibFWHM / 2.355,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return fitAll(s, ids, lineData, m, comp)
}

func extractStandard(s *spectrum.Spectrum, ids []lines.ID, cfg config) ([]Result, error) {
	input := s
	if cfg.background != nil {
		sub, err := s.Sub(cfg.background)
		if err != nil {
			return nil, err
		}
		input = sub
	}

	energies := axisEnergies(s)
	m := fit.NewModel(energies)

	comp := make([]int, len(ids))
	lineData := make([]elements.Line, len(ids))
	for i, id := range ids {
		l, err := lines.Validate(id)
		if err != nil {
			return nil, err
		}
		lineData[i] = l

		std, ok := cfg.standards[id.Element()]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingStandard, id.Element())
		}
		fwhm, err := lines.FWHMAtEnergy(s.Cal.ResolutionMnKaEV, l.EnergyKeV)
		if err != nil {
			return nil, err
		}

		// Zero the reference outside +/-1.5 FWHM around the line so one
		// standard can serve several lines of its element.
		pattern := make([]float64, len(std))
		lo := l.EnergyKeV - 1.5*fwhm
		hi := l.EnergyKeV + 1.5*fwhm
		for ch, v := range std {
			e := s.Axis.EnergyAt(ch)
			if e >= lo && e <= hi {
				pattern[ch] = v
			}
		}

		comp[i], err = m.Append(fit.FixedPattern{Pattern: pattern})
		if err != nil {
			return nil, err
		}
	}

	return fitAll(input, ids, lineData, m, comp)
}

// fitAll runs the joint fit once per navigation cell and packages the
// fitted amplitudes per line, index-aligned with ids.
func fitAll(s *spectrum.Spectrum, ids []lines.ID, lineData []elements.Line, m *fit.Model, comp []int) ([]Result, error) {
	nav := s.NavSize()
	amps := make([][]float64, len(ids))
	for i := range amps {
		amps[i] = make([]float64, nav)
	}

	for cell := 0; cell < nav; cell++ {
		params, err := m.Fit(s.Cell(cell))
		if err != nil {
			return nil, err
		}
		for i := range ids {
			amps[i][cell] = params.Amplitude(comp[i])
		}
	}

	out := make([]Result, 0, len(ids))
	for i, id := range ids {
		out = append(out, makeResult(s, id, lineData[i].EnergyKeV, amps[i]))
	}
	return out, nil
}

func axisEnergies(s *spectrum.Spectrum) []float64 {
	out := make([]float64, s.Axis.Size)
	for i := range out {
		out[i] = s.Axis.EnergyAt(i)
	}
	return out
}
