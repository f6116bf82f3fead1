package spectrum

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-eds/eds/elements"
	"github.com/cwbudde/algo-eds/eds/lines"
)

// AddReport carries the non-fatal diagnostics of a registry mutation.
// The mutation succeeds even when the report is non-empty.
type AddReport struct {
	// AboveRange lists explicitly added lines whose energy exceeds the
	// energy axis upper bound.
	AboveRange []lines.ID

	// Missing lists registered elements for which auto-fill found no
	// line inside the spectral range.
	Missing []string
}

// Elements returns the registered element symbols, sorted.
func (s *Spectrum) Elements() []string {
	out := make([]string, len(s.elems))
	copy(out, s.elems)
	return out
}

// XRayLines returns the registered X-ray lines, sorted.
func (s *Spectrum) XRayLines() []lines.ID {
	out := make([]lines.ID, len(s.xlines))
	copy(out, s.xlines)
	return out
}

// SetElements replaces the registered elements. Registered X-ray lines
// are kept, and the elements they imply are retained in the new set: a
// stored line never loses its element.
func (s *Spectrum) SetElements(symbols []string) error {
	for _, symbol := range symbols {
		if _, ok := elements.Get(symbol); !ok {
			return fmt.Errorf("%w: %q", elements.ErrUnknownElement, symbol)
		}
	}

	keep := make([]string, 0, len(symbols)+len(s.xlines))
	keep = append(keep, symbols...)
	for _, id := range s.xlines {
		keep = append(keep, id.Element())
	}

	s.elems = nil
	return s.AddElements(keep)
}

// AddElements unions symbols into the registered element set. All
// symbols are validated against the database before anything is stored.
func (s *Spectrum) AddElements(symbols []string) error {
	for _, symbol := range symbols {
		if _, ok := elements.Get(symbol); !ok {
			return fmt.Errorf("%w: %q", elements.ErrUnknownElement, symbol)
		}
	}

	set := make(map[string]bool, len(s.elems)+len(symbols))
	for _, symbol := range s.elems {
		set[symbol] = true
	}
	for _, symbol := range symbols {
		set[symbol] = true
	}

	s.elems = s.elems[:0]
	for symbol := range set {
		s.elems = append(s.elems, symbol)
	}
	sort.Strings(s.elems)
	return nil
}

// SetLines clears the registered X-ray lines and then behaves like
// AddLines.
func (s *Spectrum) SetLines(ids []lines.ID, pol lines.Policy) (AddReport, error) {
	s.xlines = nil
	return s.AddLines(ids, pol)
}

// AddLines registers explicit X-ray lines and auto-fills lines for every
// registered element not covered by one.
//
// Every identifier is validated first; a validation failure leaves the
// registry untouched. Elements implied by the final line set are unioned
// into the element set, so the registry never stores a line whose
// element is absent. The stored list is sorted and duplicate-free, which
// makes the operation idempotent.
func (s *Spectrum) AddLines(ids []lines.ID, pol lines.Policy) (AddReport, error) {
	var report AddReport

	type parsed struct {
		id      lines.ID
		element string
		line    elements.Line
	}
	add := make([]parsed, 0, len(ids))
	for _, id := range ids {
		l, err := lines.Validate(id)
		if err != nil {
			return AddReport{}, err
		}
		add = append(add, parsed{id: id, element: id.Element(), line: l})
	}

	stored := make(map[lines.ID]bool, len(s.xlines)+len(add))
	covered := make(map[string]bool)
	for _, id := range s.xlines {
		stored[id] = true
		covered[id.Element()] = true
	}
	for _, p := range add {
		stored[p.id] = true
		covered[p.element] = true
		if p.line.EnergyKeV > s.Axis.HighKeV() {
			report.AboveRange = append(report.AboveRange, p.id)
		}
	}

	var extra []string
	for _, symbol := range s.elems {
		if !covered[symbol] {
			extra = append(extra, symbol)
		}
	}
	if len(extra) > 0 {
		sel, err := lines.Select(extra, s.Cal.BeamEnergyKeV, s.Axis.HighKeV(), pol)
		if err != nil {
			return AddReport{}, err
		}
		for _, id := range sel.Lines {
			stored[id] = true
		}
		report.Missing = sel.Missing
	}

	implied := make([]string, 0, len(stored))
	for id := range stored {
		implied = append(implied, id.Element())
	}
	if err := s.AddElements(implied); err != nil {
		return AddReport{}, err
	}

	s.xlines = s.xlines[:0]
	for id := range stored {
		s.xlines = append(s.xlines, id)
	}
	sort.Slice(s.xlines, func(i, j int) bool { return s.xlines[i] < s.xlines[j] })

	return report, nil
}
