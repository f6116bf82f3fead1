package lines

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-eds/eds/elements"
)

// AlphaLines is the conventional subshell filter restricting selection to
// the alpha line of each series.
var AlphaLines = []string{"Ka", "La", "Ma"}

// Policy controls how lines are chosen for an element.
type Policy struct {
	// OnlyOne keeps a single line per element: the first declared
	// candidate excitable with an overvoltage of at least 2 (line energy
	// below half the beam energy). The database declares lines in
	// descending energy, so this is the highest-energy excitable line.
	// When no candidate clears the threshold the last (lowest-energy)
	// candidate is used instead.
	OnlyOne bool

	// OnlyLines restricts candidates to the named subshells.
	// Nil means no restriction.
	OnlyLines []string
}

func (p Policy) allows(subshell string) bool {
	if p.OnlyLines == nil {
		return true
	}
	for _, name := range p.OnlyLines {
		if name == subshell {
			return true
		}
	}
	return false
}

// Selection is the outcome of a line selection.
type Selection struct {
	// Lines holds the selected identifiers, ordered by element (sorted)
	// and within an element by declaration order.
	Lines []ID

	// Missing lists elements for which no line fell inside the spectral
	// range. This is a diagnostic, not an error; the remaining elements
	// are still selected.
	Missing []string
}

// Select resolves the X-ray lines of the given elements that fall inside
// the usable spectral range.
//
// The effective upper bound is rangeHighKeV, capped by beamKeV when a
// beam energy is known (beamKeV > 0). Elements are processed in sorted
// order for deterministic output. Select never mutates its inputs.
//
// With Policy.OnlyOne a beam energy is required and ErrMissingCalibration
// is returned without one.
func Select(symbols []string, beamKeV, rangeHighKeV float64, pol Policy) (Selection, error) {
	if pol.OnlyOne && beamKeV <= 0 {
		return Selection{}, fmt.Errorf("%w: beam energy required to pick the best line", ErrMissingCalibration)
	}

	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)

	upper := rangeHighKeV
	if beamKeV > 0 && beamKeV < upper {
		upper = beamKeV
	}

	var sel Selection
	for _, symbol := range sorted {
		el, ok := elements.Get(symbol)
		if !ok {
			return Selection{}, fmt.Errorf("%w: %q", elements.ErrUnknownElement, symbol)
		}

		var candidates []ID
		for _, l := range el.Lines() {
			if !pol.allows(l.Name) {
				continue
			}
			if l.EnergyKeV < upper {
				candidates = append(candidates, New(symbol, l.Name))
			}
		}

		if len(candidates) == 0 {
			sel.Missing = append(sel.Missing, symbol)
			continue
		}

		if pol.OnlyOne {
			pick := candidates[len(candidates)-1]
			for _, id := range candidates {
				l, err := Validate(id)
				if err != nil {
					return Selection{}, err
				}
				if l.EnergyKeV < beamKeV/2 {
					pick = id
					break
				}
			}
			candidates = candidates[:1]
			candidates[0] = pick
		}

		sel.Lines = append(sel.Lines, candidates...)
	}

	return sel, nil
}
