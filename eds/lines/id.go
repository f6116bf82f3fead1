// Package lines resolves characteristic X-ray line identifiers and
// selects the lines applicable to a spectrum.
//
// A line identifier has the form "El_Sub", e.g. "Fe_Ka": the element
// symbol and the subshell name joined by a single underscore. All
// energies are in keV; detector resolutions are quoted in eV at the
// Mn Ka reference line, the convention used on instrument data sheets.
package lines

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-eds/eds/elements"
)

// Errors returned by identifier parsing and validation.
var (
	ErrMalformedID        = errors.New("lines: malformed line identifier")
	ErrUnknownLine        = errors.New("lines: element has no such line")
	ErrMissingCalibration = errors.New("lines: beam energy or detector resolution not set")
)

// ID identifies one characteristic X-ray line as "Element_Subshell".
type ID string

// New builds the identifier for an element symbol and subshell name.
func New(element, subshell string) ID {
	return ID(element + "_" + subshell)
}

// Parse splits an identifier into element symbol and subshell name at the
// first underscore. It does not consult the database; use Validate for a
// full check.
func Parse(id ID) (element, subshell string, err error) {
	s := string(id)
	i := strings.Index(s, "_")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedID, s)
	}
	return s[:i], s[i+1:], nil
}

// Validate parses id and resolves it against the element database,
// returning the physical line data.
func Validate(id ID) (elements.Line, error) {
	symbol, subshell, err := Parse(id)
	if err != nil {
		return elements.Line{}, err
	}

	el, ok := elements.Get(symbol)
	if !ok {
		return elements.Line{}, fmt.Errorf("%w: %q", elements.ErrUnknownElement, symbol)
	}

	l, ok := el.Line(subshell)
	if !ok {
		return elements.Line{}, fmt.Errorf("%w: %q", ErrUnknownLine, id)
	}
	return l, nil
}

// Element returns the element symbol of id without validating it.
func (id ID) Element() string {
	s := string(id)
	if i := strings.Index(s, "_"); i > 0 {
		return s[:i]
	}
	return s
}

// String returns the identifier text.
func (id ID) String() string { return string(id) }
