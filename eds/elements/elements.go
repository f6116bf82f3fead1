// Package elements provides the static X-ray reference table used by all
// EDS analysis routines.
//
// The table maps chemical element symbols to atomic properties and
// characteristic X-ray lines (energy and intensity factor relative to the
// alpha line of the same series). It is decoded once from an embedded
// document on first use and is immutable afterwards.
package elements

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed elements.yaml
var rawTable []byte

// ErrUnknownElement is returned when a symbol is not in the table.
var ErrUnknownElement = errors.New("elements: unknown element symbol")

// Line is one characteristic X-ray line of an element.
//
// Factor is the emission intensity relative to the alpha line of the same
// series (Ka, La or Ma), so alpha lines carry a factor of 1.
type Line struct {
	Name      string
	EnergyKeV float64
	Factor    float64
}

// Element holds the atomic properties and X-ray lines of one element.
//
// Lines are kept in their declared order, which is descending energy
// within the table. Line-selection policies depend on that order.
type Element struct {
	Symbol       string
	AtomicNumber int
	AtomicWeight float64
	DensityGCC   float64

	lines  []Line
	byName map[string]Line
}

// Lines returns the element's X-ray lines in declared (descending energy)
// order. The returned slice is a copy.
func (e *Element) Lines() []Line {
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

// Line returns the named line, if the element has one.
func (e *Element) Line(name string) (Line, bool) {
	l, ok := e.byName[name]
	return l, ok
}

type rawLine struct {
	Name   string  `yaml:"name"`
	Energy float64 `yaml:"energy"`
	Factor float64 `yaml:"factor"`
}

type rawElement struct {
	Symbol  string    `yaml:"symbol"`
	Number  int       `yaml:"number"`
	Weight  float64   `yaml:"weight"`
	Density float64   `yaml:"density"`
	Lines   []rawLine `yaml:"lines"`
}

var (
	loadOnce sync.Once
	table    map[string]*Element
	symbols  []string
)

func load() {
	var raw []rawElement
	if err := yaml.Unmarshal(rawTable, &raw); err != nil {
		panic(fmt.Sprintf("elements: embedded table is invalid: %v", err))
	}

	table = make(map[string]*Element, len(raw))
	symbols = make([]string, 0, len(raw))

	for _, re := range raw {
		el := &Element{
			Symbol:       re.Symbol,
			AtomicNumber: re.Number,
			AtomicWeight: re.Weight,
			DensityGCC:   re.Density,
			lines:        make([]Line, 0, len(re.Lines)),
			byName:       make(map[string]Line, len(re.Lines)),
		}
		for _, rl := range re.Lines {
			l := Line{Name: rl.Name, EnergyKeV: rl.Energy, Factor: rl.Factor}
			el.lines = append(el.lines, l)
			el.byName[rl.Name] = l
		}
		table[el.Symbol] = el
		symbols = append(symbols, el.Symbol)
	}

	sort.Strings(symbols)
}

// Get returns the element for symbol.
func Get(symbol string) (*Element, bool) {
	loadOnce.Do(load)
	el, ok := table[symbol]
	return el, ok
}

// MustGet returns the element for symbol and panics when it is missing.
// It is intended for symbols known at compile time, such as the Mn Ka
// calibration reference.
func MustGet(symbol string) *Element {
	el, ok := Get(symbol)
	if !ok {
		panic(fmt.Sprintf("elements: %q is not in the table", symbol))
	}
	return el
}

// Symbols returns all known element symbols, sorted.
func Symbols() []string {
	loadOnce.Do(load)
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out
}
