// Command xlines prints characteristic X-ray line tables for a set of
// elements, with detector FWHM, integration windows and interaction
// ranges.
//
// Usage:
//
//	xlines [flags] [element-symbol ...]
//
// Examples:
//
//	xlines Fe Ni
//	xlines -beam 20 -resolution 130 Fe Ni O
//	xlines -beam 20 -range 10 -best Fe
//	xlines -list
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-eds/eds/elements"
	"github.com/cwbudde/algo-eds/eds/intensity"
	"github.com/cwbudde/algo-eds/eds/lines"
)

func main() {
	beam := flag.Float64("beam", 0, "beam energy in keV (0 = unknown)")
	resolution := flag.Float64("resolution", 130, "detector FWHM at Mn Ka in eV")
	rangeHigh := flag.Float64("range", 0, "spectral range upper bound in keV (0 = beam energy)")
	factor := flag.Float64("window", intensity.DefaultWindowFactor, "integration window width in FWHM units")
	best := flag.Bool("best", false, "mark the one line per element the selector would pick")
	all := flag.Bool("all", false, "show every element in the database")
	list := flag.Bool("list", false, "list known element symbols")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xlines [flags] [element-symbol ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints characteristic X-ray line tables for EDS analysis.\n")
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *list {
		fmt.Println(strings.Join(elements.Symbols(), " "))
		return
	}

	symbols := flag.Args()
	if *all {
		symbols = elements.Symbols()
	}
	if len(symbols) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	upper := *rangeHigh
	if upper <= 0 {
		upper = *beam
	}

	selected := map[lines.ID]bool{}
	if *best {
		if *beam <= 0 {
			fmt.Fprintln(os.Stderr, "xlines: -best requires -beam")
			os.Exit(2)
		}
		sel, err := lines.Select(symbols, *beam, upper, lines.Policy{OnlyOne: true})
		if err != nil {
			fmt.Fprintf(os.Stderr, "xlines: %v\n", err)
			os.Exit(1)
		}
		for _, id := range sel.Lines {
			selected[id] = true
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tENERGY keV\tFACTOR\tFWHM eV\tWINDOW keV\tRANGE um\tNOTES")

	for _, symbol := range symbols {
		el, ok := elements.Get(symbol)
		if !ok {
			fmt.Fprintf(os.Stderr, "xlines: unknown element %q\n", symbol)
			os.Exit(1)
		}
		for _, l := range el.Lines() {
			id := lines.New(symbol, l.Name)

			fwhm, err := lines.FWHMAtEnergy(*resolution, l.EnergyKeV)
			window := "-"
			fwhmText := "-"
			if err == nil {
				half := *factor * fwhm / 2
				window = fmt.Sprintf("%.3f..%.3f", l.EnergyKeV-half, l.EnergyKeV+half)
				fwhmText = fmt.Sprintf("%.1f", fwhm*1000)
			}

			xrange := "-"
			if *beam > 0 {
				if r, err := lines.XRayRange(id, *beam, 0); err == nil {
					xrange = fmt.Sprintf("%.2f", r)
				}
			}

			var notes []string
			if upper > 0 && l.EnergyKeV >= upper {
				notes = append(notes, "out of range")
			}
			if selected[id] {
				notes = append(notes, "selected")
			}

			fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%s\t%s\t%s\t%s\n",
				id, l.EnergyKeV, l.Factor, fwhmText, window, xrange, strings.Join(notes, ", "))
		}
	}
	w.Flush()

	if *beam > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ELEMENT\tDENSITY g/cm3\tELECTRON RANGE um")
		for _, symbol := range symbols {
			el, _ := elements.Get(symbol)
			er := "-"
			if r, err := lines.ElectronRange(symbol, *beam, 0, 0); err == nil {
				er = fmt.Sprintf("%.2f", r)
			}
			fmt.Fprintf(w, "%s\t%.3f\t%s\n", symbol, el.DensityGCC, er)
		}
		w.Flush()
	}
}
