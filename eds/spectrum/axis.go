package spectrum

import (
	"fmt"
	"math"
)

// Axis is a uniform energy axis: channel i sits at
// OffsetKeV + ScaleKeV*i.
type Axis struct {
	OffsetKeV float64
	ScaleKeV  float64
	Size      int
}

func (a Axis) validate() error {
	if a.Size <= 0 {
		return fmt.Errorf("spectrum: axis size must be > 0: %d", a.Size)
	}
	if a.ScaleKeV <= 0 {
		return fmt.Errorf("spectrum: axis scale must be > 0: %f", a.ScaleKeV)
	}
	return nil
}

// EnergyAt returns the energy of channel i in keV.
func (a Axis) EnergyAt(i int) float64 {
	return a.OffsetKeV + a.ScaleKeV*float64(i)
}

// LowKeV returns the energy of the first channel.
func (a Axis) LowKeV() float64 { return a.OffsetKeV }

// HighKeV returns the energy of the last channel.
func (a Axis) HighKeV() float64 { return a.EnergyAt(a.Size - 1) }

// windowEps absorbs rounding noise at closed-interval window edges.
const windowEps = 1e-9

// window maps the closed energy interval [lowKeV, highKeV] to channel
// indices. ok is false when no channel falls inside the interval.
func (a Axis) window(lowKeV, highKeV float64) (i0, i1 int, ok bool) {
	i0 = int(math.Ceil((lowKeV-a.OffsetKeV)/a.ScaleKeV - windowEps))
	i1 = int(math.Floor((highKeV-a.OffsetKeV)/a.ScaleKeV + windowEps))
	if i0 < 0 {
		i0 = 0
	}
	if i1 > a.Size-1 {
		i1 = a.Size - 1
	}
	return i0, i1, i0 <= i1
}
