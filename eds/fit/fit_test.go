package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-eds/internal/testutil"
)

func energyAxis(n int, offset, scale float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = offset + scale*float64(i)
	}
	return x
}

func gaussianOn(x []float64, amp, centre, sigma float64) []float64 {
	out := make([]float64, len(x))
	inv := 1 / (2 * sigma * sigma)
	for i, xi := range x {
		d := xi - centre
		out[i] = amp * math.Exp(-d*d*inv)
	}
	return out
}

func TestFitSingleGaussian(t *testing.T) {
	x := energyAxis(512, 0, 0.01)
	y := gaussianOn(x, 40, 2.5, 0.06)

	m := NewModel(x)
	i, err := m.Append(Gaussian{CentreKeV: 2.5, SigmaKeV: 0.06})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	p, err := m.Fit(y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	testutil.RequireNear(t, p.Amplitude(i), 40, 1e-9)
}

func TestFitOverlappingGaussians(t *testing.T) {
	x := energyAxis(1024, 0, 0.01)
	y := gaussianOn(x, 40, 6.40, 0.06)
	for i, v := range gaussianOn(x, 70, 6.49, 0.06) {
		y[i] += v
	}

	m := NewModel(x)
	a, err := m.Append(Gaussian{CentreKeV: 6.40, SigmaKeV: 0.06})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	b, err := m.Append(Gaussian{CentreKeV: 6.49, SigmaKeV: 0.06})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	p, err := m.Fit(y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	testutil.RequireNear(t, p.Amplitude(a), 40, 1e-6)
	testutil.RequireNear(t, p.Amplitude(b), 70, 1e-6)
}

func TestFitLinkedComponent(t *testing.T) {
	x := energyAxis(1024, 0, 0.01)

	// One free amplitude drives both peaks; the second is tied at a
	// fixed ratio.
	const ratio = 0.1272
	y := gaussianOn(x, 40, 6.40, 0.06)
	for i, v := range gaussianOn(x, 40*ratio, 7.06, 0.065) {
		y[i] += v
	}

	m := NewModel(x)
	a, err := m.Append(Gaussian{CentreKeV: 6.40, SigmaKeV: 0.06})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := m.Link(a, ratio, Gaussian{CentreKeV: 7.06, SigmaKeV: 0.065}); err != nil {
		t.Fatalf("Link: %v", err)
	}

	p, err := m.Fit(y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	testutil.RequireNear(t, p.Amplitude(a), 40, 1e-9)
}

func TestFitFixedPattern(t *testing.T) {
	x := energyAxis(256, 0, 0.01)
	pattern := gaussianOn(x, 1, 1.2, 0.05)

	y := make([]float64, len(x))
	for i, v := range pattern {
		y[i] = 3 * v
	}

	m := NewModel(x)
	i, err := m.Append(FixedPattern{Pattern: pattern})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	p, err := m.Fit(y)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	testutil.RequireNear(t, p.Amplitude(i), 3, 1e-9)
}

func TestFitDegenerateComponents(t *testing.T) {
	x := energyAxis(128, 0, 0.01)
	m := NewModel(x)
	g := Gaussian{CentreKeV: 0.5, SigmaKeV: 0.05}
	if _, err := m.Append(g); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := m.Append(g); err != nil {
		t.Fatalf("Append: %v", err)
	}

	_, err := m.Fit(make([]float64, len(x)))
	if !errors.Is(err, ErrSingular) {
		t.Fatalf("got %v, want ErrSingular", err)
	}
}

func TestFitNoComponents(t *testing.T) {
	m := NewModel(energyAxis(8, 0, 0.01))
	if _, err := m.Fit(make([]float64, 8)); !errors.Is(err, ErrNoComponents) {
		t.Fatalf("got %v, want ErrNoComponents", err)
	}
}

func TestFitDataLength(t *testing.T) {
	m := NewModel(energyAxis(8, 0, 0.01))
	if _, err := m.Append(Gaussian{CentreKeV: 0.03, SigmaKeV: 0.01}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := m.Fit(make([]float64, 7)); !errors.Is(err, ErrDataLength) {
		t.Fatalf("got %v, want ErrDataLength", err)
	}
}

func TestAppendRejectsBadComponent(t *testing.T) {
	m := NewModel(energyAxis(8, 0, 0.01))
	if _, err := m.Append(Gaussian{CentreKeV: 0.03, SigmaKeV: 0}); !errors.Is(err, ErrBadComponent) {
		t.Fatalf("got %v, want ErrBadComponent", err)
	}
}
