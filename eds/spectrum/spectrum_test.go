package spectrum

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-eds/internal/testutil"
)

func TestFromDataShape(t *testing.T) {
	axis := Axis{ScaleKeV: 0.01, Size: 4}

	s, err := FromData(axis, []int{2}, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	if s.NavSize() != 2 {
		t.Fatalf("NavSize = %d, want 2", s.NavSize())
	}

	if _, err := FromData(axis, []int{2}, []float64{1, 2, 3}); !errors.Is(err, ErrDataShape) {
		t.Fatalf("got %v, want ErrDataShape", err)
	}
}

func TestCellIsView(t *testing.T) {
	axis := Axis{ScaleKeV: 0.01, Size: 3}
	s, err := FromData(axis, []int{2}, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	cell := s.Cell(1)
	if cell[0] != 4 || cell[2] != 6 {
		t.Fatalf("cell = %v, want [4 5 6]", cell)
	}
	cell[0] = 40
	if s.Data[3] != 40 {
		t.Fatal("Cell did not alias Data")
	}
}

func TestReduceWindowFlatSpectrum(t *testing.T) {
	axis := Axis{ScaleKeV: 0.01, Size: 1024}
	s, err := FromData(axis, nil, testutil.FlatSpectrum(1024, 3))
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}

	// A flat spectrum of value c sums to c times the channel count.
	got := s.ReduceWindow(1.00, 1.10)
	testutil.RequireNear(t, got[0], 3*11, 1e-12)
}

func TestReduceWindowCapturesPeak(t *testing.T) {
	axis := Axis{ScaleKeV: 0.01, Size: 1024}
	data := testutil.GaussianPeak(make([]float64, 1024), 100, 640, 6)
	s, err := FromData(axis, nil, data)
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}

	full := 0.0
	for _, v := range data {
		full += v
	}

	// Three sigma on each side captures nearly the whole peak.
	got := s.ReduceWindow(6.40-0.18, 6.40+0.18)
	testutil.RequireNear(t, got[0], full, 0.01*full)
}

func TestReduceWindowPerCell(t *testing.T) {
	axis := Axis{ScaleKeV: 0.01, Size: 4}
	s, err := FromData(axis, []int{2}, []float64{1, 1, 1, 1, 2, 2, 2, 2})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	got := s.ReduceWindow(0, 0.03)
	if len(got) != 2 || got[0] != 4 || got[1] != 8 {
		t.Fatalf("ReduceWindow = %v, want [4 8]", got)
	}
}

func TestReduceWindowEmptyInterval(t *testing.T) {
	axis := Axis{ScaleKeV: 0.01, Size: 4}
	s, err := FromData(axis, nil, []float64{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	got := s.ReduceWindow(5, 6)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("ReduceWindow = %v, want [0]", got)
	}
}

func TestSub(t *testing.T) {
	axis := Axis{ScaleKeV: 0.01, Size: 3}
	a, _ := FromData(axis, nil, []float64{5, 6, 7})
	b, _ := FromData(axis, nil, []float64{1, 2, 3})

	out, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out.Data, []float64{4, 4, 4}, 0)

	other, _ := FromData(Axis{ScaleKeV: 0.02, Size: 3}, nil, []float64{0, 0, 0})
	if _, err := a.Sub(other); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("got %v, want ErrShapeMismatch", err)
	}
}

func TestSubScalar(t *testing.T) {
	axis := Axis{ScaleKeV: 0.01, Size: 3}
	a, _ := FromData(axis, nil, []float64{5, 6, 7})
	out := a.SubScalar(5)
	testutil.RequireSliceNearlyEqual(t, out.Data, []float64{0, 1, 2}, 0)
}
