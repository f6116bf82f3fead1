package simulate

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Broaden convolves data with the Gaussian detector response of the
// given FWHM (keV) and returns a slice of the same length. The
// convolution runs in the frequency domain: both operands are zero-padded
// to one FFT size, multiplied bin-wise, and transformed back.
func (g *Generator) Broaden(data []float64, fwhmKeV float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("simulate: empty input")
	}
	kernel, err := g.responseKernel(fwhmKeV)
	if err != nil {
		return nil, err
	}

	fftSize := nextPowerOf2(len(data) + len(kernel) - 1)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("simulate: failed to create FFT plan: %w", err)
	}

	dataFFT := make([]complex128, fftSize)
	for i, v := range data {
		dataFFT[i] = complex(v, 0)
	}
	kernelFFT := make([]complex128, fftSize)
	for i, v := range kernel {
		kernelFFT[i] = complex(v, 0)
	}

	if err := plan.Forward(dataFFT, dataFFT); err != nil {
		return nil, fmt.Errorf("simulate: forward FFT failed: %w", err)
	}
	if err := plan.Forward(kernelFFT, kernelFFT); err != nil {
		return nil, fmt.Errorf("simulate: forward FFT failed: %w", err)
	}
	for i := range dataFFT {
		dataFFT[i] *= kernelFFT[i]
	}
	if err := plan.Inverse(dataFFT, dataFFT); err != nil {
		return nil, fmt.Errorf("simulate: inverse FFT failed: %w", err)
	}

	// The kernel is centred, so the linear-convolution result is
	// shifted by half the kernel length.
	shift := len(kernel) / 2
	out := make([]float64, len(data))
	for i := range out {
		out[i] = real(dataFFT[i+shift])
	}
	return out, nil
}

// ResponseMagnitude returns |H[k]| of the detector broadening kernel for
// the given FWHM over fftSize bins, a direct view of how much each
// spectral frequency survives the detector.
func (g *Generator) ResponseMagnitude(fwhmKeV float64, fftSize int) ([]float64, error) {
	kernel, err := g.responseKernel(fwhmKeV)
	if err != nil {
		return nil, err
	}
	if fftSize < len(kernel) {
		return nil, fmt.Errorf("simulate: fftSize %d smaller than kernel %d", fftSize, len(kernel))
	}
	fftSize = nextPowerOf2(fftSize)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("simulate: failed to create FFT plan: %w", err)
	}
	bins := make([]complex128, fftSize)
	for i, v := range kernel {
		bins[i] = complex(v, 0)
	}
	if err := plan.Forward(bins, bins); err != nil {
		return nil, fmt.Errorf("simulate: forward FFT failed: %w", err)
	}

	re := make([]float64, fftSize)
	im := make([]float64, fftSize)
	for i, c := range bins {
		re[i] = real(c)
		im[i] = imag(c)
	}
	out := make([]float64, fftSize)
	vecmath.Magnitude(out, re, im)
	return out, nil
}

// responseKernel builds a unit-area Gaussian kernel in channel space.
func (g *Generator) responseKernel(fwhmKeV float64) ([]float64, error) {
	if fwhmKeV <= 0 {
		return nil, fmt.Errorf("simulate: FWHM must be > 0: %f", fwhmKeV)
	}
	sigmaCh := fwhmKeV / 2.355 / g.axis.ScaleKeV
	half := int(math.Ceil(4 * sigmaCh))
	if half < 1 {
		half = 1
	}

	kernel := make([]float64, 2*half+1)
	inv := 1 / (2 * sigmaCh * sigmaCh)
	sum := 0.0
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d * inv)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel, nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
