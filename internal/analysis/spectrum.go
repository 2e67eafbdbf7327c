// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math/cmplx"

	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Pre-allocated buffers for FFT calculations.
type fftWorkspace struct {
	input     []float64    // Buffer for windowed input signal (float64).
	fftOutput []complex128 // Buffer for FFT complex results (N/2 + 1).
	window    []float64    // Pre-calculated window coefficients.
	freqs     []float64    // Bin frequencies, shared read-only with every Spectrum.
	scale     float64      // Amplitude normalization, 2/N for the rectangular window.
}

// Analyzer computes one-sided magnitude spectra of fixed-length real blocks.
// It is not safe for concurrent use; the capture worker owns it.
type Analyzer struct {
	fftCalculator *fourier.FFT // Reusable FFT calculator instance.
	size          int          // Number of points N.
	sampleRate    float64      // Sample rate of the input audio (Hz).
	windowType    WindowFunc
	workspace     fftWorkspace
}

// NewAnalyzer creates an analyzer for blocks of size samples captured at
// sampleRate. Any size of at least two works; gonum falls back to a
// mixed-radix transform when size is not a power of two.
func NewAnalyzer(size int, sampleRate float64, windowType WindowFunc) (*Analyzer, error) {
	if size < 2 {
		return nil, fmt.Errorf("analysis block size must be at least 2, got %d", size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	a := &Analyzer{
		sampleRate: sampleRate,
		windowType: windowType,
	}
	a.resize(size)

	applog.Infof("Analysis: Initializing Analyzer (Size: %d, SampleRate: %.1f Hz, Window: %v, Bins: %d)",
		size, sampleRate, windowType, len(a.workspace.freqs))
	return a, nil
}

// resize (re)allocates the FFT plan and workspace for n-point blocks.
func (a *Analyzer) resize(n int) {
	a.size = n
	a.fftCalculator = fourier.NewFFT(n)

	window := windowCoefficients(n, a.windowType)
	var gain float64
	for _, w := range window {
		gain += w
	}

	half := n / 2
	freqs := make([]float64, half)
	for k := range freqs {
		freqs[k] = a.fftCalculator.Freq(k) * a.sampleRate
	}

	a.workspace = fftWorkspace{
		input:     make([]float64, n),
		fftOutput: make([]complex128, n/2+1),
		window:    window,
		freqs:     freqs,
		scale:     2.0 / gain,
	}
}

// Analyze computes the spectrum of samples:
//
//  1. real DFT of the N samples (after the optional window),
//  2. magnitude of the first floor(N/2) coefficients,
//  3. scaled by 2/N (2/sum(window) for non-rectangular windows),
//  4. paired with bin frequencies k*rate/N.
//
// Samples are used in their native int16 range. A block whose length differs
// from the configured size re-plans the transform for the new length. An
// empty block is a programming error and panics.
func (a *Analyzer) Analyze(samples []int16) Spectrum {
	if len(samples) == 0 {
		panic("analysis: Analyze called with an empty block")
	}
	if len(samples) != a.size {
		applog.Warnf("Analysis: Block length changed from %d to %d, re-planning FFT", a.size, len(samples))
		a.resize(len(samples))
	}

	ws := &a.workspace
	for i, s := range samples {
		ws.input[i] = float64(s) * ws.window[i]
	}

	ws.fftOutput = a.fftCalculator.Coefficients(ws.fftOutput, ws.input)

	magnitudes := make([]float64, len(ws.freqs))
	for k := range magnitudes {
		magnitudes[k] = cmplx.Abs(ws.fftOutput[k]) * ws.scale
	}

	return Spectrum{
		Magnitudes:  magnitudes,
		Frequencies: ws.freqs,
	}
}

// Size returns the configured block length N.
func (a *Analyzer) Size() int {
	return a.size
}

// SampleRate returns the configured sample rate (Hz).
func (a *Analyzer) SampleRate() float64 {
	return a.sampleRate
}

// Bins returns the number of spectrum bins, N/2.
func (a *Analyzer) Bins() int {
	return len(a.workspace.freqs)
}

// FrequencyForBin returns the center frequency (Hz) for a given bin index, or
// 0 for an out-of-range index.
func (a *Analyzer) FrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= len(a.workspace.freqs) {
		return 0.0
	}
	return a.workspace.freqs[binIndex]
}
