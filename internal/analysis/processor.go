// SPDX-License-Identifier: MIT
/*
Package analysis implements the signal-processing stages of the capture
pipeline:

  - Deinterleave splits an interleaved sample block into per-channel samples.
  - Analyzer turns one channel block into a one-sided magnitude Spectrum.
  - PeakHold keeps a running max envelope over successive spectra.
  - Bands folds a spectrum into log-spaced bars for the bar-graph view.

Analyzer is owned by the capture worker. PeakHold is shared between the
worker and the UI and is safe for concurrent use.
*/
package analysis

// Spectrum is a one-sided magnitude spectrum. Magnitudes and Frequencies are
// index aligned and have the same length (N/2 for an N-sample block).
//
// A Spectrum is immutable once produced. Frequencies may be shared between
// spectra produced by the same Analyzer and must not be modified.
type Spectrum struct {
	Magnitudes  []float64 // Amplitude-normalized magnitudes (2/N scaling).
	Frequencies []float64 // Bin center frequencies in Hz, in [0, rate/2).
}

// Len returns the number of bins in the spectrum.
func (s Spectrum) Len() int {
	return len(s.Magnitudes)
}

// PeakBin returns the index of the largest magnitude, or -1 for an empty
// spectrum.
func (s Spectrum) PeakBin() int {
	if len(s.Magnitudes) == 0 {
		return -1
	}
	peak := 0
	for i, m := range s.Magnitudes {
		if m > s.Magnitudes[peak] {
			peak = i
		}
	}
	return peak
}

// SpectrumAnalyzer is the interface the capture worker uses to analyze a
// channel block. *Analyzer implements it.
type SpectrumAnalyzer interface {
	// Analyze computes the spectrum of one block of time-domain samples.
	Analyze(samples []int16) Spectrum
}

// Compile-time check for interface implementation.
var _ SpectrumAnalyzer = (*Analyzer)(nil)
