// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
)

// Band describes one bar of the bar-graph view: the half-open bin range
// [Lo, Hi) it aggregates and its nominal frequency span.
type Band struct {
	Lo, Hi   int
	LowFreq  float64
	HighFreq float64
}

// Bands folds spectrum bins into a fixed number of logarithmically spaced
// bars. Bin 0 (DC) is excluded. Every band covers at least one bin, so with
// fewer bins than bars the trailing bars collapse onto the top bin.
type Bands struct {
	bands []Band
	bins  int
}

// NewBands lays out count bands over a spectrum of bins bins, using freqs for
// the nominal band edges. freqs may be nil.
func NewBands(count, bins int, freqs []float64) *Bands {
	b := &Bands{bins: bins}
	if count <= 0 || bins < 2 {
		return b
	}

	// Edges are spaced geometrically in bin-index space from 1 to bins.
	lo := 1.0
	hi := float64(bins)
	ratio := math.Pow(hi/lo, 1.0/float64(count))

	start := 1
	for i := range count {
		edge := int(math.Round(lo * math.Pow(ratio, float64(i+1))))
		end := max(edge, start+1)
		end = min(end, bins)
		s := min(start, bins-1)

		band := Band{Lo: s, Hi: max(end, s+1)}
		if len(freqs) >= bins {
			band.LowFreq = freqs[band.Lo]
			band.HighFreq = freqs[band.Hi-1]
		}
		b.bands = append(b.bands, band)
		start = end
	}
	return b
}

// Count returns the number of bands.
func (b *Bands) Count() int {
	return len(b.bands)
}

// Layout returns the band definitions.
func (b *Bands) Layout() []Band {
	return b.bands
}

// Apply computes the RMS magnitude of each band. A spectrum whose length does
// not match the layout yields zeros.
func (b *Bands) Apply(magnitudes []float64) []float64 {
	out := make([]float64, len(b.bands))
	if len(magnitudes) != b.bins {
		return out
	}
	for i, band := range b.bands {
		var sumSq float64
		for _, m := range magnitudes[band.Lo:band.Hi] {
			sumSq += m * m
		}
		out[i] = math.Sqrt(sumSq / float64(band.Hi-band.Lo))
	}
	return out
}
