// SPDX-License-Identifier: MIT
package present

import "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/analysis"

// WaveformFrame is one block of the time-domain view. Left is channel 0 and
// Right is channel 1; Right is nil for mono sources. Time holds the x axis
// in seconds, spaced evenly from 0 to the block duration.
type WaveformFrame struct {
	Time      []float64 `json:"time"`
	Left      []int16   `json:"left"`
	Right     []int16   `json:"right,omitempty"`
	LeftRMS   float64   `json:"leftRms"`
	RightRMS  float64   `json:"rightRms"`
	LeftPeak  int       `json:"leftPeak"`
	RightPeak int       `json:"rightPeak"`
	Channels  int       `json:"channels"`
}

// SpectrumFrame is the frequency-domain view of channel 0: the live spectrum
// and its max-hold envelope, index aligned with Frequencies.
type SpectrumFrame struct {
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
	Peaks       []float64 `json:"peaks"`
}

// PeakFrequency returns the frequency of the strongest live bin, or 0 for an
// empty frame.
func (f SpectrumFrame) PeakFrequency() float64 {
	s := analysis.Spectrum{Magnitudes: f.Magnitudes, Frequencies: f.Frequencies}
	if k := s.PeakBin(); k >= 0 {
		return f.Frequencies[k]
	}
	return 0
}

// BarFrame is the bar-graph view: one level per band and a decaying peak cap
// above each bar.
type BarFrame struct {
	Bands  []analysis.Band `json:"-"`
	Levels []float64       `json:"levels"`
	Peaks  []float64       `json:"peaks"`
}
