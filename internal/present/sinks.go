// SPDX-License-Identifier: MIT
package present

import (
	"sync"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/analysis"
	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
)

// ScopeSink builds time-domain frames.
type ScopeSink struct {
	Frames Mailbox[WaveformFrame]

	blockDuration float64

	mu   sync.Mutex
	time []float64 // Cached axis for the current block length.
}

// NewScopeSink creates a time-domain sink for blocks of blockDuration
// seconds.
func NewScopeSink(blockDuration float64) *ScopeSink {
	return &ScopeSink{blockDuration: blockDuration}
}

// PublishWaveform stores the first two channels of a block as the latest
// frame.
func (s *ScopeSink) PublishWaveform(channels []analysis.ChannelSamples) {
	if len(channels) == 0 {
		return
	}
	left := channels[0]

	s.mu.Lock()
	if len(s.time) != len(left) {
		s.time = analysis.TimeAxis(len(left), s.blockDuration)
	}
	axis := s.time
	s.mu.Unlock()

	frame := WaveformFrame{
		Time:     axis,
		Left:     left,
		LeftRMS:  analysis.RMS(left),
		LeftPeak: analysis.Peak(left),
		Channels: len(channels),
	}
	if len(channels) > 1 {
		frame.Right = channels[1]
		frame.RightRMS = analysis.RMS(channels[1])
		frame.RightPeak = analysis.Peak(channels[1])
	}
	s.Frames.Put(frame)
}

// SpectrumSink builds frequency-domain frames with a max-hold envelope.
type SpectrumSink struct {
	Frames Mailbox[SpectrumFrame]
	hold   *analysis.PeakHold
}

// NewSpectrumSink creates a frequency-domain sink. The max-hold envelope does
// not decay; it is cleared only by Reset.
func NewSpectrumSink() *SpectrumSink {
	return &SpectrumSink{hold: analysis.NewPeakHold(1)}
}

// PublishSpectrum folds spec into the max-hold envelope and stores the
// latest frame.
func (s *SpectrumSink) PublishSpectrum(spec analysis.Spectrum) {
	s.Frames.Put(SpectrumFrame{
		Frequencies: spec.Frequencies,
		Magnitudes:  spec.Magnitudes,
		Peaks:       s.hold.Update(spec.Magnitudes),
	})
}

// Reset clears the max-hold envelope. The next spectrum alone determines it.
func (s *SpectrumSink) Reset() {
	s.hold.Reset()
}

// BarSink builds bar-graph frames with decaying peak caps.
type BarSink struct {
	Frames Mailbox[BarFrame]

	count int
	hold  *analysis.PeakHold

	mu    sync.Mutex
	bands *analysis.Bands // Laid out for the current spectrum length.
	bins  int
}

// NewBarSink creates a bar sink with count bars whose peak caps decay by
// decay after every update.
func NewBarSink(count int, decay float64) *BarSink {
	return &BarSink{
		count: count,
		hold:  analysis.NewPeakHold(decay),
	}
}

// PublishSpectrum aggregates spec into bars and stores the latest frame.
func (s *BarSink) PublishSpectrum(spec analysis.Spectrum) {
	s.mu.Lock()
	if s.bands == nil || s.bins != spec.Len() {
		s.bands = analysis.NewBands(s.count, spec.Len(), spec.Frequencies)
		s.bins = spec.Len()
		applog.Debugf("BarSink: %d bands over %d bins, peak decay %.3f",
			s.bands.Count(), s.bins, s.hold.DecayFactor())
	}
	bands := s.bands
	s.mu.Unlock()

	levels := bands.Apply(spec.Magnitudes)
	s.Frames.Put(BarFrame{
		Bands:  bands.Layout(),
		Levels: levels,
		Peaks:  s.hold.Update(levels),
	})
}

// Reset clears the peak caps.
func (s *BarSink) Reset() {
	s.hold.Reset()
}
