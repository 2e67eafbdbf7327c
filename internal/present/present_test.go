// SPDX-License-Identifier: MIT
package present

import (
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/analysis"
)

func TestMailboxLatestWins(t *testing.T) {
	var m Mailbox[int]

	if _, _, ok := m.Latest(); ok {
		t.Fatal("Latest() on empty mailbox reported a value")
	}

	for i := 1; i <= 5; i++ {
		m.Put(i)
	}
	v, seq, ok := m.Latest()
	if !ok || v != 5 || seq != 5 {
		t.Errorf("Latest() = (%d, %d, %v), want (5, 5, true)", v, seq, ok)
	}

	if _, _, ok := m.Since(5); ok {
		t.Error("Since(current) reported a new value")
	}
	m.Put(6)
	if v, seq, ok := m.Since(5); !ok || v != 6 || seq != 6 {
		t.Errorf("Since(5) = (%d, %d, %v), want (6, 6, true)", v, seq, ok)
	}
}

func TestMailboxConcurrentPut(t *testing.T) {
	var m Mailbox[[]int]
	var wg sync.WaitGroup

	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				m.Put([]int{w, i})
			}
		}()
	}
	wg.Wait()

	if _, seq, _ := m.Latest(); seq != 2000 {
		t.Errorf("Latest() seq = %d, want 2000", seq)
	}
}

func TestScopeSink(t *testing.T) {
	s := NewScopeSink(0.004)

	s.PublishWaveform([]analysis.ChannelSamples{{100, -100, 100, -100, 100}, {1, 2, 3, 4, 5}})
	frame, _, ok := s.Frames.Latest()
	if !ok {
		t.Fatal("no frame published")
	}

	if frame.Channels != 2 {
		t.Errorf("Channels = %d, want 2", frame.Channels)
	}
	if !slices.Equal(frame.Right, []int16{1, 2, 3, 4, 5}) {
		t.Errorf("Right = %v", frame.Right)
	}
	if frame.LeftRMS != 100 {
		t.Errorf("LeftRMS = %v, want 100", frame.LeftRMS)
	}
	if frame.LeftPeak != 100 || frame.RightPeak != 5 {
		t.Errorf("peaks = (%d, %d), want (100, 5)", frame.LeftPeak, frame.RightPeak)
	}
	if len(frame.Time) != 5 || frame.Time[0] != 0 || math.Abs(frame.Time[4]-0.004) > 1e-12 {
		t.Errorf("Time = %v, want 5 points from 0 to 0.004", frame.Time)
	}

	s.PublishWaveform([]analysis.ChannelSamples{{7, 8}})
	frame, _, _ = s.Frames.Latest()
	if frame.Channels != 1 || frame.Right != nil || len(frame.Time) != 2 {
		t.Errorf("mono frame = %+v", frame)
	}
}

func spectrumOf(mags ...float64) analysis.Spectrum {
	freqs := make([]float64, len(mags))
	for i := range freqs {
		freqs[i] = float64(i) * 100
	}
	return analysis.Spectrum{Magnitudes: mags, Frequencies: freqs}
}

func TestSpectrumSinkMaxHoldAndReset(t *testing.T) {
	s := NewSpectrumSink()

	s.PublishSpectrum(spectrumOf(1, 9, 3))
	s.PublishSpectrum(spectrumOf(4, 2, 3))
	frame, _, _ := s.Frames.Latest()

	if !slices.Equal(frame.Magnitudes, []float64{4, 2, 3}) {
		t.Errorf("Magnitudes = %v, want live spectrum", frame.Magnitudes)
	}
	if !slices.Equal(frame.Peaks, []float64{4, 9, 3}) {
		t.Errorf("Peaks = %v, want [4 9 3]", frame.Peaks)
	}
	if got := frame.PeakFrequency(); got != 0 {
		t.Errorf("PeakFrequency() = %v, want 0", got)
	}

	s.Reset()
	s.PublishSpectrum(spectrumOf(1, 1, 1))
	frame, _, _ = s.Frames.Latest()
	if !slices.Equal(frame.Peaks, []float64{1, 1, 1}) {
		t.Errorf("Peaks after Reset = %v, want [1 1 1]", frame.Peaks)
	}
}

func TestBarSink(t *testing.T) {
	s := NewBarSink(4, 0.5)

	mags := make([]float64, 64)
	for i := range mags {
		mags[i] = 8
	}
	s.PublishSpectrum(spectrumOf(mags...))
	frame, _, _ := s.Frames.Latest()

	if len(frame.Levels) != 4 || len(frame.Peaks) != 4 || len(frame.Bands) != 4 {
		t.Fatalf("frame sizes = (%d, %d, %d), want 4", len(frame.Levels), len(frame.Peaks), len(frame.Bands))
	}
	for i, v := range frame.Levels {
		if math.Abs(v-8) > 1e-9 {
			t.Errorf("level %d = %v, want 8", i, v)
		}
	}

	// Silence: caps decay from the held 8 to 4.
	s.PublishSpectrum(spectrumOf(make([]float64, 64)...))
	frame, _, _ = s.Frames.Latest()
	for i, p := range frame.Peaks {
		if math.Abs(p-4) > 1e-9 {
			t.Errorf("peak %d after one silent update = %v, want 4", i, p)
		}
	}

	// A different spectrum length re-lays the bands.
	s.PublishSpectrum(spectrumOf(make([]float64, 16)...))
	frame, _, _ = s.Frames.Latest()
	if last := frame.Bands[len(frame.Bands)-1]; last.Hi != 16 {
		t.Errorf("last band ends at %d after relayout, want 16", last.Hi)
	}

	s.Reset()
	s.PublishSpectrum(spectrumOf(make([]float64, 16)...))
	frame, _, _ = s.Frames.Latest()
	for i, p := range frame.Peaks {
		if p != 0 {
			t.Errorf("peak %d after Reset = %v, want 0", i, p)
		}
	}
}
