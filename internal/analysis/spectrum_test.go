// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/pkg/utils"

	dspfft "github.com/mjibson/go-dsp/fft"
)

const (
	testFFTSize    = 1024
	testSampleRate = 48000
)

func newTestAnalyzer(t testing.TB, size int, rate float64, w WindowFunc) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(size, rate, w)
	if err != nil {
		t.Fatalf("NewAnalyzer(%d, %.0f) error = %v", size, rate, err)
	}
	return a
}

func TestNewAnalyzerRejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		size int
		rate float64
	}{
		{"Zero Size", 0, testSampleRate},
		{"Single Sample", 1, testSampleRate},
		{"Zero Rate", testFFTSize, 0},
		{"Negative Rate", testFFTSize, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnalyzer(tt.size, tt.rate, Rectangular); err == nil {
				t.Errorf("NewAnalyzer(%d, %v) expected error, got nil", tt.size, tt.rate)
			}
		})
	}
}

func TestSpectrumShape(t *testing.T) {
	tests := []struct {
		name string
		size int
		rate float64
	}{
		{"Power Of Two", 1024, 48000},
		{"Mixed Radix", 1022, 48000},
		{"Small", 8, 8000},
		{"CD Rate", 2048, 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t, tt.size, tt.rate, Rectangular)
			spec := a.Analyze(utils.GenerateComplexWave(tt.size, tt.rate))

			want := tt.size / 2
			if spec.Len() != want || len(spec.Frequencies) != want {
				t.Fatalf("Analyze() lengths = (%d, %d), want %d", spec.Len(), len(spec.Frequencies), want)
			}
			if spec.Frequencies[0] != 0 {
				t.Errorf("Frequencies[0] = %v, want 0", spec.Frequencies[0])
			}

			last := spec.Frequencies[want-1]
			wantLast := float64(want-1) * tt.rate / float64(tt.size)
			if math.Abs(last-wantLast) > 1e-9 {
				t.Errorf("Frequencies[%d] = %v, want %v", want-1, last, wantLast)
			}
			if last >= tt.rate/2 {
				t.Errorf("Frequencies[%d] = %v, want < %v", want-1, last, tt.rate/2)
			}
		})
	}
}

func TestSpectrumBinAlignedSine(t *testing.T) {
	const amplitude = 10000.0

	for _, k := range []int{1, 10, 32, 100, 255, 511} {
		freq := float64(k) * testSampleRate / testFFTSize
		a := newTestAnalyzer(t, testFFTSize, testSampleRate, Rectangular)
		spec := a.Analyze(utils.GenerateSineWave(testFFTSize, testSampleRate, freq, amplitude))

		if got := spec.PeakBin(); got != k {
			t.Errorf("bin-aligned sine at %v Hz: peak bin = %d, want %d", freq, got, k)
			continue
		}

		// With 2/N scaling a bin-aligned sine reads its own amplitude.
		if got := spec.Magnitudes[k]; math.Abs(got-amplitude)/amplitude > 0.01 {
			t.Errorf("bin-aligned sine at %v Hz: magnitude = %v, want ≈%v", freq, got, amplitude)
		}
	}
}

func TestSpectrumNonAlignedSineWithinOneBin(t *testing.T) {
	a := newTestAnalyzer(t, testFFTSize, testSampleRate, Hann)
	binWidth := float64(testSampleRate) / testFFTSize

	for _, freq := range []float64{440, 1000, 3333.3, 12345} {
		spec := a.Analyze(utils.GenerateSineWave(testFFTSize, testSampleRate, freq, 8000))
		want := freq / binWidth
		if got := float64(spec.PeakBin()); math.Abs(got-want) > 1 {
			t.Errorf("sine at %v Hz: peak bin = %v, want within 1 of %.2f", freq, got, want)
		}
	}
}

func TestSpectrumConstantSignal(t *testing.T) {
	a := newTestAnalyzer(t, 64, 8000, Rectangular)
	spec := a.Analyze(utils.GenerateConstant(64, 1000))

	// DC carries the same 2/N scale as every other bin.
	if got := spec.Magnitudes[0]; math.Abs(got-2000) > 1e-6 {
		t.Errorf("DC magnitude = %v, want 2000", got)
	}
	for k := 1; k < spec.Len(); k++ {
		if spec.Magnitudes[k] > 1e-6 {
			t.Errorf("Magnitudes[%d] = %v, want 0", k, spec.Magnitudes[k])
		}
	}
}

func TestSpectrumMatchesReferenceFFT(t *testing.T) {
	for _, size := range []int{1024, 1022, 300} {
		samples := utils.GenerateComplexWave(size, testSampleRate)
		a := newTestAnalyzer(t, size, testSampleRate, Rectangular)
		spec := a.Analyze(samples)

		input := make([]float64, size)
		for i, s := range samples {
			input[i] = float64(s)
		}
		ref := dspfft.FFTReal(input)

		for k := range spec.Len() {
			want := cmplx.Abs(ref[k]) * 2 / float64(size)
			if math.Abs(spec.Magnitudes[k]-want) > 1e-6*math.Max(1, want) {
				t.Fatalf("N=%d bin %d: magnitude = %v, reference = %v", size, k, spec.Magnitudes[k], want)
			}
		}
	}
}

func TestCaptureBlockScenario(t *testing.T) {
	// 48 kHz at 0.0213 s per block gives 1022 samples.
	n := int(math.Round(48000 * 0.0213))
	if n != 1022 {
		t.Fatalf("block length = %d, want 1022", n)
	}

	a := newTestAnalyzer(t, n, 48000, Rectangular)
	spec := a.Analyze(make([]int16, n))

	if spec.Len() != 511 {
		t.Fatalf("spectrum length = %d, want 511", spec.Len())
	}
	step := spec.Frequencies[1] - spec.Frequencies[0]
	if math.Abs(step-46.97) > 0.01 {
		t.Errorf("bin step = %v, want ≈46.97", step)
	}
	if last := spec.Frequencies[510]; math.Abs(last-510*48000.0/1022) > 1e-9 {
		t.Errorf("last bin = %v, want %v", last, 510*48000.0/1022)
	}
}

func TestAnalyzeReplansOnLengthChange(t *testing.T) {
	a := newTestAnalyzer(t, 64, 8000, Rectangular)
	spec := a.Analyze(make([]int16, 128))
	if spec.Len() != 64 {
		t.Errorf("spectrum length after re-plan = %d, want 64", spec.Len())
	}
	if a.Size() != 128 {
		t.Errorf("Size() = %d, want 128", a.Size())
	}
}

func TestAnalyzeEmptyBlockPanics(t *testing.T) {
	a := newTestAnalyzer(t, 64, 8000, Rectangular)
	defer func() {
		if recover() == nil {
			t.Error("Analyze(empty) did not panic")
		}
	}()
	a.Analyze(nil)
}

func TestFrequencyForBin(t *testing.T) {
	a := newTestAnalyzer(t, testFFTSize, testSampleRate, Rectangular)

	tests := []struct {
		bin  int
		want float64
	}{
		{0, 0},
		{1, 46.875},
		{511, 511 * 46.875},
		{512, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := a.FrequencyForBin(tt.bin); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("FrequencyForBin(%d) = %v, want %v", tt.bin, got, tt.want)
		}
	}
}

func TestAnalyzeAllocations(t *testing.T) {
	a := newTestAnalyzer(t, testFFTSize, testSampleRate, Rectangular)
	input := utils.GenerateComplexWave(testFFTSize, testSampleRate)
	a.Analyze(input)

	// One allocation per call: the caller-owned magnitudes slice.
	allocs := testing.AllocsPerRun(100, func() {
		a.Analyze(input)
	})
	if allocs > 1 {
		t.Errorf("Analyze allocations = %.1f, want at most 1", allocs)
	}
}

func BenchmarkAnalyze(b *testing.B) {
	for _, size := range []int{1022, 1024, 4096} {
		b.Run(fmt.Sprintf("N=%d", size), func(b *testing.B) {
			a := newTestAnalyzer(b, size, testSampleRate, Hann)
			input := utils.GenerateComplexWave(size, testSampleRate)
			b.ReportAllocs()
			for b.Loop() {
				a.Analyze(input)
			}
		})
	}
}
