// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/present"
)

// Range is the vertical extent of a plot.
type Range struct {
	Min, Max float64
}

// renderWaveform draws channel 0 and, for stereo frames, channel 1 over a
// zero line. Each column shows the min-max envelope of the samples it covers.
func renderWaveform(f present.WaveformFrame, r Range, width, height int) string {
	c := newCanvas(width, height)
	c.hline(scaleRow(0, r.Min, r.Max, c.height), '·', inkGrid)
	drawTrace(c, f.Left, r, inkPrimary)
	if f.Right != nil {
		drawTrace(c, f.Right, r, inkSecondary)
	}
	return c.String()
}

func drawTrace(c *canvas, samples []int16, r Range, k ink) {
	n := len(samples)
	if n == 0 {
		return
	}
	for x := range c.width {
		i0 := x * n / c.width
		i1 := min(max((x+1)*n/c.width, i0+1), n)
		lo, hi := samples[i0], samples[i0]
		for _, s := range samples[i0:i1] {
			lo = min(lo, s)
			hi = max(hi, s)
		}
		c.vline(x, scaleRow(float64(hi), r.Min, r.Max, c.height), scaleRow(float64(lo), r.Min, r.Max, c.height), '│', k)
	}
}

func waveformAxis(f present.WaveformFrame, width int) string {
	var duration float64
	if n := len(f.Time); n > 0 {
		duration = f.Time[n-1]
	}
	return axisLine(width, "0 ms", fmt.Sprintf("%.1f ms", duration*500), fmt.Sprintf("%.1f ms", duration*1000))
}

// renderSpectrum draws the live spectrum as filled columns on a log
// frequency axis, with the max-hold curve as a marker above them.
func renderSpectrum(f present.SpectrumFrame, r Range, width, height int) string {
	c := newCanvas(width, height)
	withPeaks := len(f.Peaks) == len(f.Magnitudes)
	for x, bins := range logBinRanges(f.Frequencies, c.width) {
		if live := maxIn(f.Magnitudes, bins); live > r.Min {
			c.vline(x, scaleRow(live, r.Min, r.Max, c.height), c.height-1, '█', inkPrimary)
		}
		if !withPeaks {
			continue
		}
		if peak := maxIn(f.Peaks, bins); peak > r.Min {
			c.set(x, scaleRow(peak, r.Min, r.Max, c.height), '─', inkPeak)
		}
	}
	return c.String()
}

func spectrumAxis(f present.SpectrumFrame, width int) string {
	n := len(f.Frequencies)
	if n < 2 {
		return axisLine(width, "", "", "")
	}
	lo, hi := f.Frequencies[1], f.Frequencies[n-1]
	return axisLine(width, formatHz(lo), formatHz(math.Sqrt(lo*hi)), formatHz(hi))
}

// renderBars draws one bar per band with its decaying peak cap. Bars wider
// than one cell keep a one-cell gap to their right neighbour.
func renderBars(f present.BarFrame, r Range, width, height int) string {
	c := newCanvas(width, height)
	n := len(f.Levels)
	for i, level := range f.Levels {
		x0 := i * c.width / n
		x1 := (i + 1) * c.width / n
		if x1-x0 >= 2 {
			x1--
		}
		for x := x0; x < x1; x++ {
			if level > r.Min {
				c.vline(x, scaleRow(level, r.Min, r.Max, c.height), c.height-1, '█', inkPrimary)
			}
			if i < len(f.Peaks) && f.Peaks[i] > r.Min {
				c.set(x, scaleRow(f.Peaks[i], r.Min, r.Max, c.height), '▀', inkPeak)
			}
		}
	}
	return c.String()
}

func barsAxis(f present.BarFrame, width int) string {
	if len(f.Bands) == 0 {
		return axisLine(width, "", "", "")
	}
	first, last := f.Bands[0], f.Bands[len(f.Bands)-1]
	mid := f.Bands[len(f.Bands)/2]
	return axisLine(width, formatHz(first.LowFreq), formatHz(mid.LowFreq), formatHz(last.HighFreq))
}
