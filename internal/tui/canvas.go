// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ink selects the style of a canvas cell.
type ink uint8

const (
	inkNone ink = iota
	inkPrimary
	inkSecondary
	inkPeak
	inkGrid
)

var inkStyles = map[ink]lipgloss.Style{
	inkPrimary:   lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065")),
	inkSecondary: lipgloss.NewStyle().Foreground(lipgloss.Color("#5A9BD5")),
	inkPeak:      lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A33D")).Bold(true),
	inkGrid:      lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")),
}

// canvas is a fixed-size grid of runes, each drawn with one ink. Row 0 is
// the top of the plot.
type canvas struct {
	width, height int
	cells         []rune
	inks          []ink
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: max(width, 1), height: max(height, 1)}
	c.cells = make([]rune, c.width*c.height)
	c.inks = make([]ink, c.width*c.height)
	for i := range c.cells {
		c.cells[i] = ' '
	}
	return c
}

func (c *canvas) set(x, y int, r rune, k ink) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	i := y*c.width + x
	c.cells[i] = r
	c.inks[i] = k
}

// vline fills column x between rows y0 and y1 inclusive.
func (c *canvas) vline(x, y0, y1 int, r rune, k ink) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		c.set(x, y, r, k)
	}
}

func (c *canvas) hline(y int, r rune, k ink) {
	for x := range c.width {
		c.set(x, y, r, k)
	}
}

// String renders the grid, styling runs of equal ink together.
func (c *canvas) String() string {
	var sb strings.Builder
	for y := range c.height {
		row := y * c.width
		start := 0
		for x := 1; x <= c.width; x++ {
			if x < c.width && c.inks[row+x] == c.inks[row+start] {
				continue
			}
			run := string(c.cells[row+start : row+x])
			if k := c.inks[row+start]; k != inkNone {
				run = inkStyles[k].Render(run)
			}
			sb.WriteString(run)
			start = x
		}
		if y < c.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// scaleRow maps v in [lo, hi] onto a row, clamping values outside the range
// to the top or bottom edge.
func scaleRow(v, lo, hi float64, height int) int {
	if hi <= lo || height <= 1 {
		return height - 1
	}
	frac := min(max((v-lo)/(hi-lo), 0), 1)
	return height - 1 - int(math.Round(frac*float64(height-1)))
}

// logBinRanges assigns each of width columns the inclusive range of bins
// that falls inside it on a logarithmic frequency axis running from the
// first non-DC bin to the last bin. Every column gets at least one bin.
func logBinRanges(freqs []float64, width int) [][2]int {
	n := len(freqs)
	if n < 2 || width <= 0 {
		return nil
	}
	df := freqs[1] - freqs[0]
	lo, hi := freqs[1], freqs[n-1]
	ranges := make([][2]int, width)
	if df <= 0 || hi <= lo {
		for x := range ranges {
			ranges[x] = [2]int{1, 1}
		}
		return ranges
	}

	binAt := func(f float64) int {
		return min(max(int(math.Round((f-freqs[0])/df)), 1), n-1)
	}
	ratio := hi / lo
	for x := range width {
		f0 := lo * math.Pow(ratio, float64(x)/float64(width))
		f1 := lo * math.Pow(ratio, float64(x+1)/float64(width))
		b0 := binAt(f0)
		b1 := max(b0, binAt(f1)-1)
		if x == width-1 {
			b1 = n - 1
		}
		ranges[x] = [2]int{b0, b1}
	}
	return ranges
}

// maxIn returns the largest value in the inclusive index range r.
func maxIn(values []float64, r [2]int) float64 {
	best := math.Inf(-1)
	for i := r[0]; i <= r[1] && i < len(values); i++ {
		best = max(best, values[i])
	}
	return best
}

// axisLine lays out three labels at the left edge, centre and right edge of
// a line width cells wide.
func axisLine(width int, left, mid, right string) string {
	line := []rune(strings.Repeat(" ", max(width, 0)))
	place := func(pos int, s string) {
		for i, r := range []rune(s) {
			if p := pos + i; p >= 0 && p < len(line) {
				line[p] = r
			}
		}
	}
	place(0, left)
	place(width/2-len([]rune(mid))/2, mid)
	place(width-len([]rune(right)), right)
	return axisStyle.Render(string(line))
}

func formatHz(f float64) string {
	if f >= 1000 {
		return fmt.Sprintf("%.1f kHz", f/1000)
	}
	return fmt.Sprintf("%.0f Hz", f)
}
