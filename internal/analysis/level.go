// SPDX-License-Identifier: MIT
package analysis

import "math"

// RMS returns the root-mean-square amplitude of samples in int16 units.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		v := float64(s)
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// Peak returns the largest absolute sample value in samples.
func Peak(samples []int16) int {
	var p int
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > p {
			p = v
		}
	}
	return p
}

// TimeAxis returns n evenly spaced sample times, starting at 0 and ending at
// duration, like a linspace over the block.
func TimeAxis(n int, duration float64) []float64 {
	axis := make([]float64, n)
	if n == 1 {
		return axis
	}
	step := duration / float64(n-1)
	for i := range axis {
		axis[i] = float64(i) * step
	}
	return axis
}
