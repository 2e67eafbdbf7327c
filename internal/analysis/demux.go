// SPDX-License-Identifier: MIT
package analysis

import "fmt"

// ChannelSamples holds the samples of a single channel in capture order.
type ChannelSamples = []int16

// Deinterleave splits an interleaved block (ch0, ch1, ch0, ch1, ...) into one
// slice per channel: channel i holds the elements at i, i+C, i+2C, ...
//
// The block length must be a multiple of channels; anything else is a
// programming error and panics.
func Deinterleave(block []int16, channels int) []ChannelSamples {
	if channels <= 0 {
		panic(fmt.Sprintf("analysis: invalid channel count %d", channels))
	}
	if len(block)%channels != 0 {
		panic(fmt.Sprintf("analysis: block length %d is not a multiple of %d channels", len(block), channels))
	}

	frames := len(block) / channels
	out := make([]ChannelSamples, channels)
	for c := range out {
		samples := make([]int16, frames)
		for f := range samples {
			samples[f] = block[f*channels+c]
		}
		out[c] = samples
	}
	return out
}
