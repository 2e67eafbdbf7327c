// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"sync"
)

// MockTransport implements the transport.Transport interface for testing.
type MockTransport struct {
	mu       sync.Mutex
	LastData any
	Sends    int
	Closed   bool
}

// Send stores the data for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if magnitudes, ok := data.([]float64); ok {
		cp := make([]float64, len(magnitudes))
		copy(cp, magnitudes)
		data = cp
	}
	m.LastData = data
	m.Sends++
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	return nil
}

// Snapshot returns the last sent value and the number of sends.
func (m *MockTransport) Snapshot() (any, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastData, m.Sends
}

// GenerateComplexWave returns a 440 Hz tone with two harmonics, scaled to 90%
// of the int16 range.
func GenerateComplexWave(size int, sampleRate float64) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = int16(signal * math.MaxInt16 * 0.9)
	}
	return buffer
}

// GenerateSineWave returns a sine of the given frequency and peak amplitude
// (in int16 units).
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int16(math.Round(math.Sin(2*math.Pi*frequency*t) * amplitude))
	}
	return buffer
}

// GenerateConstant returns size samples of value.
func GenerateConstant(size int, value int16) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		buffer[i] = value
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude within
// [startBin, endBin], clamped to the slice bounds.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
