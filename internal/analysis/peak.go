// SPDX-License-Identifier: MIT
package analysis

import "sync"

// PeakHold tracks an element-wise running maximum over successive spectra,
// with optional exponential decay. It is safe for concurrent use: the capture
// worker calls Update while the UI may call Reset at any time.
type PeakHold struct {
	mu    sync.Mutex
	peak  []float64
	decay float64 // Applied after each Update; 1 disables decay.
}

// NewPeakHold creates a tracker. A decay outside (0, 1] disables decay.
func NewPeakHold(decay float64) *PeakHold {
	if decay <= 0 || decay > 1 {
		decay = 1
	}
	return &PeakHold{decay: decay}
}

// Update folds magnitudes into the held peaks (peak[i] = max(peak[i], m[i]))
// and returns a snapshot of the result. When decay is configured it is
// applied to the held state after the snapshot is taken, so the returned
// values never fall below the magnitudes of this cycle.
//
// If the length of magnitudes differs from the held state, the tracker is
// re-initialized to zeros at the new length first.
func (p *PeakHold) Update(magnitudes []float64) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.peak) != len(magnitudes) {
		p.peak = make([]float64, len(magnitudes))
	}

	for i, m := range magnitudes {
		if m > p.peak[i] {
			p.peak[i] = m
		}
	}

	snapshot := make([]float64, len(p.peak))
	copy(snapshot, p.peak)

	if p.decay < 1 {
		p.decayLocked(p.decay)
	}
	return snapshot
}

// Decay multiplies every held peak by factor. Factors outside (0, 1] are
// ignored.
func (p *PeakHold) Decay(factor float64) {
	if factor <= 0 || factor > 1 {
		return
	}
	p.mu.Lock()
	p.decayLocked(factor)
	p.mu.Unlock()
}

func (p *PeakHold) decayLocked(factor float64) {
	for i := range p.peak {
		p.peak[i] *= factor
	}
}

// Reset sets every held peak to zero. The next Update alone determines the
// peak values.
func (p *PeakHold) Reset() {
	p.mu.Lock()
	clear(p.peak)
	p.mu.Unlock()
}

// held returns a copy of the held peaks.
func (p *PeakHold) held() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]float64, len(p.peak))
	copy(out, p.peak)
	return out
}

// DecayFactor returns the configured per-update decay factor.
func (p *PeakHold) DecayFactor() float64 {
	return p.decay
}
