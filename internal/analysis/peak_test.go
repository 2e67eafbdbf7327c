// SPDX-License-Identifier: MIT
package analysis

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
)

func TestPeakHoldMonotoneEnvelope(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	p := NewPeakHold(1)

	const bins = 64
	var history [][]float64
	for range 50 {
		spec := make([]float64, bins)
		for i := range spec {
			spec[i] = rng.Float64() * 100
		}
		history = append(history, spec)

		peak := p.Update(spec)
		for j, past := range history {
			for i := range peak {
				if peak[i] < past[i] {
					t.Fatalf("after %d updates peak[%d] = %v < spectrum_%d[%d] = %v",
						len(history), i, peak[i], j, i, past[i])
				}
			}
		}
	}
}

func TestPeakHoldReset(t *testing.T) {
	p := NewPeakHold(1)
	p.Update([]float64{5, 10, 15})
	p.Reset()

	if got := p.held(); !slices.Equal(got, []float64{0, 0, 0}) {
		t.Errorf("Peaks() after Reset = %v, want zeros", got)
	}

	next := []float64{1, 2, 3}
	if got := p.Update(next); !slices.Equal(got, next) {
		t.Errorf("Update() after Reset = %v, want %v", got, next)
	}
}

func TestPeakHoldLengthChangeReinitializes(t *testing.T) {
	p := NewPeakHold(1)
	p.Update([]float64{9, 9, 9, 9})

	next := []float64{1, 2}
	if got := p.Update(next); !slices.Equal(got, next) {
		t.Errorf("Update() with new length = %v, want %v", got, next)
	}
}

func TestPeakHoldDecayNeverBelowCurrent(t *testing.T) {
	const decay = 0.5
	p := NewPeakHold(decay)

	seq := [][]float64{
		{100, 0, 50},
		{10, 20, 10},
		{0, 0, 0},
		{30, 5, 60},
	}

	var held []float64
	for n, spec := range seq {
		got := p.Update(spec)
		for i := range got {
			if got[i] < spec[i] {
				t.Errorf("update %d: peak[%d] = %v below current %v", n, i, got[i], spec[i])
			}
		}
		held = got
	}

	// 100 decays through three cycles to 12.5 and is then overtaken by 30.
	if held[0] != 30 {
		t.Errorf("final peak[0] = %v, want 30", held[0])
	}
	// 50 -> 25 -> 12.5 -> max(6.25, 60) = 60.
	if held[2] != 60 {
		t.Errorf("final peak[2] = %v, want 60", held[2])
	}
	if got := p.held(); got[2] != 30 {
		t.Errorf("stored peak[2] after decay = %v, want 30", got[2])
	}
}

func TestPeakHoldExplicitDecay(t *testing.T) {
	p := NewPeakHold(1)
	p.Update([]float64{8, 4})

	p.Decay(0.5)
	if got := p.held(); !slices.Equal(got, []float64{4, 2}) {
		t.Errorf("Peaks() after Decay(0.5) = %v, want [4 2]", got)
	}

	for _, bad := range []float64{0, -1, 1.5} {
		p.Decay(bad)
	}
	if got := p.held(); !slices.Equal(got, []float64{4, 2}) {
		t.Errorf("Peaks() after invalid decays = %v, want [4 2]", got)
	}
}

func TestNewPeakHoldClampsDecay(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.95, 0.95},
		{1, 1},
		{0, 1},
		{-0.2, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := NewPeakHold(tt.in).DecayFactor(); got != tt.want {
			t.Errorf("NewPeakHold(%v).DecayFactor() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPeakHoldConcurrentReset(t *testing.T) {
	p := NewPeakHold(0.9)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 2000 {
			n := 32 + (i%2)*32
			spec := make([]float64, n)
			for j := range spec {
				spec[j] = float64(j)
			}
			if got := p.Update(spec); len(got) != n {
				t.Errorf("Update() returned length %d, want %d", len(got), n)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 2000 {
			p.Reset()
			if got := p.held(); len(got) != 0 && len(got) != 32 && len(got) != 64 {
				t.Errorf("Peaks() returned torn length %d", len(got))
				return
			}
		}
	}()
	wg.Wait()
}
