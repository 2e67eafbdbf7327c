// SPDX-License-Identifier: MIT
/*
Package engine runs the capture worker: it reads blocks from an audio
source, splits them into channels, analyzes channel 0 and hands the results
to the presentation sinks.

Thread Safety:
  - Run owns the source reads and the analyzer; only one Run may be active.
  - Pause, Resume and TogglePause may be called from any goroutine.
  - Sinks are called from the Run goroutine and must not block.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/analysis"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/audio"
	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
)

// ErrStreamRead reports a fatal read failure on the audio stream.
var ErrStreamRead = errors.New("audio stream read failed")

// WaveformSink receives the per-channel samples of every processed block.
type WaveformSink interface {
	PublishWaveform(channels []analysis.ChannelSamples)
}

// SpectrumSink receives the spectrum of channel 0 of every processed block.
type SpectrumSink interface {
	PublishSpectrum(spec analysis.Spectrum)
}

// BlockWriter receives every captured block, paused or not.
type BlockWriter interface {
	Write(block audio.SampleBlock) error
}

// Stats counts blocks seen by the worker.
type Stats struct {
	BlocksRead      uint64
	BlocksProcessed uint64
	BlocksSkipped   uint64 // Read while paused.
}

// Engine is the capture worker.
type Engine struct {
	source   audio.Source
	analyzer analysis.SpectrumAnalyzer

	waveformSinks []WaveformSink
	spectrumSinks []SpectrumSink
	writer        BlockWriter

	paused atomic.Bool

	blocksRead      atomic.Uint64
	blocksProcessed atomic.Uint64
	blocksSkipped   atomic.Uint64

	done    chan struct{}
	errMu   sync.Mutex
	err     error
	running atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWaveformSink adds a time-domain sink.
func WithWaveformSink(s WaveformSink) Option {
	return func(e *Engine) { e.waveformSinks = append(e.waveformSinks, s) }
}

// WithSpectrumSink adds a frequency-domain sink.
func WithSpectrumSink(s SpectrumSink) Option {
	return func(e *Engine) { e.spectrumSinks = append(e.spectrumSinks, s) }
}

// WithBlockWriter records every captured block.
func WithBlockWriter(w BlockWriter) Option {
	return func(e *Engine) { e.writer = w }
}

// New creates a worker reading from source. analyzer may be nil when no
// spectrum sink is configured.
func New(source audio.Source, analyzer analysis.SpectrumAnalyzer, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("engine: source cannot be nil")
	}
	e := &Engine{
		source:   source,
		analyzer: analyzer,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.spectrumSinks) > 0 && e.analyzer == nil {
		return nil, fmt.Errorf("engine: spectrum sinks configured without an analyzer")
	}
	return e, nil
}

// Run reads and processes blocks until the source is closed, ctx is
// cancelled, or a read fails. Closing the source (directly or through ctx)
// ends the loop with a nil error; any other read failure is returned wrapped
// in ErrStreamRead.
func (e *Engine) Run(ctx context.Context) (err error) {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("engine: Run called twice")
	}
	defer func() {
		e.errMu.Lock()
		e.err = err
		e.errMu.Unlock()
		close(e.done)
	}()

	stop := context.AfterFunc(ctx, func() {
		if cerr := e.source.Close(); cerr != nil {
			applog.Warnf("Engine: Closing source on cancel: %v", cerr)
		}
	})
	defer stop()

	format := e.source.Format()
	applog.Infof("Engine: Worker started (%d ch, %d frames/block)", format.Channels, format.BlockLength())

	for {
		block, rerr := e.source.ReadBlock()
		if rerr != nil {
			if errors.Is(rerr, audio.ErrSourceClosed) || ctx.Err() != nil {
				applog.Infof("Engine: Worker stopped (%d blocks read)", e.blocksRead.Load())
				return nil
			}
			applog.Errorf("Engine: Read failed: %v", rerr)
			return fmt.Errorf("%w: %w", ErrStreamRead, rerr)
		}
		e.blocksRead.Add(1)

		if e.writer != nil {
			if werr := e.writer.Write(block); werr != nil {
				applog.Errorf("Engine: Recording disabled after write error: %v", werr)
				e.writer = nil
			}
		}

		if e.paused.Load() {
			e.blocksSkipped.Add(1)
			continue
		}

		e.process(block, format.Channels)
	}
}

// process splits block into channels and feeds the sinks.
func (e *Engine) process(block audio.SampleBlock, channelCount int) {
	channels := analysis.Deinterleave(block, channelCount)

	for _, s := range e.waveformSinks {
		s.PublishWaveform(channels)
	}

	if len(e.spectrumSinks) > 0 {
		spec := e.analyzer.Analyze(channels[0])
		for _, s := range e.spectrumSinks {
			s.PublishSpectrum(spec)
		}
	}

	e.blocksProcessed.Add(1)
}

// Pause stops analysis and emission. The worker keeps draining the source so
// that no stale blocks are emitted on resume.
func (e *Engine) Pause() {
	if !e.paused.Swap(true) {
		applog.Infof("Engine: Paused")
	}
}

// Resume restarts analysis and emission with the next captured block.
func (e *Engine) Resume() {
	if e.paused.Swap(false) {
		applog.Infof("Engine: Resumed")
	}
}

// TogglePause flips the pause state and returns the new state.
func (e *Engine) TogglePause() bool {
	for {
		old := e.paused.Load()
		if e.paused.CompareAndSwap(old, !old) {
			applog.Infof("Engine: Paused=%v", !old)
			return !old
		}
	}
}

// Paused reports whether the worker is paused.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}

// Stats returns the block counters.
func (e *Engine) Stats() Stats {
	return Stats{
		BlocksRead:      e.blocksRead.Load(),
		BlocksProcessed: e.blocksProcessed.Load(),
		BlocksSkipped:   e.blocksSkipped.Load(),
	}
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Err returns the error Run ended with, or nil while it is still running.
func (e *Engine) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

// Close closes the source, which ends Run.
func (e *Engine) Close() error {
	return e.source.Close()
}
