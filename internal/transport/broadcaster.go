// SPDX-License-Identifier: MIT
package transport

import (
	"sync"
	"time"

	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
)

// Broadcaster periodically forwards the newest spectrum frame to a set of
// transports. Frames produced between two ticks are skipped; a tick with no
// new frame sends nothing.
type Broadcaster struct {
	source     SpectrumSource
	transports []Transport
	interval   time.Duration

	mu       sync.Mutex
	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
	lastSeq  uint64
}

// NewBroadcaster creates a broadcaster. If interval is not positive it
// defaults to 33ms (~30Hz).
func NewBroadcaster(source SpectrumSource, interval time.Duration, transports ...Transport) *Broadcaster {
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("Broadcaster: Invalid interval provided, defaulting to %s", interval)
	}
	return &Broadcaster{
		source:     source,
		transports: transports,
		interval:   interval,
	}
}

// Start launches the forwarding goroutine. Subsequent calls are no-ops while
// it is running.
func (b *Broadcaster) Start() {
	b.mu.Lock()
	if b.ticker != nil {
		b.mu.Unlock()
		return
	}
	b.ticker = time.NewTicker(b.interval)
	b.doneChan = make(chan struct{})
	ticker, doneChan := b.ticker, b.doneChan
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ticker.C:
				b.forward()
			case <-doneChan:
				return
			}
		}
	}()
}

// forward sends the newest frame, if any, to every transport.
func (b *Broadcaster) forward() {
	frame, seq, ok := b.source.Since(b.lastSeq)
	if !ok {
		return
	}
	b.lastSeq = seq
	for _, t := range b.transports {
		if err := t.Send(frame); err != nil {
			applog.Debugf("Broadcaster: Send failed: %v", err)
		}
	}
}

// Stop halts forwarding and waits for the goroutine to exit.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	if b.ticker == nil {
		b.mu.Unlock()
		return
	}
	close(b.doneChan)
	b.ticker.Stop()
	b.ticker = nil
	b.mu.Unlock()

	b.wg.Wait()
}

// Close stops forwarding and closes every transport.
func (b *Broadcaster) Close() error {
	b.Stop()
	var firstErr error
	for _, t := range b.transports {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
