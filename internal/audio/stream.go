// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource reads fixed-size blocks from a blocking PortAudio input
// stream opened in 16-bit integer format.
type PortAudioSource struct {
	config CaptureConfig
	device Device

	stream *portaudio.Stream
	buffer []int16 // Filled in place by stream.Read.

	readMu    sync.Mutex // Held for the duration of a read; Close waits on it before releasing the stream.
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// OpenSource opens and starts an input stream on dev with the given format.
func OpenSource(dev Device, config CaptureConfig) (*PortAudioSource, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if dev.info == nil {
		return nil, fmt.Errorf("device %q was not obtained from the audio backend: %w", dev.Name, ErrDeviceNotFound)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev.info,
			Channels: config.Channels,
			Latency:  dev.info.DefaultHighInputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		SampleRate:      config.SampleRate,
		FramesPerBuffer: config.BlockLength(),
	}

	buffer := make([]int16, config.BlockSamples())
	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start input stream on %q: %w", dev.Name, err)
	}

	applog.Infof("Audio: Capturing from [%d] %s (%v, %d ch @ %.0f Hz, %d frames/block)",
		dev.ID, dev.Name, config.Mode, config.Channels, config.SampleRate, config.BlockLength())

	return &PortAudioSource{
		config: config,
		device: dev,
		stream: stream,
		buffer: buffer,
	}, nil
}

// ReadBlock blocks until a full block has been captured. Input overflow is
// not an error; the samples that were read are returned as usual.
func (s *PortAudioSource) ReadBlock() (SampleBlock, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	if s.closed.Load() {
		return nil, ErrSourceClosed
	}

	err := s.stream.Read()
	if s.closed.Load() {
		return nil, fmt.Errorf("read interrupted: %w", ErrSourceClosed)
	}
	if err != nil {
		if !errors.Is(err, portaudio.InputOverflowed) {
			return nil, err
		}
		applog.Debugf("Audio: Input overflowed on %q", s.device.Name)
	}

	block := make(SampleBlock, len(s.buffer))
	copy(block, s.buffer)
	return block, nil
}

// Format implements Source.
func (s *PortAudioSource) Format() CaptureConfig {
	return s.config
}

// Device returns the device the stream was opened on.
func (s *PortAudioSource) Device() Device {
	return s.device
}

// Close aborts the stream, which unblocks an in-flight ReadBlock, then
// releases it. It is safe to call more than once.
func (s *PortAudioSource) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if err := s.stream.Abort(); err != nil {
			applog.Warnf("Audio: Abort stream: %v", err)
		}

		s.readMu.Lock()
		defer s.readMu.Unlock()
		if err := s.stream.Close(); err != nil {
			s.closeErr = fmt.Errorf("failed to close input stream: %w", err)
		}
		applog.Infof("Audio: Input stream on %q closed", s.device.Name)
	})
	return s.closeErr
}

var _ Source = (*PortAudioSource)(nil)
