// SPDX-License-Identifier: MIT
/*
Package audio captures interleaved 16-bit PCM blocks from the system audio
backend:

  - Device resolution picks the default input device, or the loopback
    device that mirrors the default output device.
  - PortAudioSource reads fixed-size blocks through a blocking PortAudio
    stream; input overflow is tolerated.
  - Recorder writes captured blocks to a WAV file.

Initialize must be called before any device query and paired with Terminate.
*/
package audio

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrBackendUnavailable reports that the audio backend (or the host API
	// it requires) could not be initialized.
	ErrBackendUnavailable = errors.New("audio backend unavailable")

	// ErrDeviceNotFound reports that no device satisfies the requested mode.
	ErrDeviceNotFound = errors.New("audio device not found")

	// ErrSourceClosed is returned by ReadBlock after Close.
	ErrSourceClosed = errors.New("audio source closed")
)

// Mode selects what the source captures.
type Mode int

const (
	// ModeLoopback captures what the default output device is playing.
	ModeLoopback Mode = iota
	// ModeInput captures the default input device.
	ModeInput
)

func (m Mode) String() string {
	switch m {
	case ModeLoopback:
		return "Loopback"
	case ModeInput:
		return "Input"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// CaptureConfig describes the stream a Source produces.
type CaptureConfig struct {
	Mode          Mode
	SampleRate    float64 // Hz, from the resolved device.
	Channels      int     // From the resolved device.
	BlockDuration float64 // Seconds per block.
}

// BlockLength returns the number of frames per block,
// round(SampleRate * BlockDuration).
func (c CaptureConfig) BlockLength() int {
	return int(math.Round(c.SampleRate * c.BlockDuration))
}

// BlockSamples returns the number of interleaved samples per block.
func (c CaptureConfig) BlockSamples() int {
	return c.BlockLength() * c.Channels
}

// Validate checks that the configuration can open a stream.
func (c CaptureConfig) Validate() error {
	if c.Channels <= 0 {
		return fmt.Errorf("capture config: channel count must be positive, got %d", c.Channels)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("capture config: sample rate must be positive, got %f", c.SampleRate)
	}
	if c.BlockLength() < 2 {
		return fmt.Errorf("capture config: block of %.4fs at %.0f Hz holds fewer than 2 frames",
			c.BlockDuration, c.SampleRate)
	}
	return nil
}

// SampleBlock is one block of interleaved int16 samples, frame-major:
// (ch0, ch1, ..., chC-1, ch0, ...). Its length is BlockLength * Channels.
type SampleBlock []int16

// Source produces sample blocks. ReadBlock blocks until a full block is
// available and returns a block the caller owns. After Close, ReadBlock
// returns an error wrapping ErrSourceClosed.
type Source interface {
	ReadBlock() (SampleBlock, error)
	Format() CaptureConfig
	Close() error
}
