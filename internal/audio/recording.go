// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync"

	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes captured blocks to a 16-bit PCM WAV file.
type Recorder struct {
	mu         sync.Mutex
	outputFile *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *audio.IntBuffer // Reusable buffer for format conversion
	frames     int
	path       string
}

// StartRecording creates filename and prepares a WAV encoder for the capture
// format.
func StartRecording(filename string, config CaptureConfig) (*Recorder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording file: %w", err)
	}

	rate := int(config.SampleRate)
	r := &Recorder{
		path:       filename,
		outputFile: file,
		wavEncoder: wav.NewEncoder(file, rate, 16, config.Channels, 1),
		sampleBuf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: config.Channels,
				SampleRate:  rate,
			},
			Data:           make([]int, config.BlockSamples()),
			SourceBitDepth: 16,
		},
	}

	applog.Infof("Recorder: Writing %d ch @ %d Hz to %s", config.Channels, rate, filename)
	return r, nil
}

// Write appends one interleaved block.
func (r *Recorder) Write(block SampleBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wavEncoder == nil {
		return fmt.Errorf("recorder is closed")
	}

	if cap(r.sampleBuf.Data) < len(block) {
		r.sampleBuf.Data = make([]int, len(block))
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:len(block)]
	for i, sample := range block {
		r.sampleBuf.Data[i] = int(sample)
	}

	if err := r.wavEncoder.Write(r.sampleBuf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	r.frames += len(block) / r.sampleBuf.Format.NumChannels
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Path returns the file being written.
func (r *Recorder) Path() string {
	return r.path
}

// Close finalizes the WAV header and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wavEncoder != nil {
		if err := r.wavEncoder.Close(); err != nil {
			return err
		}
		r.wavEncoder = nil
	}

	if r.outputFile != nil {
		if err := r.outputFile.Close(); err != nil {
			return err
		}
		applog.Infof("Recorder: Closed %s (%d frames)", r.outputFile.Name(), r.frames)
		r.outputFile = nil
	}

	return nil
}
