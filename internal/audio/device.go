// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// Device represents an audio device
type Device struct {
	ID                int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsLoopback        bool

	info *portaudio.DeviceInfo
}

// Name fragments that identify a capture device mirroring an output device:
// WASAPI loopback endpoints and PulseAudio/PipeWire monitor sources.
var loopbackMarkers = []string{"loopback", "monitor of"}

func isLoopbackName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range loopbackMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func newDevice(info *portaudio.DeviceInfo) Device {
	d := Device{
		ID:                info.Index,
		Name:              info.Name,
		MaxInputChannels:  info.MaxInputChannels,
		MaxOutputChannels: info.MaxOutputChannels,
		DefaultSampleRate: info.DefaultSampleRate,
		info:              info,
	}
	if info.HostApi != nil {
		d.HostAPI = info.HostApi.Name
	}
	d.IsLoopback = d.MaxInputChannels > 0 && isLoopbackName(d.Name)
	return d
}

// Type returns "Input", "Output" or "Input/Output".
func (d Device) Type() string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	default:
		return "None"
	}
}

// FindLoopbackDevice returns the first loopback-capable candidate whose name
// contains target.
func FindLoopbackDevice(candidates []Device, target string) (Device, bool) {
	if target == "" {
		return Device{}, false
	}
	for _, d := range candidates {
		if d.IsLoopback && strings.Contains(d.Name, target) {
			return d, true
		}
	}
	return Device{}, false
}

// Host is the device catalogue of one audio host API.
type Host interface {
	DefaultOutputDevice() (Device, error)
	DefaultInputDevice() (Device, error)
	Devices() ([]Device, error)
}

// ResolveDevice picks the capture device for mode.
//
// Loopback mode uses the default output device if it is loopback-capable,
// otherwise the first loopback device whose name contains the default output
// device's name. Input mode uses the default input device.
func ResolveDevice(host Host, mode Mode) (Device, error) {
	switch mode {
	case ModeLoopback:
		out, err := host.DefaultOutputDevice()
		if err != nil {
			return Device{}, fmt.Errorf("no default output device (%v): %w", err, ErrDeviceNotFound)
		}
		if out.IsLoopback {
			return out, nil
		}

		candidates, err := host.Devices()
		if err != nil {
			return Device{}, fmt.Errorf("failed to enumerate devices (%v): %w", err, ErrDeviceNotFound)
		}
		dev, ok := FindLoopbackDevice(candidates, out.Name)
		if !ok {
			return Device{}, fmt.Errorf("no loopback device for default output %q: %w", out.Name, ErrDeviceNotFound)
		}
		return dev, nil

	case ModeInput:
		in, err := host.DefaultInputDevice()
		if err != nil {
			return Device{}, fmt.Errorf("no default input device (%v): %w", err, ErrDeviceNotFound)
		}
		if in.MaxInputChannels <= 0 {
			return Device{}, fmt.Errorf("default input device %q has no input channels: %w", in.Name, ErrDeviceNotFound)
		}
		return in, nil

	default:
		return Device{}, fmt.Errorf("unsupported capture mode %v: %w", mode, ErrDeviceNotFound)
	}
}

// CaptureConfigFor derives the stream format from the resolved device.
func CaptureConfigFor(dev Device, mode Mode, blockDuration float64) CaptureConfig {
	return CaptureConfig{
		Mode:          mode,
		SampleRate:    dev.DefaultSampleRate,
		Channels:      dev.MaxInputChannels,
		BlockDuration: blockDuration,
	}
}
