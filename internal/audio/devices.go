// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"runtime"

	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"

	"github.com/gordonklaus/portaudio"
)

// Seams over the PortAudio library, replaced in tests.
var (
	paLibInitialize = portaudio.Initialize
	paLibTerminate  = portaudio.Terminate
	paHostApiFunc   = defaultHostApi
)

// defaultHostApi selects WASAPI on Windows, which is the only host API that
// exposes loopback endpoints there, and the backend default elsewhere.
func defaultHostApi() (*portaudio.HostApiInfo, error) {
	if runtime.GOOS == "windows" {
		return portaudio.HostApi(portaudio.WASAPI)
	}
	return portaudio.DefaultHostApi()
}

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with a Terminate() call.
func Initialize() error {
	if err := paLibInitialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio (%v): %w", err, ErrBackendUnavailable)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
func Terminate() error {
	if err := paLibTerminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// PortAudioHost implements Host over one PortAudio host API.
type PortAudioHost struct {
	api *portaudio.HostApiInfo
}

// NewHost returns the host API used for capture. A missing host API (for
// example WASAPI on a system without it) is reported as
// ErrBackendUnavailable.
func NewHost() (*PortAudioHost, error) {
	api, err := paHostApiFunc()
	if err != nil {
		return nil, fmt.Errorf("host API not available (%v): %w", err, ErrBackendUnavailable)
	}
	applog.Infof("Audio: Using host API %q (%d devices)", api.Name, len(api.Devices))
	return &PortAudioHost{api: api}, nil
}

// Name returns the host API name.
func (h *PortAudioHost) Name() string {
	return h.api.Name
}

// DefaultOutputDevice implements Host.
func (h *PortAudioHost) DefaultOutputDevice() (Device, error) {
	if h.api.DefaultOutputDevice == nil {
		return Device{}, fmt.Errorf("host API %q has no default output device", h.api.Name)
	}
	return newDevice(h.api.DefaultOutputDevice), nil
}

// DefaultInputDevice implements Host.
func (h *PortAudioHost) DefaultInputDevice() (Device, error) {
	if h.api.DefaultInputDevice == nil {
		return Device{}, fmt.Errorf("host API %q has no default input device", h.api.Name)
	}
	return newDevice(h.api.DefaultInputDevice), nil
}

// Devices implements Host.
func (h *PortAudioHost) Devices() ([]Device, error) {
	devices := make([]Device, len(h.api.Devices))
	for i, info := range h.api.Devices {
		devices[i] = newDevice(info)
	}
	return devices, nil
}

var _ Host = (*PortAudioHost)(nil)

// HostDevices returns all devices of the capture host API.
func HostDevices() ([]Device, error) {
	host, err := NewHost()
	if err != nil {
		return nil, err
	}
	return host.Devices()
}

// ListDevices prints information about all available audio devices.
// For each device, it shows:
// - Device ID and name
// - Device type (Input/Output/Input+Output)
// - Channel count
// - Default sample rate
// - Whether it can capture loopback audio
func ListDevices(w io.Writer, devices []Device) {
	fmt.Fprintf(w, "\nAvailable Audio Devices\n\n")

	for _, device := range devices {
		fmt.Fprintf(w, "[%d] %s (%s)\n", device.ID, device.Name, device.Type())
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		if device.HostAPI != "" {
			fmt.Fprintf(w, "    Host API: %s\n", device.HostAPI)
		}
		if device.IsLoopback {
			fmt.Fprintf(w, "    Loopback capture: yes\n")
		}
		fmt.Fprintln(w)
	}
}
