// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/analysis"
	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
)

// ErrInvalidConfiguration is returned for any structurally invalid setting,
// including an unrecognized source mode. It is always fatal at startup.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Recognized values of UseSpeakerOrMic.
const (
	SourceSpeaker = "Speaker"
	SourceMic     = "Mic"
)

// Core configuration constants that define the defaults for the capture
// pipeline and its presentation sinks.
const (
	DefaultSource         = SourceSpeaker
	DefaultBlockTime      = 0.0213 // ~1024 frames at 48 kHz
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultLogFile        = "swi.log"
	DefaultWindowFunction = "Rectangular"
	DefaultDecayCoeff     = 0.95
	DefaultBarCount       = 32

	DefaultWebSocketAddress  = "127.0.0.1:8080"
	DefaultUDPTargetAddress  = "127.0.0.1:9090"
	DefaultUDPSendIntervalMs = 33 // ~30Hz
	DefaultRecordingFile     = "capture.wav"
)

// Config is the resolved, validated configuration consumed by the pipeline.
// Field names of the first block match the keys of the configuration file.
type Config struct {
	UseSpeakerOrMic               string             `yaml:"UseSpeakerOrMic" json:"UseSpeakerOrMic"`
	InputBlockTimeInSeconds       float64            `yaml:"InputBlockTimeInSeconds" json:"InputBlockTimeInSeconds"`
	TimeDomainScopeEnabled        bool               `yaml:"TimeDomainScopeEnabled" json:"TimeDomainScopeEnabled"`
	FrequencyDomainScopeEnabled   bool               `yaml:"FrequencyDomainScopeEnabled" json:"FrequencyDomainScopeEnabled"`
	FFTSpectrumVisualizerEnabled  bool               `yaml:"FFTSpectrumVisualizerEnabled" json:"FFTSpectrumVisualizerEnabled"`
	TimeDomainScopeSettings       ScopeSettings      `yaml:"TimeDomainScopeSettings" json:"TimeDomainScopeSettings"`
	FrequencyDomainScopeSettings  ScopeSettings      `yaml:"FrequencyDomainScopeSettings" json:"FrequencyDomainScopeSettings"`
	FFTSpectrumVisualizerSettings VisualizerSettings `yaml:"FFTSpectrumVisualizerSettings" json:"FFTSpectrumVisualizerSettings"`

	LogLevel       string          `yaml:"LogLevel" json:"LogLevel"`             // debug, info, warn, error.
	LogFormat      string          `yaml:"LogFormat" json:"LogFormat"`           // console or json.
	LogFile        string          `yaml:"LogFile" json:"LogFile"`               // Log destination while the terminal UI is running.
	Headless       bool            `yaml:"Headless" json:"Headless"`             // Run without the terminal UI (network sinks only).
	WindowFunction string          `yaml:"WindowFunction" json:"WindowFunction"` // FFT window; Rectangular applies none.
	Transport      TransportConfig `yaml:"Transport" json:"Transport"`
	Recording      RecordingConfig `yaml:"Recording" json:"Recording"`
}

// ScopeSettings carries display range hints passed through to a view.
type ScopeSettings struct {
	YMinLimit float64 `yaml:"yMinLimit" json:"yMinLimit"`
	YMaxLimit float64 `yaml:"yMaxLimit" json:"yMaxLimit"`
}

// VisualizerSettings configures the bar-graph spectrum view.
type VisualizerSettings struct {
	YMinLimit  float64 `yaml:"yMinLimit" json:"yMinLimit"`
	YMaxLimit  float64 `yaml:"yMaxLimit" json:"yMaxLimit"`
	DecayCoeff float64 `yaml:"decayCoeff" json:"decayCoeff"` // Peak decay factor in (0, 1]; 1 disables decay.
	BarCount   int     `yaml:"barCount" json:"barCount"`     // Number of log-spaced bars.
}

// TransportConfig holds settings for publishing frames over the network.
type TransportConfig struct {
	WebSocketEnabled  bool   `yaml:"WebSocketEnabled" json:"WebSocketEnabled"`
	WebSocketAddress  string `yaml:"WebSocketAddress" json:"WebSocketAddress"`
	UDPEnabled        bool   `yaml:"UDPEnabled" json:"UDPEnabled"`
	UDPTargetAddress  string `yaml:"UDPTargetAddress" json:"UDPTargetAddress"`
	UDPSendIntervalMs int    `yaml:"UDPSendIntervalMs" json:"UDPSendIntervalMs"`
}

// RecordingConfig holds settings for writing captured blocks to a WAV file.
type RecordingConfig struct {
	Enabled    bool   `yaml:"Enabled" json:"Enabled"`
	OutputFile string `yaml:"OutputFile" json:"OutputFile"`
}

// NewConfig creates a new Config instance with default values. This is the
// base configuration before a file and environment overrides are applied.
func NewConfig() *Config {
	return &Config{
		UseSpeakerOrMic:              DefaultSource,
		InputBlockTimeInSeconds:      DefaultBlockTime,
		TimeDomainScopeEnabled:       true,
		FrequencyDomainScopeEnabled:  true,
		FFTSpectrumVisualizerEnabled: false,
		TimeDomainScopeSettings: ScopeSettings{
			YMinLimit: -32768,
			YMaxLimit: 32767,
		},
		FrequencyDomainScopeSettings: ScopeSettings{
			YMinLimit: 0,
			YMaxLimit: 2000,
		},
		FFTSpectrumVisualizerSettings: VisualizerSettings{
			YMinLimit:  0,
			YMaxLimit:  2000,
			DecayCoeff: DefaultDecayCoeff,
			BarCount:   DefaultBarCount,
		},
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		LogFile:        DefaultLogFile,
		WindowFunction: DefaultWindowFunction,
		Transport: TransportConfig{
			WebSocketAddress:  DefaultWebSocketAddress,
			UDPTargetAddress:  DefaultUDPTargetAddress,
			UDPSendIntervalMs: DefaultUDPSendIntervalMs,
		},
		Recording: RecordingConfig{
			OutputFile: DefaultRecordingFile,
		},
	}
}

// UseLoopback reports whether the configuration selects loopback capture of
// the default output device rather than the default input device.
func (c *Config) UseLoopback() bool {
	return c.UseSpeakerOrMic == SourceSpeaker
}

// AnySinkEnabled reports whether at least one presentation view is enabled.
func (c *Config) AnySinkEnabled() bool {
	return c.TimeDomainScopeEnabled || c.FrequencyDomainScopeEnabled || c.FFTSpectrumVisualizerEnabled
}

// SpectrumEnabled reports whether any consumer needs the spectral analyzer.
func (c *Config) SpectrumEnabled() bool {
	return c.FrequencyDomainScopeEnabled || c.FFTSpectrumVisualizerEnabled ||
		c.Transport.WebSocketEnabled || c.Transport.UDPEnabled
}

// Validate checks the configuration. Every failure wraps
// ErrInvalidConfiguration.
func (c *Config) Validate() error {
	switch c.UseSpeakerOrMic {
	case SourceSpeaker, SourceMic:
	default:
		return fmt.Errorf("%w: UseSpeakerOrMic %q (use %q or %q)",
			ErrInvalidConfiguration, c.UseSpeakerOrMic, SourceSpeaker, SourceMic)
	}

	if c.InputBlockTimeInSeconds <= 0 {
		return fmt.Errorf("%w: InputBlockTimeInSeconds must be positive, got %v",
			ErrInvalidConfiguration, c.InputBlockTimeInSeconds)
	}

	ranges := []struct {
		name     string
		min, max float64
	}{
		{"TimeDomainScopeSettings", c.TimeDomainScopeSettings.YMinLimit, c.TimeDomainScopeSettings.YMaxLimit},
		{"FrequencyDomainScopeSettings", c.FrequencyDomainScopeSettings.YMinLimit, c.FrequencyDomainScopeSettings.YMaxLimit},
		{"FFTSpectrumVisualizerSettings", c.FFTSpectrumVisualizerSettings.YMinLimit, c.FFTSpectrumVisualizerSettings.YMaxLimit},
	}
	for _, r := range ranges {
		if r.min >= r.max {
			return fmt.Errorf("%w: %s.yMinLimit (%v) must be below yMaxLimit (%v)",
				ErrInvalidConfiguration, r.name, r.min, r.max)
		}
	}

	decay := c.FFTSpectrumVisualizerSettings.DecayCoeff
	if decay <= 0 || decay > 1 {
		return fmt.Errorf("%w: FFTSpectrumVisualizerSettings.decayCoeff must be in (0, 1], got %v",
			ErrInvalidConfiguration, decay)
	}
	if c.FFTSpectrumVisualizerSettings.BarCount <= 0 {
		return fmt.Errorf("%w: FFTSpectrumVisualizerSettings.barCount must be positive, got %d",
			ErrInvalidConfiguration, c.FFTSpectrumVisualizerSettings.BarCount)
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown LogLevel %q", ErrInvalidConfiguration, c.LogLevel)
	}
	if f := strings.ToLower(c.LogFormat); f != "console" && f != "json" {
		return fmt.Errorf("%w: LogFormat must be console or json, got %q", ErrInvalidConfiguration, c.LogFormat)
	}
	if _, err := analysis.ParseWindowFunc(c.WindowFunction); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	// Transport Validation
	if c.Transport.WebSocketEnabled && !strings.Contains(c.Transport.WebSocketAddress, ":") {
		return fmt.Errorf("%w: Transport.WebSocketAddress %q appears invalid (missing port?)",
			ErrInvalidConfiguration, c.Transport.WebSocketAddress)
	}
	if c.Transport.UDPEnabled {
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("%w: Transport.UDPTargetAddress %q appears invalid (missing port?)",
				ErrInvalidConfiguration, c.Transport.UDPTargetAddress)
		}
		if c.Transport.UDPSendIntervalMs <= 0 {
			return fmt.Errorf("%w: Transport.UDPSendIntervalMs must be positive when UDP is enabled",
				ErrInvalidConfiguration)
		}
	}

	if c.Recording.Enabled && c.Recording.OutputFile == "" {
		return fmt.Errorf("%w: Recording.OutputFile must be set when recording is enabled", ErrInvalidConfiguration)
	}

	if c.Headless && !c.Transport.WebSocketEnabled && !c.Transport.UDPEnabled && !c.Recording.Enabled {
		return fmt.Errorf("%w: Headless mode needs a network transport or recording enabled", ErrInvalidConfiguration)
	}

	return nil
}
