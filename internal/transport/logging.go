// SPDX-License-Identifier: MIT
package transport

import (
	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/present"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each message at debug level.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data.
func (lt *LoggingTransport) Send(data any) error {
	switch v := data.(type) {
	case present.SpectrumFrame:
		applog.Debugf("LOG_TRANSPORT: Spectrum (%d bins, peak at %.1f Hz)", len(v.Magnitudes), v.PeakFrequency())
	default:
		applog.Debugf("LOG_TRANSPORT: Received (%T)", data)
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LOG_TRANSPORT: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
