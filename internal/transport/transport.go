// SPDX-License-Identifier: MIT
// Package transport publishes spectrum frames to network clients.
package transport

import (
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/present"
)

// Transport defines a generic interface for sending processed data or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// SpectrumSource yields the latest spectrum frame newer than a given
// sequence number. *present.Mailbox[present.SpectrumFrame] implements it.
type SpectrumSource interface {
	Since(seq uint64) (present.SpectrumFrame, uint64, bool)
}

var _ SpectrumSource = (*present.Mailbox[present.SpectrumFrame])(nil)
