// SPDX-License-Identifier: MIT
/*
Package present turns analysis results into frames for the views.

The capture worker pushes into each sink; every sink keeps only the latest
frame in a Mailbox, which the UI (or a network publisher) polls at its own
rate. A slow consumer therefore skips frames instead of building a backlog.
*/
package present

import "sync"

// Mailbox holds the most recent value put into it. Put never blocks and
// overwrites any value that has not been read yet.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	seq   uint64 // Incremented on every Put; 0 means empty.
}

// Put replaces the held value.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.value = v
	m.seq++
	m.mu.Unlock()
}

// Latest returns the held value and its sequence number. ok is false if
// nothing has been put yet.
func (m *Mailbox[T]) Latest() (v T, seq uint64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.seq, m.seq > 0
}

// Since returns the held value only if it is newer than seq.
func (m *Mailbox[T]) Since(seq uint64) (v T, newSeq uint64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq <= seq {
		return v, m.seq, false
	}
	return m.value, m.seq, true
}
