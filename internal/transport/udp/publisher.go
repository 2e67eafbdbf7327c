// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	applog "github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/log"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/present"
	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/transport"
)

// headerSize is the fixed part of a packet: sequence, timestamp, count.
const headerSize = 4 + 8 + 2

// MaxMagnitudes is the largest magnitude count a packet can carry.
const MaxMagnitudes = math.MaxUint16

// packetSender is the part of UDPSender the publisher needs.
type packetSender interface {
	Send(data []byte) error
	Close() error
}

// UDPPublisher packs spectrum frames into a binary format and sends them
// over UDP. It implements transport.Transport; a transport.Broadcaster
// decides when to send.
type UDPPublisher struct {
	sender packetSender

	mu          sync.Mutex // Serializes packet construction.
	sequenceNum uint32     // Monotonically increasing sequence number for packets.

	// Pre-allocated buffers to reduce allocations in the hot path.
	udpF32Buffer []float32     // Buffer to hold float32 magnitudes for binary packing.
	packetBuffer *bytes.Buffer // Reusable buffer for constructing the binary packet.
}

// NewUDPPublisher creates a publisher that sends through sender.
func NewUDPPublisher(sender *UDPSender) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	return newPublisher(sender), nil
}

func newPublisher(sender packetSender) *UDPPublisher {
	return &UDPPublisher{
		sender:       sender,
		packetBuffer: new(bytes.Buffer),
	}
}

/*
UDP Packet Structure (BigEndian) - See visual diagram below

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Magnitude Count   | uint16         | 2            | Number of floats (N)    |
| Magnitudes        | []float32      | N * 4        | Array of FFT magnitudes |
+-----------------------------------------------------------------------------+

Visual Layout:

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N * 4 Bytes ----->|
+-------------------+-----------------------+---------------+-------------------------+
|  Sequence Number  |       Timestamp       |   Magnitude   |       Magnitudes        |
|      (uint32)     |        (int64)        |     Count     |      (N * float32)      |
|                   |                       |     (uint16)  |                         |
+-------------------+-----------------------+---------------+-------------------------+
*/

// Send packs a present.SpectrumFrame (by value or pointer) and transmits it.
// Other payload types are rejected.
func (p *UDPPublisher) Send(data any) error {
	var frame present.SpectrumFrame
	switch v := data.(type) {
	case present.SpectrumFrame:
		frame = v
	case *present.SpectrumFrame:
		frame = *v
	default:
		return fmt.Errorf("UDPPublisher: unsupported payload %T", data)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	packet, err := p.buildPacket(frame.Magnitudes, time.Now().UnixNano())
	if err != nil {
		applog.Errorf("UDPPublisher: Error packing data into binary buffer: %v", err)
		return err
	}

	if err := p.sender.Send(packet); err != nil {
		return err
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packet))
	return nil
}

// buildPacket encodes magnitudes into the reusable packet buffer. The
// returned slice is valid until the next call.
func (p *UDPPublisher) buildPacket(magnitudes []float64, timestamp int64) ([]byte, error) {
	if len(magnitudes) > MaxMagnitudes {
		magnitudes = magnitudes[:MaxMagnitudes]
	}

	if cap(p.udpF32Buffer) < len(magnitudes) {
		p.udpF32Buffer = make([]float32, len(magnitudes))
	}
	p.udpF32Buffer = p.udpF32Buffer[:len(magnitudes)]
	for i, v := range magnitudes {
		p.udpF32Buffer[i] = float32(v)
	}

	p.sequenceNum++
	p.packetBuffer.Reset()

	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(len(p.udpF32Buffer)))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.udpF32Buffer)
	}
	if err != nil {
		return nil, err
	}
	return p.packetBuffer.Bytes(), nil
}

// Packet is a decoded UDP spectrum packet.
type Packet struct {
	Sequence   uint32
	Timestamp  int64
	Magnitudes []float32
}

// DecodePacket parses a packet produced by UDPPublisher.
func DecodePacket(b []byte) (Packet, error) {
	var pkt Packet
	if len(b) < headerSize {
		return pkt, fmt.Errorf("packet too short: %d bytes", len(b))
	}
	r := bytes.NewReader(b)

	var count uint16
	if err := binary.Read(r, binary.BigEndian, &pkt.Sequence); err != nil {
		return pkt, err
	}
	if err := binary.Read(r, binary.BigEndian, &pkt.Timestamp); err != nil {
		return pkt, err
	}
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return pkt, err
	}
	if want := headerSize + int(count)*4; len(b) != want {
		return pkt, fmt.Errorf("packet length %d does not match %d magnitudes (%d bytes)", len(b), count, want)
	}

	pkt.Magnitudes = make([]float32, count)
	if err := binary.Read(r, binary.BigEndian, pkt.Magnitudes); err != nil {
		return pkt, err
	}
	return pkt, nil
}

// Close closes the underlying sender.
func (p *UDPPublisher) Close() error {
	applog.Debugf("UDPPublisher: Close called")
	return p.sender.Close()
}

var _ transport.Transport = (*UDPPublisher)(nil)
