// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/Mehmet-Emre-Dogan/SoundWaveformInspect/internal/present"
)

type captureSender struct {
	packets [][]byte
	err     error
	closed  bool
}

func (c *captureSender) Send(data []byte) error {
	c.packets = append(c.packets, bytes.Clone(data))
	return c.err
}

func (c *captureSender) Close() error {
	c.closed = true
	return nil
}

func TestPublisherPacketLayout(t *testing.T) {
	sender := &captureSender{}
	p := newPublisher(sender)

	frame := present.SpectrumFrame{Magnitudes: []float64{0, 1.5, 1000}}
	before := time.Now().UnixNano()
	if err := p.Send(frame); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := p.Send(&frame); err != nil {
		t.Fatalf("Send(pointer) error = %v", err)
	}

	if len(sender.packets) != 2 {
		t.Fatalf("sent %d packets, want 2", len(sender.packets))
	}
	if got := len(sender.packets[0]); got != headerSize+3*4 {
		t.Errorf("packet size = %d, want %d", got, headerSize+3*4)
	}

	for i, raw := range sender.packets {
		pkt, err := DecodePacket(raw)
		if err != nil {
			t.Fatalf("DecodePacket() error = %v", err)
		}
		if pkt.Sequence != uint32(i+1) {
			t.Errorf("packet %d sequence = %d, want %d", i, pkt.Sequence, i+1)
		}
		if pkt.Timestamp < before {
			t.Errorf("packet %d timestamp %d before send time %d", i, pkt.Timestamp, before)
		}
		want := []float32{0, 1.5, 1000}
		for k := range want {
			if pkt.Magnitudes[k] != want[k] {
				t.Errorf("packet %d magnitude %d = %v, want %v", i, k, pkt.Magnitudes[k], want[k])
			}
		}
	}
}

func TestPublisherRejectsOtherPayloads(t *testing.T) {
	p := newPublisher(&captureSender{})
	if err := p.Send([]float64{1, 2}); err == nil {
		t.Error("Send([]float64) expected error")
	}
}

func TestPublisherSendError(t *testing.T) {
	sender := &captureSender{err: fmt.Errorf("network down")}
	p := newPublisher(sender)
	if err := p.Send(present.SpectrumFrame{Magnitudes: []float64{1}}); err == nil {
		t.Error("Send() expected sender error")
	}
	if err := p.Close(); err != nil || !sender.closed {
		t.Errorf("Close() = %v, closed = %v", err, sender.closed)
	}
}

func TestDecodePacketErrors(t *testing.T) {
	p := newPublisher(&captureSender{})
	good, err := p.buildPacket([]float64{1, 2}, 42)
	if err != nil {
		t.Fatalf("buildPacket() error = %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"Short Header", good[:headerSize-1]},
		{"Truncated Payload", good[:len(good)-1]},
		{"Trailing Bytes", append(bytes.Clone(good), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePacket(tt.data); err == nil {
				t.Error("DecodePacket() expected error")
			}
		})
	}
}

func TestUDPRoundTrip(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}
	defer listener.Close()

	sender, err := NewUDPSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender() error = %v", err)
	}
	p, err := NewUDPPublisher(sender)
	if err != nil {
		t.Fatalf("NewUDPPublisher() error = %v", err)
	}
	defer p.Close()

	if err := p.Send(present.SpectrumFrame{Magnitudes: []float64{3, 2, 1}}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	buf := make([]byte, 2048)
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP() error = %v", err)
	}
	pkt, err := DecodePacket(buf[:n])
	if err != nil {
		t.Fatalf("DecodePacket() error = %v", err)
	}
	if len(pkt.Magnitudes) != 3 || pkt.Magnitudes[0] != 3 {
		t.Errorf("received %+v", pkt)
	}
}

func TestUDPSenderClose(t *testing.T) {
	sender, err := NewUDPSender("127.0.0.1:9")
	if err != nil {
		t.Fatalf("NewUDPSender() error = %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := sender.Send([]byte{1}); err == nil {
		t.Error("Send() after Close expected error")
	}
	if _, err := NewUDPPublisher(nil); err == nil {
		t.Error("NewUDPPublisher(nil) expected error")
	}
	if _, err := NewUDPSender("not an address"); err == nil {
		t.Error("NewUDPSender() with a bad address expected error")
	}
}
