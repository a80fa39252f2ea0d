// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	applog "audioviz/internal/log"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Bin Count         | uint16         | 2            | Number of floats (N)    |
| Bins              | []float32      | N * 4        | Visualization vector    |
+-----------------------------------------------------------------------------+
*/

const headerSize = 4 + 8 + 2

// Publisher packs visualization vectors into the binary packet format above
// and sends them through a Sender. Frames arriving faster than the
// configured interval are dropped; a UDP consumer wants the freshest frame,
// not a backlog.
type Publisher struct {
	sender   *Sender
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time
	seq      uint32

	// Reusable buffers keep packet construction off the heap.
	f32Buffer    []float32
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a Publisher around an existing Sender.
// An interval <= 0 defaults to 16ms (~60Hz).
func NewPublisher(interval time.Duration, sender *Sender) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("Publisher: UDP sender cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("Publisher: invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("Publisher: initializing (interval: %s)", interval)
	return &Publisher{
		sender:       sender,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Send packs and transmits one frame, subject to rate limiting.
// Implements transport.Transport.
func (p *Publisher) Send(bins []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if now.Sub(p.lastSend) < p.interval {
		return nil // Drop the frame, keep the cadence.
	}
	p.lastSend = now
	p.seq++

	if cap(p.f32Buffer) < len(bins) {
		p.f32Buffer = make([]float32, len(bins))
	}
	p.f32Buffer = p.f32Buffer[:len(bins)]
	for i, v := range bins {
		p.f32Buffer[i] = float32(v)
	}

	p.packetBuffer.Reset()
	err := binary.Write(p.packetBuffer, binary.BigEndian, p.seq)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, now.UnixNano())
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(len(p.f32Buffer)))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.f32Buffer)
	}
	if err != nil {
		return fmt.Errorf("Publisher: error packing frame: %w", err)
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		return err
	}
	applog.Debugf("Publisher: sent packet %d (%d bytes)", p.seq, p.packetBuffer.Len())
	return nil
}

// Close closes the underlying sender.
func (p *Publisher) Close() error {
	return p.sender.Close()
}

// DecodePacket parses a packet built by Send back into its parts. Consumers
// and tests use it to validate the wire layout.
func DecodePacket(data []byte) (seq uint32, timestamp int64, bins []float64, err error) {
	if len(data) < headerSize {
		return 0, 0, nil, fmt.Errorf("packet too short: %d bytes", len(data))
	}
	seq = binary.BigEndian.Uint32(data[0:4])
	timestamp = int64(binary.BigEndian.Uint64(data[4:12]))
	count := int(binary.BigEndian.Uint16(data[12:14]))
	if len(data) != headerSize+count*4 {
		return 0, 0, nil, fmt.Errorf("packet length %d does not match bin count %d", len(data), count)
	}
	bins = make([]float64, count)
	for i := range bins {
		u := binary.BigEndian.Uint32(data[headerSize+i*4:])
		bins[i] = float64(math.Float32frombits(u))
	}
	return seq, timestamp, bins, nil
}
