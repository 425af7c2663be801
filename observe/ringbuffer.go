// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package observe

import "sync"

// DefaultRingBufferSize is the default history capacity in bytes.
// 64 KB holds the banner plus several hundred 8x8 frames — far more
// than a reconnecting client needs to repaint its terminal.
const DefaultRingBufferSize = 64 * 1024

// RingBuffer is a fixed-size circular buffer that stores the raw
// transmit stream with sequence number tracking. It preserves escape
// sequences so history replay repaints a terminal exactly as the live
// stream would have.
//
// The buffer tracks a monotonically increasing byte offset so readers
// can request "everything since offset N" after a reconnect. New
// writes overwrite the oldest data when the buffer is full.
//
// All methods are safe for concurrent use.
type RingBuffer struct {
	mutex    sync.Mutex
	data     []byte
	capacity int
	// writePosition is the next position to write within the circular
	// buffer (0 to capacity-1).
	writePosition int
	// totalWritten is the total number of bytes ever written. The
	// current contents span from (totalWritten - stored) to
	// totalWritten, where stored = min(totalWritten, capacity).
	totalWritten uint64
}

// NewRingBuffer creates a ring buffer with the given capacity in
// bytes. Use DefaultRingBufferSize for the standard 64 KB buffer.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		data:     make([]byte, capacity),
		capacity: capacity,
	}
}

// Write appends bytes, advancing the sequence offset and overwriting
// the oldest data if the buffer is full.
func (ring *RingBuffer) Write(data []byte) {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()

	for offset := 0; offset < len(data); {
		available := ring.capacity - ring.writePosition
		copyLength := len(data) - offset
		if copyLength > available {
			copyLength = available
		}
		copy(ring.data[ring.writePosition:ring.writePosition+copyLength], data[offset:offset+copyLength])
		ring.writePosition = (ring.writePosition + copyLength) % ring.capacity
		offset += copyLength
	}
	ring.totalWritten += uint64(len(data))
}

// WriteByte appends a single byte. The server's drain loop moves one
// byte per port handshake, so this is the hot path.
func (ring *RingBuffer) WriteByte(b byte) {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()

	ring.data[ring.writePosition] = b
	ring.writePosition = (ring.writePosition + 1) % ring.capacity
	ring.totalWritten++
}

// CurrentOffset returns the sequence offset of the next byte to be
// written.
func (ring *RingBuffer) CurrentOffset() uint64 {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()
	return ring.totalWritten
}

// ReadFrom returns a copy of all bytes written since the given
// sequence offset. If the offset is older than the oldest retained
// byte, returns everything currently retained (the caller missed some
// data). Returns nil if offset is at or beyond the write position.
func (ring *RingBuffer) ReadFrom(offset uint64) []byte {
	ring.mutex.Lock()
	defer ring.mutex.Unlock()

	if offset >= ring.totalWritten {
		return nil
	}

	storedLength := ring.totalWritten
	if storedLength > uint64(ring.capacity) {
		storedLength = uint64(ring.capacity)
	}
	oldestOffset := ring.totalWritten - storedLength

	readOffset := offset
	if readOffset < oldestOffset {
		readOffset = oldestOffset
	}

	bytesToRead := int(ring.totalWritten - readOffset)
	result := make([]byte, bytesToRead)

	// Position within the circular buffer of readOffset.
	start := (ring.writePosition + ring.capacity - bytesToRead%ring.capacity) % ring.capacity
	firstChunk := ring.capacity - start
	if firstChunk > bytesToRead {
		firstChunk = bytesToRead
	}
	copy(result, ring.data[start:start+firstChunk])
	copy(result[firstChunk:], ring.data[:bytesToRead-firstChunk])
	return result
}
