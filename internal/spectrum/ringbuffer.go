package spectrum

import (
	"encoding/binary"
	"sync"
)

// RingBuffer is a thread-safe circular buffer of interleaved s16le PCM.
type RingBuffer struct {
	buf  []byte
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

// NewRingBuffer creates a ring buffer with the given capacity in bytes.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		buf:  make([]byte, size),
		size: size,
	}
}

// Write appends data to the ring buffer, overwriting oldest data if full.
func (rb *RingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(p) > rb.size {
		p = p[len(p)-rb.size:]
	}
	for _, b := range p {
		rb.buf[rb.w] = b
		rb.w = (rb.w + 1) % rb.size
	}
	rb.len += len(p)
	if rb.len > rb.size {
		rb.len = rb.size
	}
}

// Read returns up to n most recent bytes from the buffer.
func (rb *RingBuffer) Read(n int) []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if n > rb.len {
		n = rb.len
	}
	if n == 0 {
		return nil
	}

	out := make([]byte, n)
	start := (rb.w - n + rb.size) % rb.size
	for i := range n {
		out[i] = rb.buf[(start+i)%rb.size]
	}
	return out
}

// Mono fills dst with the most recent len(dst) frames mixed down to one
// channel in [-1, 1]. It returns false until the buffer holds that many
// frames.
func (rb *RingBuffer) Mono(dst []float64, channels int) bool {
	if channels < 1 {
		channels = 1
	}
	frameSize := channels * 2
	raw := rb.Read(len(dst) * frameSize)
	if len(raw) < len(dst)*frameSize {
		return false
	}
	for i := range dst {
		sum := 0
		for ch := range channels {
			off := i*frameSize + ch*2
			sum += int(int16(binary.LittleEndian.Uint16(raw[off:])))
		}
		dst[i] = float64(sum) / float64(channels) / 32768.0
	}
	return true
}

// Clear resets the buffer.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.len = 0
}
