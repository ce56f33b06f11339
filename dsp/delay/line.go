// Package delay provides a PCM16 delay line and the single-tap feedforward
// echo used as the reference for the reverberator's comb0 stage.
package delay

import "fmt"

// Line is a circular PCM16 delay line.
type Line struct {
	buffer   []int16
	writePos int
}

// New returns a delay line holding size samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	return &Line{buffer: make([]int16, size)}, nil
}

// Len returns the buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write stores one sample and advances the write position.
func (d *Line) Write(sample int16) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos == len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay writes ago; Read(1) is the most
// recent one. delay is taken modulo Len.
func (d *Line) Read(delay int) int16 {
	size := len(d.buffer)
	pos := ((d.writePos-delay)%size + size) % size
	return d.buffer[pos]
}

// Reset clears the line.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
