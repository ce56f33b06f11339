package audio

import "encoding/binary"

// samplesToBytes encodes src into b as little-endian PCM16 and returns the
// number of samples written.
func samplesToBytes(b []byte, src []int16) int {
	n := len(b) / 2
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(src[i]))
	}
	return n
}
