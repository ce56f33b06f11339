// Package wav reads and writes 16-bit PCM RIFF/WAVE files.
package wav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Errors returned by Read.
var (
	ErrNotWave     = errors.New("wav: not a RIFF/WAVE stream")
	ErrUnsupported = errors.New("wav: only 16-bit integer PCM is supported")
	ErrNoFormat    = errors.New("wav: data chunk before fmt chunk")
	ErrNoData      = errors.New("wav: missing data chunk")
)

const (
	// HeaderSize is the length of the canonical header written by Write.
	HeaderSize = 44

	formatPCM        = 1
	formatExtensible = 0xFFFE
	bitsPerSample    = 16
	bytesPerSample   = bitsPerSample / 8

	// unknownSize marks a data chunk whose length was never patched.
	unknownSize = 0xFFFFFFFF
)

// File is a decoded PCM16 stream. Samples are interleaved by channel.
type File struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Frames returns the number of sample frames.
func (f *File) Frames() int {
	if f.Channels <= 0 {
		return 0
	}
	return len(f.Samples) / f.Channels
}

// Duration returns the playing time.
func (f *File) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.Frames()) * time.Second / time.Duration(f.SampleRate)
}

// Mono returns the samples as a single channel. Multi-channel input is
// averaged, rounding toward zero.
func (f *File) Mono() []int16 {
	if f.Channels <= 1 {
		return f.Samples
	}

	out := make([]int16, f.Frames())
	for i := range out {
		var sum int32
		for c := 0; c < f.Channels; c++ {
			sum += int32(f.Samples[i*f.Channels+c])
		}
		out[i] = int16(sum / int32(f.Channels))
	}
	return out
}

type fmtChunk struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Read decodes a WAVE stream. Chunks other than fmt and data are skipped.
func Read(r io.Reader) (*File, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWave, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, ErrNotWave
	}

	var (
		format *fmtChunk
		hdr    [8]byte
	)

	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoData
			}
			return nil, fmt.Errorf("wav: chunk header: %w", err)
		}

		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			f, err := readFormat(r, size)
			if err != nil {
				return nil, err
			}
			format = f

		case "data":
			if format == nil {
				return nil, ErrNoFormat
			}
			samples, err := readData(r, size)
			if err != nil {
				return nil, err
			}
			return &File{
				SampleRate: int(format.SampleRate),
				Channels:   int(format.Channels),
				Samples:    samples,
			}, nil

		default:
			if err := skip(r, int64(size)+int64(size&1)); err != nil {
				return nil, fmt.Errorf("wav: skip %q chunk: %w", id, err)
			}
		}
	}
}

func readFormat(r io.Reader, size uint32) (*fmtChunk, error) {
	if size < 16 {
		return nil, fmt.Errorf("wav: fmt chunk too short: %d", size)
	}

	var f fmtChunk
	if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
		return nil, fmt.Errorf("wav: fmt chunk: %w", err)
	}

	rest := int64(size) - 16 + int64(size&1)
	tag := f.AudioFormat
	if tag == formatExtensible && size >= 40 {
		// cbSize(2) validBits(2) channelMask(4), then the sub-format GUID
		// whose first two bytes carry the real format tag.
		var ext [10]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, fmt.Errorf("wav: fmt extension: %w", err)
		}
		tag = binary.LittleEndian.Uint16(ext[8:10])
		rest -= int64(len(ext))
	}
	if err := skip(r, rest); err != nil {
		return nil, fmt.Errorf("wav: fmt chunk: %w", err)
	}

	if tag != formatPCM || f.BitsPerSample != bitsPerSample {
		return nil, fmt.Errorf("%w: format %#x, %d bits", ErrUnsupported, tag, f.BitsPerSample)
	}
	if f.Channels == 0 || f.SampleRate == 0 {
		return nil, fmt.Errorf("wav: invalid fmt chunk: %d channels at %d Hz", f.Channels, f.SampleRate)
	}

	return &f, nil
}

// readData reads a data chunk. A size that runs past the end of the stream
// (unpatched streaming headers) yields every complete sample available.
func readData(r io.Reader, size uint32) ([]int16, error) {
	src := r
	if size != unknownSize {
		src = io.LimitReader(r, int64(size))
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("wav: data chunk: %w", err)
	}

	return Decode(nil, raw), nil
}

func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		_, err := s.Seek(n, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

// Write encodes f with a canonical 44-byte header.
func Write(w io.Writer, f *File) error {
	if f.Channels <= 0 || f.SampleRate <= 0 {
		return fmt.Errorf("wav: invalid format: %d channels at %d Hz", f.Channels, f.SampleRate)
	}
	if len(f.Samples)%f.Channels != 0 {
		return fmt.Errorf("wav: %d samples do not fill %d channels", len(f.Samples), f.Channels)
	}

	dataSize := len(f.Samples) * bytesPerSample
	if int64(dataSize) > int64(unknownSize)-HeaderSize {
		return fmt.Errorf("wav: data too large: %d bytes", dataSize)
	}

	blockAlign := f.Channels * bytesPerSample

	var hdr [HeaderSize]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(HeaderSize-8+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], formatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(f.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("wav: header: %w", err)
	}

	var b [2]byte
	for _, s := range f.Samples {
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		if _, err := bw.Write(b[:]); err != nil {
			return fmt.Errorf("wav: data: %w", err)
		}
	}

	return bw.Flush()
}

// ReadFile opens and decodes path.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return Read(bufio.NewReader(fh))
}

// WriteFile encodes f to path, replacing any existing file.
func WriteFile(path string, f *File) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); err == nil {
			err = cerr
		}
	}()

	return Write(fh, f)
}

// Encode returns the little-endian bytes of samples, the layout players
// expect for signed 16-bit PCM.
func Encode(samples []int16) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// Decode is the inverse of Encode. A trailing odd byte is ignored.
func Decode(dst []int16, b []byte) []int16 {
	n := len(b) / bytesPerSample
	if cap(dst) < n {
		dst = make([]int16, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return dst
}
