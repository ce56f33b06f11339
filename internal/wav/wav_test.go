package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-jcrev/internal/testutil"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	f := &File{SampleRate: 16000, Channels: 1, Samples: []int16{1, -2, 3}}
	if err := Write(&buf, f); err != nil {
		t.Fatal(err)
	}

	b := buf.Bytes()
	if len(b) != HeaderSize+6 {
		t.Fatalf("len = %d, want %d", len(b), HeaderSize+6)
	}

	le := binary.LittleEndian
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", le.Uint32(b[4:]), 36 + 6},
		{"fmt size", le.Uint32(b[16:]), 16},
		{"format", uint32(le.Uint16(b[20:])), 1},
		{"channels", uint32(le.Uint16(b[22:])), 1},
		{"sample rate", le.Uint32(b[24:]), 16000},
		{"byte rate", le.Uint32(b[28:]), 32000},
		{"block align", uint32(le.Uint16(b[32:])), 2},
		{"bits", uint32(le.Uint16(b[34:])), 16},
		{"data size", le.Uint32(b[40:]), 6},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	for off, tag := range map[int]string{0: "RIFF", 8: "WAVE", 12: "fmt ", 36: "data"} {
		if got := string(b[off : off+4]); got != tag {
			t.Errorf("tag at %d = %q, want %q", off, got, tag)
		}
	}
	if got := int16(le.Uint16(b[46:])); got != -2 {
		t.Errorf("second sample = %d, want -2", got)
	}
}

func TestReadWritten(t *testing.T) {
	samples := testutil.DeterministicNoise16(9, 32767, 1000)

	var buf bytes.Buffer
	if err := Write(&buf, &File{SampleRate: 16000, Channels: 1, Samples: samples}); err != nil {
		t.Fatal(err)
	}

	f, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if f.SampleRate != 16000 || f.Channels != 1 {
		t.Fatalf("format = %d Hz x %d, want 16000 x 1", f.SampleRate, f.Channels)
	}
	testutil.RequireSamplesEqual(t, f.Samples, samples)

	if got := f.Duration(); got != 62500*time.Microsecond {
		t.Fatalf("duration = %v, want 62.5ms", got)
	}
}

// chunk builds a RIFF sub-chunk, padding odd sizes.
func chunk(id string, body []byte) []byte {
	out := append([]byte(id), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	out = append(out, body...)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func fmtBody(format, channels uint16, rate uint32, bits uint16) []byte {
	b := make([]byte, 16)
	le := binary.LittleEndian
	le.PutUint16(b[0:], format)
	le.PutUint16(b[2:], channels)
	le.PutUint32(b[4:], rate)
	le.PutUint32(b[8:], rate*uint32(channels)*uint32(bits/8))
	le.PutUint16(b[12:], channels*bits/8)
	le.PutUint16(b[14:], bits)
	return b
}

func riff(chunks ...[]byte) []byte {
	var body []byte
	for _, c := range chunks {
		body = append(body, c...)
	}
	out := append([]byte("RIFF"), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(out[4:], uint32(4+len(body)))
	out = append(out, "WAVE"...)
	return append(out, body...)
}

func TestReadSkipsUnknownChunks(t *testing.T) {
	data := []byte{0x01, 0x00, 0xFF, 0xFF, 0x10, 0x00, 0xF0, 0xFF}
	stream := riff(
		chunk("LIST", []byte("odd")),
		chunk("fmt ", fmtBody(1, 2, 8000, 16)),
		chunk("fact", []byte{1, 2, 3, 4}),
		chunk("data", data),
	)

	f, err := Read(bytes.NewReader(stream))
	if err != nil {
		t.Fatal(err)
	}
	if f.Channels != 2 || f.SampleRate != 8000 {
		t.Fatalf("format = %d Hz x %d, want 8000 x 2", f.SampleRate, f.Channels)
	}
	testutil.RequireSamplesEqual(t, f.Samples, []int16{1, -1, 16, -16})
	testutil.RequireSamplesEqual(t, f.Mono(), []int16{0, 0})
	if f.Frames() != 2 {
		t.Fatalf("frames = %d, want 2", f.Frames())
	}
}

func TestReadExtensiblePCM(t *testing.T) {
	body := append(fmtBody(formatExtensible, 1, 16000, 16), make([]byte, 24)...)
	binary.LittleEndian.PutUint16(body[16:], 22)
	binary.LittleEndian.PutUint16(body[24:], formatPCM)

	f, err := Read(bytes.NewReader(riff(chunk("fmt ", body), chunk("data", []byte{2, 0}))))
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSamplesEqual(t, f.Samples, []int16{2})
}

func TestReadUnpatchedDataSize(t *testing.T) {
	stream := riff(chunk("fmt ", fmtBody(1, 1, 16000, 16)))
	stream = append(stream, "data"...)
	stream = append(stream, 0xFF, 0xFF, 0xFF, 0xFF, 5, 0, 6, 0, 7)

	f, err := Read(bytes.NewReader(stream))
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSamplesEqual(t, f.Samples, []int16{5, 6})
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		want   error
	}{
		{name: "empty", stream: nil, want: ErrNotWave},
		{name: "not riff", stream: []byte("RIFX\x00\x00\x00\x00WAVE"), want: ErrNotWave},
		{name: "float", stream: riff(chunk("fmt ", fmtBody(3, 1, 16000, 32))), want: ErrUnsupported},
		{name: "8 bit", stream: riff(chunk("fmt ", fmtBody(1, 1, 16000, 8))), want: ErrUnsupported},
		{name: "data first", stream: riff(chunk("data", []byte{0, 0})), want: ErrNoFormat},
		{name: "no data", stream: riff(chunk("fmt ", fmtBody(1, 1, 16000, 16))), want: ErrNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.stream))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteValidation(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &File{SampleRate: 16000, Channels: 0}); err == nil {
		t.Fatal("expected error for zero channels")
	}
	if err := Write(&buf, &File{SampleRate: 16000, Channels: 2, Samples: []int16{1}}); err == nil {
		t.Fatal("expected error for partial frame")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impulse.wav")
	in := &File{SampleRate: 16000, Channels: 1, Samples: testutil.Impulse16(64, 3, 16000)}

	if err := WriteFile(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSamplesEqual(t, out.Samples, in.Samples)

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEncodeDecode(t *testing.T) {
	b := Encode([]int16{1, -1, 0x1234})
	want := []byte{1, 0, 0xFF, 0xFF, 0x34, 0x12}
	if !bytes.Equal(b, want) {
		t.Fatalf("Encode = %x, want %x", b, want)
	}

	got := Decode(make([]int16, 0, 8), append(b, 9))
	testutil.RequireSamplesEqual(t, got, []int16{1, -1, 0x1234})
}
