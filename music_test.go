package wavstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/cwbudde/wavstream/pcm"
)

// readAll drains a playing Music, failing the test on read errors. The cap
// guards against runaway loops.
func readAll(t *testing.T, m *Music, max int) []byte {
	t.Helper()

	var out bytes.Buffer
	buf := make([]byte, 512)

	for out.Len() <= max {
		n, err := m.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return out.Bytes()
			}

			t.Fatalf("Read failed: %v", err)
		}
	}

	t.Fatalf("no EOF after %d bytes", out.Len())

	return nil
}

func u8WAV(data []byte, extra ...testChunk) []byte {
	chunks := []testChunk{{"fmt ", fmtChunkData(wavFormatPCM, 1, 8000, 8)}}
	chunks = append(chunks, extra...)
	chunks = append(chunks, testChunk{"data", data})

	return buildWAV(chunks...)
}

func TestPlayOnceDeliversDataExactly(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}

	m, err := New(bytes.NewReader(u8WAV(data)), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	got := readAll(t, m, 1000)
	if !bytes.Equal(got, data) {
		t.Fatalf("got %d bytes %x, want the source data", len(got), got)
	}

	// EOF is sticky once the play count is exhausted.
	if _, err := m.Read(make([]byte, 16)); !errors.Is(err, io.EOF) {
		t.Fatalf("post-EOF Read err=%v, want io.EOF", err)
	}
}

func TestPlayZeroIsImmediateEOF(t *testing.T) {
	m, err := New(bytes.NewReader(u8WAV(make([]byte, 50))), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if got := readAll(t, m, 100); len(got) != 0 {
		t.Fatalf("got %d bytes, want none", len(got))
	}
}

func TestPlayTwiceDoublesOutput(t *testing.T) {
	data := make([]byte, 60)
	for i := range data {
		data[i] = byte(i + 1)
	}

	m, err := New(bytes.NewReader(u8WAV(data)), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(2); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	got := readAll(t, m, 1000)
	want := append(append([]byte(nil), data...), data...)

	if !bytes.Equal(got, want) {
		t.Fatalf("got %d bytes, want the data twice (%d)", len(got), len(want))
	}
}

func TestLoopPlaysRangeExactly(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}

	// Frames [10, 30) loop three times: smpl stores the inclusive end 29
	// and a play count of 3.
	file := u8WAV(data, testChunk{"smpl", smplChunkData(
		testLoop{loopType: 0, start: 10, end: 29, playCount: 3},
	)})

	m, err := New(bytes.NewReader(file), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	var want bytes.Buffer
	want.Write(data[:10])
	for i := 0; i < 3; i++ {
		want.Write(data[10:30])
	}
	want.Write(data[30:])

	got := readAll(t, m, 1000)
	if !bytes.Equal(got, want.Bytes()) {
		t.Fatalf("got %d bytes, want %d:\n got %x\nwant %x", len(got), want.Len(), got, want.Bytes())
	}
}

func TestInfiniteLoopNeverEnds(t *testing.T) {
	file := u8WAV(make([]byte, 100), testChunk{"smpl", smplChunkData(
		testLoop{loopType: 0, start: 20, end: 39, playCount: 0},
	)})

	m, err := New(bytes.NewReader(file), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// Far more than the file holds; the loop keeps producing.
	buf := make([]byte, 256)
	total := 0

	for total < 2000 {
		n, err := m.Read(buf)
		if err != nil {
			t.Fatalf("Read failed at %d bytes: %v", total, err)
		}

		total += n
	}
}

func TestLoopReplaysAfterWholeFileRestart(t *testing.T) {
	// Play(2) reactivates exhausted loops for the second traversal.
	data := make([]byte, 50)
	for i := range data {
		data[i] = byte(i)
	}

	file := u8WAV(data, testChunk{"smpl", smplChunkData(
		testLoop{loopType: 0, start: 0, end: 9, playCount: 2},
	)})

	m, err := New(bytes.NewReader(file), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(2); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	var pass bytes.Buffer
	pass.Write(data[:10])
	pass.Write(data[:10])
	pass.Write(data[10:])

	want := append(append([]byte(nil), pass.Bytes()...), pass.Bytes()...)

	got := readAll(t, m, 1000)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %d bytes, want %d", len(got), len(want))
	}
}

func TestMuLawStreamDoublesBytes(t *testing.T) {
	data := []byte{0x00, 0x7F, 0xFF, 0x80, 0x10, 0x90}
	file := buildWAV(
		testChunk{"fmt ", fmtChunkData(wavFormatMuLaw, 1, 8000, 8)},
		testChunk{"data", data},
	)

	m, err := New(bytes.NewReader(file), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := m.Format().Format; got != pcm.S16LE {
		t.Fatalf("decoded format=%v, want S16LE", got)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	got := readAll(t, m, 100)
	if len(got) != len(data)*2 {
		t.Fatalf("got %d bytes, want %d", len(got), len(data)*2)
	}

	for i, b := range data {
		want := decodeMuLawSample(b)
		sample := int16(binary.LittleEndian.Uint16(got[i*2:]))

		if sample != want {
			t.Errorf("sample %d: got %d, want %d", i, sample, want)
		}
	}
}

func TestVolumeAttenuatesOutput(t *testing.T) {
	data := bytes.Repeat([]byte{200}, 20)

	m, err := New(bytes.NewReader(u8WAV(data)), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	m.SetVolume(MaxVolume / 2)
	if m.Volume() != MaxVolume/2 {
		t.Fatalf("Volume()=%d", m.Volume())
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	got := readAll(t, m, 100)

	// U8 200 is +72 from center; half gain brings it to +36.
	for i, b := range got {
		if b != 164 {
			t.Fatalf("byte %d: got %d, want 164", i, b)
		}
	}

	if len(got) != len(data) {
		t.Fatalf("got %d bytes, want %d", len(got), len(data))
	}
}

func TestReadKeepsFramesWhole(t *testing.T) {
	// Mu-law decodes to 2-byte S16LE frames; an odd-size read buffer must
	// not split a sample, or volume scaling would decode misaligned tails.
	data := []byte{0x00, 0x7F, 0xFF, 0x80, 0x10, 0x90, 0x20, 0xA0}
	file := buildWAV(
		testChunk{"fmt ", fmtChunkData(wavFormatMuLaw, 1, 8000, 8)},
		testChunk{"data", data},
	)

	m, err := New(bytes.NewReader(file), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	m.SetVolume(MaxVolume / 2)

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	var out bytes.Buffer
	buf := make([]byte, 5)

	for {
		n, err := m.Read(buf)
		if n%2 != 0 {
			t.Fatalf("Read returned %d bytes, not frame aligned", n)
		}

		out.Write(buf[:n])

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			t.Fatalf("Read failed: %v", err)
		}
	}

	got := out.Bytes()
	if len(got) != len(data)*2 {
		t.Fatalf("got %d bytes, want %d", len(got), len(data)*2)
	}

	for i, b := range data {
		want := decodeMuLawSample(b) / 2
		sample := int16(binary.LittleEndian.Uint16(got[i*2:]))

		if sample != want {
			t.Errorf("sample %d: got %d, want %d", i, sample, want)
		}
	}
}

func TestReadRejectsSubFrameBuffer(t *testing.T) {
	file := buildWAV(
		testChunk{"fmt ", fmtChunkData(wavFormatMuLaw, 1, 8000, 8)},
		testChunk{"data", []byte{0x00, 0xFF}},
	)

	m, err := New(bytes.NewReader(file), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if _, err := m.Read(make([]byte, 1)); !errors.Is(err, io.ErrShortBuffer) {
		t.Fatalf("err=%v, want io.ErrShortBuffer", err)
	}

	if n, err := m.Read(nil); n != 0 || err != nil {
		t.Fatalf("Read(nil)=%d, %v", n, err)
	}
}

func TestVolumeClamps(t *testing.T) {
	m, err := New(bytes.NewReader(u8WAV(make([]byte, 10))), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	m.SetVolume(-5)
	if m.Volume() != 0 {
		t.Errorf("Volume()=%d, want 0", m.Volume())
	}

	m.SetVolume(1000)
	if m.Volume() != MaxVolume {
		t.Errorf("Volume()=%d, want %d", m.Volume(), MaxVolume)
	}
}

func TestSeekTellLength(t *testing.T) {
	file := buildWAV(
		testChunk{"fmt ", fmtChunkData(wavFormatPCM, 1, 100, 8)},
		testChunk{"data", make([]byte, 100)},
	)

	m, err := New(bytes.NewReader(file), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := m.Length(); got != 1.0 {
		t.Fatalf("Length()=%v, want 1.0", got)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if err := m.Seek(0.25); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	pos, err := m.Tell()
	if err != nil {
		t.Fatalf("Tell failed: %v", err)
	}

	if pos < 0.24 || pos > 0.26 {
		t.Errorf("Tell()=%v, want ~0.25", pos)
	}

	// Only the remaining three quarters are left to read.
	got := readAll(t, m, 1000)
	if len(got) != 75 {
		t.Errorf("got %d bytes after seek, want 75", len(got))
	}
}

func TestSeekOutOfRange(t *testing.T) {
	file := buildWAV(
		testChunk{"fmt ", fmtChunkData(wavFormatPCM, 1, 100, 8)},
		testChunk{"data", make([]byte, 100)},
	)

	m, err := New(bytes.NewReader(file), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if err := m.Seek(2.0); !errors.Is(err, ErrSeekOutOfRange) {
		t.Fatalf("Seek(2.0) err=%v, want ErrSeekOutOfRange", err)
	}

	if err := m.Seek(-1.0); !errors.Is(err, ErrSeekOutOfRange) {
		t.Fatalf("Seek(-1.0) err=%v, want ErrSeekOutOfRange", err)
	}

	// The failed seeks left the cursor alone.
	pos, err := m.Tell()
	if err != nil {
		t.Fatalf("Tell failed: %v", err)
	}

	if pos != 0 {
		t.Errorf("Tell()=%v after failed seeks, want 0", pos)
	}
}

func TestOutputConversionToS16(t *testing.T) {
	data := []byte{128, 255, 0, 192}

	m, err := New(bytes.NewReader(u8WAV(data)), pcm.Spec{Format: pcm.S16LE}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Channels and rate inherit from the source.
	want := pcm.Spec{Format: pcm.S16LE, Channels: 1, Rate: 8000}
	if m.OutputFormat() != want {
		t.Fatalf("OutputFormat()=%+v, want %+v", m.OutputFormat(), want)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	got := readAll(t, m, 100)
	if len(got) != len(data)*2 {
		t.Fatalf("got %d bytes, want %d", len(got), len(data)*2)
	}

	wantSamples := []int16{0, 32512, -32768, 16384}
	for i, w := range wantSamples {
		sample := int16(binary.LittleEndian.Uint16(got[i*2:]))
		if sample != w {
			t.Errorf("sample %d: got %d, want %d", i, sample, w)
		}
	}
}

func TestCloseReleasesSource(t *testing.T) {
	src := &closableReader{Reader: bytes.NewReader(u8WAV(make([]byte, 10)))}

	m, err := New(src, pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if src.closed {
		t.Error("source closed without ownership")
	}

	src = &closableReader{Reader: bytes.NewReader(u8WAV(make([]byte, 10)))}

	m, err = New(src, pcm.Spec{}, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !src.closed {
		t.Error("owned source not closed")
	}
}

func TestCloseReleasesConversionStage(t *testing.T) {
	m, err := New(bytes.NewReader(u8WAV(make([]byte, 50))), pcm.Spec{}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Play(1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// A short read leaves decoded bytes queued in the conversion stage.
	if _, err := m.Read(make([]byte, 8)); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if m.stream != nil {
		t.Fatal("conversion stage retained after Close")
	}
}

type closableReader struct {
	*bytes.Reader
	closed bool
}

func (c *closableReader) Close() error {
	c.closed = true
	return nil
}
