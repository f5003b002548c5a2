package wavstream

import (
	"encoding/binary"
	"fmt"

	"github.com/go-audio/riff"
)

// FmtChunk stores the parsed WAV fmt chunk, including extensible metadata.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	Extensible     *FmtExtensible
}

// FmtExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FmtExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
}

// EffectiveFormatTag resolves the format tag, looking through the extensible
// SubFormat GUID when the outer tag is WAVE_FORMAT_EXTENSIBLE.
func (f *FmtChunk) EffectiveFormatTag() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == wavFormatExtensible && f.Extensible != nil {
		return binary.LittleEndian.Uint16(f.Extensible.SubFormat[:2])
	}

	return f.FormatTag
}

// decodeFmtChunk reads a fmt chunk payload field by field. Every field is
// little-endian per the RIFF spec.
func decodeFmtChunk(chunk *riff.Chunk) (*FmtChunk, error) {
	fmtChunk := &FmtChunk{}

	fields := []struct {
		name string
		dst  any
	}{
		{"format tag", &fmtChunk.FormatTag},
		{"channels", &fmtChunk.NumChannels},
		{"sample rate", &fmtChunk.SampleRate},
		{"avg bytes/sec", &fmtChunk.AvgBytesPerSec},
		{"block align", &fmtChunk.BlockAlign},
		{"bit depth", &fmtChunk.BitsPerSample},
	}

	for _, f := range fields {
		if err := chunk.ReadLE(f.dst); err != nil {
			return nil, fmt.Errorf("%w: fmt %s: %v", ErrTruncatedRead, f.name, err)
		}
	}

	if fmtChunk.FormatTag != wavFormatExtensible || chunk.Size <= 16 {
		chunk.Drain()
		return fmtChunk, nil
	}

	var extraSize uint16
	if err := chunk.ReadLE(&extraSize); err != nil {
		return nil, fmt.Errorf("%w: fmt extension size: %v", ErrTruncatedRead, err)
	}

	if extraSize < 22 {
		chunk.Drain()
		return fmtChunk, nil
	}

	extra := make([]byte, extraSize)
	if err := chunk.ReadLE(extra); err != nil {
		return nil, fmt.Errorf("%w: fmt extension data: %v", ErrTruncatedRead, err)
	}

	ext := &FmtExtensible{
		ValidBitsPerSample: binary.LittleEndian.Uint16(extra[0:2]),
		ChannelMask:        binary.LittleEndian.Uint32(extra[2:6]),
	}
	copy(ext.SubFormat[:], extra[6:22])
	fmtChunk.Extensible = ext

	chunk.Drain()

	return fmtChunk, nil
}
