package pcm

import (
	"encoding/binary"
	"math"
)

// Format identifies a linear-PCM sample layout, including byte order.
type Format uint8

const (
	// U8 is unsigned 8-bit PCM.
	U8 Format = iota
	// S8 is signed 8-bit PCM.
	S8
	// S16LE is signed 16-bit little-endian PCM.
	S16LE
	// S16BE is signed 16-bit big-endian PCM.
	S16BE
	// S32LE is signed 32-bit little-endian PCM.
	S32LE
	// S32BE is signed 32-bit big-endian PCM.
	S32BE
	// F32LE is 32-bit little-endian IEEE float PCM.
	F32LE
	// F32BE is 32-bit big-endian IEEE float PCM.
	F32BE
)

// ByteSize returns the storage size of a single sample in bytes.
func (f Format) ByteSize() int {
	switch f {
	case U8, S8:
		return 1
	case S16LE, S16BE:
		return 2
	case S32LE, S32BE, F32LE, F32BE:
		return 4
	default:
		return 0
	}
}

// BitSize returns the storage size of a single sample in bits.
func (f Format) BitSize() int {
	return f.ByteSize() * 8
}

// String implements the Stringer interface.
func (f Format) String() string {
	switch f {
	case U8:
		return "U8"
	case S8:
		return "S8"
	case S16LE:
		return "S16LE"
	case S16BE:
		return "S16BE"
	case S32LE:
		return "S32LE"
	case S32BE:
		return "S32BE"
	case F32LE:
		return "F32LE"
	case F32BE:
		return "F32BE"
	default:
		return "unknown"
	}
}

// Spec describes a concrete stream of interleaved PCM frames.
type Spec struct {
	Format   Format
	Channels int
	Rate     int
}

// FrameSize returns the number of bytes for one frame (one sample per channel).
func (s Spec) FrameSize() int {
	return s.Format.ByteSize() * s.Channels
}

// Valid reports whether the spec describes a usable stream.
func (s Spec) Valid() bool {
	return s.Format.ByteSize() > 0 && s.Channels > 0 && s.Rate > 0
}

const (
	scaleS8  = 1 << 24
	scaleS16 = 1 << 16
	scaleF32 = float64(math.MaxInt32)
)

// decodeSample reads one sample at the head of p as a full-scale int32.
func decodeSample(f Format, p []byte) int32 {
	switch f {
	case U8:
		return (int32(p[0]) - 128) * scaleS8
	case S8:
		return int32(int8(p[0])) * scaleS8
	case S16LE:
		return int32(int16(binary.LittleEndian.Uint16(p))) * scaleS16
	case S16BE:
		return int32(int16(binary.BigEndian.Uint16(p))) * scaleS16
	case S32LE:
		return int32(binary.LittleEndian.Uint32(p))
	case S32BE:
		return int32(binary.BigEndian.Uint32(p))
	case F32LE:
		return floatToFullScale(math.Float32frombits(binary.LittleEndian.Uint32(p)))
	case F32BE:
		return floatToFullScale(math.Float32frombits(binary.BigEndian.Uint32(p)))
	default:
		return 0
	}
}

// encodeSample writes a full-scale int32 sample at the head of p.
func encodeSample(f Format, p []byte, v int32) {
	switch f {
	case U8:
		p[0] = byte(v/scaleS8 + 128)
	case S8:
		p[0] = byte(v / scaleS8)
	case S16LE:
		binary.LittleEndian.PutUint16(p, uint16(int16(v/scaleS16)))
	case S16BE:
		binary.BigEndian.PutUint16(p, uint16(int16(v/scaleS16)))
	case S32LE:
		binary.LittleEndian.PutUint32(p, uint32(v))
	case S32BE:
		binary.BigEndian.PutUint32(p, uint32(v))
	case F32LE:
		binary.LittleEndian.PutUint32(p, math.Float32bits(float32(float64(v)/scaleF32)))
	case F32BE:
		binary.BigEndian.PutUint32(p, math.Float32bits(float32(float64(v)/scaleF32)))
	}
}

func floatToFullScale(v float32) int32 {
	if v >= 1 {
		return math.MaxInt32
	}

	if v <= -1 {
		return math.MinInt32
	}

	return int32(float64(v) * scaleF32)
}

// Scale applies an integer gain of num/den to every sample in p, in place.
// A gain of 1/1 (or higher) leaves the buffer untouched.
func Scale(p []byte, f Format, num, den int) {
	if den <= 0 || num >= den {
		return
	}

	size := f.ByteSize()
	if size == 0 {
		return
	}

	if num <= 0 {
		num = 0
	}

	for i := 0; i+size <= len(p); i += size {
		v := decodeSample(f, p[i:])
		encodeSample(f, p[i:], int32(int64(v)*int64(num)/int64(den)))
	}
}
