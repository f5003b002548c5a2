package wavstream

import (
	"encoding/binary"

	"github.com/go-audio/audio"
)

// codecKind selects the per-block sample transform. The set is closed and
// fixed at load time by the format interpreter, so the dispatch switch in
// fetchBlock is exhaustive.
type codecKind uint8

const (
	// codecPCM copies source bytes through unchanged.
	codecPCM codecKind = iota
	// codecPCM24LE expands little-endian 3-byte samples to S32LE.
	codecPCM24LE
	// codecPCM24BE expands big-endian 3-byte samples to S32BE.
	codecPCM24BE
	// codecULaw expands mu-law bytes to S16LE.
	codecULaw
	// codecALaw expands A-law bytes to S16LE.
	codecALaw
)

// expand24 sign-extends 3-byte samples from src into 4-byte samples in dst,
// preserving byte order. src must hold a whole number of samples.
func expand24(dst, src []byte, bigEndian bool) int {
	samples := len(src) / 3

	for i := 0; i < samples; i++ {
		s := src[i*3 : i*3+3]

		var v int32
		if bigEndian {
			v = int32(uint32(s[0])<<24|uint32(s[1])<<16|uint32(s[2])<<8) >> 8
			binary.BigEndian.PutUint32(dst[i*4:], uint32(v))
		} else {
			v = audio.Int24LETo32(s)
			binary.LittleEndian.PutUint32(dst[i*4:], uint32(v))
		}
	}

	return samples * 4
}

// expandXLaw decodes companded bytes from src into S16LE samples in dst.
func expandXLaw(dst, src []byte, decode func(byte) int16) int {
	for i, b := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(decode(b)))
	}

	return len(src) * 2
}
