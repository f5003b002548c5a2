package wavstream

import (
	"fmt"

	"github.com/cwbudde/wavstream/pcm"
)

// WAV format tags.
const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatALaw       = 6
	wavFormatMuLaw      = 7
	wavFormatExtensible = 0xFFFE
)

// AIFC compression type tags.
var (
	aifcNone = [4]byte{'N', 'O', 'N', 'E'}
	aifcSowt = [4]byte{'s', 'o', 'w', 't'}
	aifcRaw  = [4]byte{'r', 'a', 'w', ' '}
	aifcULaw = [4]byte{'u', 'l', 'a', 'w'}
	aifcALaw = [4]byte{'a', 'l', 'a', 'w'}
	aifcFl32 = [4]byte{'f', 'l', '3', '2'}
)

// defaultChunkFrames is the streaming chunk size in frames.
const defaultChunkFrames = 4096

// applyWavFormat resolves a parsed fmt chunk into the music's sample spec and
// codec. Any combination outside the closed table fails with
// ErrUnsupportedFormat; nothing can fail at stream time afterwards.
func (m *Music) applyWavFormat(f *FmtChunk) error {
	tag := f.EffectiveFormatTag()
	bits := int(f.BitsPerSample)

	var format pcm.Format

	m.codec = codecPCM

	switch tag {
	case wavFormatPCM:
		switch bits {
		case 8:
			format = pcm.U8
		case 16:
			format = pcm.S16LE
		case 24:
			format = pcm.S32LE
			m.codec = codecPCM24LE
		case 32:
			format = pcm.S32LE
		default:
			return fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bits)
		}
	case wavFormatIEEEFloat:
		if bits != 32 {
			return fmt.Errorf("%w: %d-bit float", ErrUnsupportedFormat, bits)
		}

		format = pcm.F32LE
	case wavFormatALaw:
		if bits != 8 {
			return fmt.Errorf("%w: %d-bit A-law", ErrUnsupportedFormat, bits)
		}

		format = pcm.S16LE
		m.codec = codecALaw
	case wavFormatMuLaw:
		if bits != 8 {
			return fmt.Errorf("%w: %d-bit mu-law", ErrUnsupportedFormat, bits)
		}

		format = pcm.S16LE
		m.codec = codecULaw
	default:
		return fmt.Errorf("%w: wav format tag %d", ErrUnsupportedFormat, tag)
	}

	m.encoding = tag
	m.spec = pcm.Spec{
		Format:   format,
		Channels: int(f.NumChannels),
		Rate:     int(f.SampleRate),
	}
	m.frameSize = int64(f.NumChannels) * int64(bits/8)

	return nil
}

// applyAIFFFormat resolves COMM fields (and the AIFC compression tag) into
// the music's sample spec and codec. Plain AIFF data is big-endian signed
// PCM; AIFC tags override byte order, signedness, or companding.
func (m *Music) applyAIFFFormat(channels uint16, bits uint16, rate uint32, isAIFC bool, compression [4]byte) error {
	var format pcm.Format

	m.codec = codecPCM
	m.encoding = wavFormatPCM

	switch bits {
	case 8:
		switch {
		case !isAIFC, compression == aifcSowt, compression == aifcNone:
			format = pcm.S8
		case compression == aifcRaw:
			format = pcm.U8
		case compression == aifcULaw:
			format = pcm.S16LE
			m.codec = codecULaw
			m.encoding = wavFormatMuLaw
		case compression == aifcALaw:
			format = pcm.S16LE
			m.codec = codecALaw
			m.encoding = wavFormatALaw
		default:
			return unsupportedAIFC(bits, compression)
		}
	case 16:
		switch {
		case !isAIFC, compression == aifcNone:
			format = pcm.S16BE
		case compression == aifcSowt:
			format = pcm.S16LE
		default:
			return unsupportedAIFC(bits, compression)
		}
	case 24:
		switch {
		case !isAIFC, compression == aifcNone:
			format = pcm.S32BE
			m.codec = codecPCM24BE
		case compression == aifcSowt:
			format = pcm.S32LE
			m.codec = codecPCM24LE
		default:
			return unsupportedAIFC(bits, compression)
		}
	case 32:
		switch {
		case !isAIFC, compression == aifcNone:
			format = pcm.S32BE
		case compression == aifcSowt:
			format = pcm.S32LE
		case compression == aifcFl32:
			format = pcm.F32BE
			m.encoding = wavFormatIEEEFloat
		default:
			return unsupportedAIFC(bits, compression)
		}
	default:
		return fmt.Errorf("%w: %d-bit AIFF sample size", ErrUnsupportedFormat, bits)
	}

	m.spec = pcm.Spec{
		Format:   format,
		Channels: int(channels),
		Rate:     int(rate),
	}
	m.frameSize = int64(channels) * int64(bits/8)

	return nil
}

func unsupportedAIFC(bits uint16, compression [4]byte) error {
	return fmt.Errorf("%w: %d-bit AIFC compression %q", ErrUnsupportedFormat, bits, compression[:])
}
