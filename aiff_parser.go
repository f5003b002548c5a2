package wavstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// FORM chunk tags.
var (
	formID = [4]byte{'F', 'O', 'R', 'M'}
	aiffID = [4]byte{'A', 'I', 'F', 'F'}
	aifcID = [4]byte{'A', 'I', 'F', 'C'}
	ssndID = [4]byte{'S', 'S', 'N', 'D'}
	commID = [4]byte{'C', 'O', 'M', 'M'}
	fverID = [4]byte{'F', 'V', 'E', 'R'}
	nameID = [4]byte{'N', 'A', 'M', 'E'}
	authID = [4]byte{'A', 'U', 'T', 'H'}
	coprID = [4]byte{'(', 'c', ')', ' '}
)

// loadAIFF walks the FORM chunk list from the start of the source. Unlike
// RIFF, chunk lengths are big-endian. Walking continues in file order until
// SSND, COMM (and FVER for AIFC) have all been seen or a seek to the next
// chunk fails.
func (m *Music) loadAIFF() error {
	var head [4]byte
	if err := m.readTag(&head); err != nil || head != formID {
		return fmt.Errorf("%w: missing FORM header", ErrMalformedContainer)
	}

	var formLen uint32
	if err := binary.Read(m.src, binary.BigEndian, &formLen); err != nil {
		return fmt.Errorf("%w: FORM length: %v", ErrMalformedContainer, err)
	}

	var formType [4]byte
	if err := m.readTag(&formType); err != nil {
		return fmt.Errorf("%w: FORM type: %v", ErrMalformedContainer, err)
	}

	if formType != aiffID && formType != aifcID {
		return fmt.Errorf("%w: FORM type %q is not AIFF or AIFC", ErrMalformedContainer, formType[:])
	}

	isAIFC := formType == aifcID

	var (
		foundSSND, foundCOMM, foundFVER bool

		channels    uint16
		numFrames   uint32
		sampleSize  uint16
		rate        uint32
		compression [4]byte
	)

	for {
		var chunkID [4]byte
		if err := m.readTag(&chunkID); err != nil {
			break
		}

		var chunkLen uint32
		if err := binary.Read(m.src, binary.BigEndian, &chunkLen); err != nil {
			break
		}

		pos, err := m.src.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("failed to locate chunk %q: %w", chunkID[:], err)
		}

		// Infinite-walk guard.
		if chunkLen == 0 {
			break
		}

		// IFF chunks are word aligned.
		next := pos + int64(chunkLen) + int64(chunkLen%2)

		switch chunkID {
		case ssndID:
			foundSSND = true

			var offset, blockSize uint32
			if err := binary.Read(m.src, binary.BigEndian, &offset); err != nil {
				return fmt.Errorf("%w: SSND offset: %v", ErrTruncatedRead, err)
			}

			if err := binary.Read(m.src, binary.BigEndian, &blockSize); err != nil {
				return fmt.Errorf("%w: SSND block size: %v", ErrTruncatedRead, err)
			}

			dataPos, err := m.src.Seek(0, io.SeekCurrent)
			if err != nil {
				return fmt.Errorf("failed to locate sound data: %w", err)
			}

			m.start = dataPos + int64(offset)
		case fverID:
			foundFVER = true

			var version uint32
			if err := binary.Read(m.src, binary.BigEndian, &version); err != nil {
				return fmt.Errorf("%w: FVER version: %v", ErrTruncatedRead, err)
			}
		case commID:
			foundCOMM = true

			if err := binary.Read(m.src, binary.BigEndian, &channels); err != nil {
				return fmt.Errorf("%w: COMM channels: %v", ErrTruncatedRead, err)
			}

			if err := binary.Read(m.src, binary.BigEndian, &numFrames); err != nil {
				return fmt.Errorf("%w: COMM frame count: %v", ErrTruncatedRead, err)
			}

			if err := binary.Read(m.src, binary.BigEndian, &sampleSize); err != nil {
				return fmt.Errorf("%w: COMM sample size: %v", ErrTruncatedRead, err)
			}

			var extRate [10]byte
			if _, err := io.ReadFull(m.src, extRate[:]); err != nil {
				return fmt.Errorf("%w: COMM sample rate: %v", ErrTruncatedRead, err)
			}

			rate = extended80ToUint32(extRate)

			// The compression tag sits after the sample rate; a padded
			// compression name string follows and is skipped with the rest
			// of the chunk.
			if isAIFC {
				if err := m.readTag(&compression); err != nil {
					return fmt.Errorf("%w: COMM compression type: %v", ErrTruncatedRead, err)
				}
			}
		case nameID:
			m.readAIFFText(chunkLen, MetaTitle)
		case authID:
			m.readAIFFText(chunkLen, MetaArtist)
		case coprID:
			m.readAIFFText(chunkLen, MetaCopyright)
		}

		if foundSSND && foundCOMM && (!isAIFC || foundFVER) {
			break
		}

		if _, err := m.src.Seek(next, io.SeekStart); err != nil {
			break
		}
	}

	if !foundSSND {
		return fmt.Errorf("%w: no SSND chunk", ErrMalformedContainer)
	}

	if !foundCOMM {
		return fmt.Errorf("%w: no COMM chunk", ErrMalformedContainer)
	}

	if isAIFC && !foundFVER {
		return fmt.Errorf("%w: AIFC without FVER chunk", ErrMalformedContainer)
	}

	if err := m.applyAIFFFormat(channels, sampleSize, rate, isAIFC, compression); err != nil {
		return err
	}

	m.stop = m.start + int64(channels)*int64(numFrames)*int64(sampleSize/8)

	return nil
}

// readTag reads a raw 4-byte chunk tag.
func (m *Music) readTag(dst *[4]byte) error {
	_, err := io.ReadFull(m.src, dst[:])
	return err
}

// readAIFFText stores the payload of an IFF text chunk as a metadata tag.
// Failures here only lose a tag, never the load.
func (m *Music) readAIFFText(length uint32, tag MetaTag) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(m.src, buf); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return
	}

	m.tags.set(tag, nullTermStr(buf))
}

// extended80ToUint32 converts an 80-bit IEEE-extended big-endian sample rate
// to an integer rate. Out-of-range exponents clamp to sentinel values, the
// same ones libsndfile documents for SANE conversion.
func extended80ToUint32(b [10]byte) uint32 {
	switch {
	case b[0]&0x80 != 0: // negative
		return 0
	case b[0] <= 0x3F: // less than 1
		return 1
	case b[0] > 0x40: // way out of range
		return 0x4000000
	case b[0] == 0x40 && b[1] > 0x1C: // still too big
		return 800000000
	}

	mantissa := uint32(b[2])<<23 | uint32(b[3])<<15 | uint32(b[4])<<7 | uint32(b[5])>>1

	return mantissa >> (29 - uint32(b[1]))
}
