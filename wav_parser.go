package wavstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// waveID is the alternate leading tag the original streaming decoder accepts
// in place of RIFF.
var waveID = [4]byte{'W', 'A', 'V', 'E'}

// loadWAV walks the RIFF chunk list from the start of the source. The walk
// stops at a zero-length chunk (malformed-input guard) or source exhaustion;
// fmt and data must both appear. Optional chunks go through the registry and
// anything unmatched is skipped by seeking.
func (m *Music) loadWAV() error {
	parser := riff.New(m.src)

	id, size, err := parser.IDnSize()
	if err != nil {
		return fmt.Errorf("%w: riff header: %v", ErrMalformedContainer, err)
	}

	if id != riff.RiffID && id != waveID {
		return fmt.Errorf("%w: leading tag %q", ErrMalformedContainer, id[:])
	}

	parser.ID = id
	parser.Size = size

	if err := binary.Read(m.src, binary.BigEndian, &parser.Format); err != nil {
		return fmt.Errorf("%w: wave form type: %v", ErrMalformedContainer, err)
	}

	var foundFmt, foundData bool

	for {
		id, size, err := parser.IDnSize()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		if size == 0 {
			break
		}

		chunk := &riff.Chunk{
			ID:   id,
			Size: int(size),
			R:    io.LimitReader(m.src, int64(size)),
		}

		switch id {
		case riff.FmtID:
			foundFmt = true

			fmtChunk, err := decodeFmtChunk(chunk)
			if err != nil {
				return err
			}

			if err := m.applyWavFormat(fmtChunk); err != nil {
				return err
			}

			m.fmtChunk = fmtChunk
		case riff.DataFormatID:
			foundData = true

			pos, err := m.src.Seek(0, io.SeekCurrent)
			if err != nil {
				return fmt.Errorf("failed to locate data chunk: %w", err)
			}

			m.start = pos
			m.stop = pos + int64(size)

			if _, err := m.src.Seek(int64(size), io.SeekCurrent); err != nil {
				return fmt.Errorf("failed to skip data chunk: %w", err)
			}
		default:
			handled, err := m.chunks.Decode(m, chunk)
			if err != nil {
				return err
			}

			if handled {
				chunk.Drain()
			} else if _, err := m.src.Seek(int64(size), io.SeekCurrent); err != nil {
				return fmt.Errorf("failed to skip chunk %q: %w", id[:], err)
			}
		}

		// All RIFF chunks are word aligned; odd payloads carry a pad byte.
		if size%2 == 1 {
			if _, err := m.src.Seek(1, io.SeekCurrent); err != nil {
				break
			}
		}
	}

	if !foundFmt {
		return fmt.Errorf("%w: no fmt chunk", ErrMalformedContainer)
	}

	if !foundData {
		return fmt.Errorf("%w: no data chunk", ErrMalformedContainer)
	}

	return nil
}
