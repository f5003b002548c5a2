package wavstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// smpl chunk layout is documented here:
// https://sites.google.com/site/musicgapi/technical-documents/wav-file-format#smpl

// loopTypeForward marks a loop that plays front to back. Other loop types
// (alternating, backward) are silently ignored.
const loopTypeForward = 0

// samplerLoop is one 24-byte loop record of the smpl chunk.
type samplerLoop struct {
	CuePointID uint32
	Type       uint32
	Start      uint32
	End        uint32
	Fraction   uint32
	PlayCount  uint32
}

// decodeSamplerChunk reads a smpl chunk and appends its forward loops to the
// music's loop table, in file order. The stored End frame is inclusive; the
// loop table keeps exclusive stops.
func decodeSamplerChunk(m *Music, ch *riff.Chunk) error {
	if m == nil || ch == nil || ch.ID != CIDSmpl {
		return nil
	}

	buf := make([]byte, ch.Size)

	n, err := io.ReadFull(ch, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: smpl chunk: %v", ErrTruncatedRead, err)
	}

	reader := bytes.NewReader(buf[:n])

	// Header fields before the loop records. Only the loop count matters
	// here, but the offsets are fixed so every field is read in order.
	header := []struct {
		name string
		dst  any
	}{
		{"manufacturer", new(uint32)},
		{"product", new(uint32)},
		{"sample period", new(uint32)},
		{"MIDI unity note", new(uint32)},
		{"MIDI pitch fraction", new(uint32)},
		{"SMPTE format", new(uint32)},
		{"SMPTE offset", new(uint32)},
	}

	for _, f := range header {
		if err := binary.Read(reader, binary.LittleEndian, f.dst); err != nil {
			return fmt.Errorf("%w: smpl %s: %v", ErrTruncatedRead, f.name, err)
		}
	}

	var numLoops, samplerData uint32
	if err := binary.Read(reader, binary.LittleEndian, &numLoops); err != nil {
		return fmt.Errorf("%w: smpl loop count: %v", ErrTruncatedRead, err)
	}

	if err := binary.Read(reader, binary.LittleEndian, &samplerData); err != nil {
		return fmt.Errorf("%w: smpl sampler data: %v", ErrTruncatedRead, err)
	}

	for i := uint32(0); i < numLoops; i++ {
		var loop samplerLoop
		if err := binary.Read(reader, binary.LittleEndian, &loop); err != nil {
			return fmt.Errorf("%w: smpl loop record %d: %v", ErrTruncatedRead, i, err)
		}

		if loop.Type == loopTypeForward {
			m.addLoopPoint(loop.PlayCount, loop.Start, loop.End+1)
		}
	}

	ch.Drain()

	return nil
}
