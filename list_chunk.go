package wavstream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

var (
	markerINAM = [4]byte{'I', 'N', 'A', 'M'}
	markerIART = [4]byte{'I', 'A', 'R', 'T'}
	markerIALB = [4]byte{'I', 'A', 'L', 'B'}
	markerBCPR = [4]byte{'B', 'C', 'P', 'R'}
)

// decodeListInfoChunk reads a LIST INFO chunk and stores the recognized tag
// strings. Unknown INFO subchunks are skipped.
func decodeListInfoChunk(m *Music, ch *riff.Chunk) error {
	if m == nil || ch == nil || ch.ID != CIDList {
		return nil
	}

	buf := make([]byte, ch.Size)

	n, err := io.ReadFull(ch, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: LIST chunk: %v", ErrTruncatedRead, err)
	}

	reader := bytes.NewReader(buf[:n])

	subType := make([]byte, 4)
	if _, err := reader.Read(subType); err != nil {
		return fmt.Errorf("%w: LIST sub-type: %v", ErrTruncatedRead, err)
	}

	if !bytes.Equal(subType, CIDInfo) {
		ch.Drain()
		return nil
	}

	var (
		id   [4]byte
		size uint32
	)

	for {
		// The fourCC reads as raw bytes, the length is little-endian.
		if err := binary.Read(reader, binary.BigEndian, &id); err != nil {
			break
		}

		if err := binary.Read(reader, binary.LittleEndian, &size); err != nil {
			break
		}

		text := make([]byte, size)
		if _, err := io.ReadFull(reader, text); err != nil {
			break
		}

		switch id {
		case markerINAM:
			m.tags.set(MetaTitle, nullTermStr(text))
		case markerIART:
			m.tags.set(MetaArtist, nullTermStr(text))
		case markerIALB:
			m.tags.set(MetaAlbum, nullTermStr(text))
		case markerBCPR:
			m.tags.set(MetaCopyright, nullTermStr(text))
		}

		// Subchunk payloads are word aligned.
		if size%2 == 1 {
			if _, err := reader.Seek(1, io.SeekCurrent); err != nil {
				break
			}
		}
	}

	ch.Drain()

	return nil
}
