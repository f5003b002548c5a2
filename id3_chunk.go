package wavstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dhowden/tag"
	"github.com/go-audio/riff"
)

// decodeID3Chunk reads an "id3 " chunk whose payload is a standard ID3v2 tag
// and stores the recognized tag strings. A payload the tag parser rejects is
// ignored rather than failing the load.
func decodeID3Chunk(m *Music, ch *riff.Chunk) error {
	if m == nil || ch == nil || ch.ID != CIDID3 {
		return nil
	}

	buf := make([]byte, ch.Size)

	n, err := io.ReadFull(ch, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: id3 chunk: %v", ErrTruncatedRead, err)
	}

	md, err := tag.ReadFrom(bytes.NewReader(buf[:n]))
	if err != nil {
		ch.Drain()
		return nil
	}

	m.tags.set(MetaTitle, md.Title())
	m.tags.set(MetaArtist, md.Artist())
	m.tags.set(MetaAlbum, md.Album())
	m.tags.set(MetaCopyright, rawTagString(md, "TCOP", "TCR"))

	ch.Drain()

	return nil
}

// rawTagString looks up text frames the tag package has no accessor for.
func rawTagString(md tag.Metadata, ids ...string) string {
	for _, id := range ids {
		if v, ok := md.Raw()[id].(string); ok {
			return v
		}
	}

	return ""
}
