package wavstream

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

var (
	// CIDSmpl is the chunk ID for a smpl chunk.
	CIDSmpl = [4]byte{'s', 'm', 'p', 'l'}
	// CIDList is the chunk ID for a LIST chunk.
	CIDList = [4]byte{'L', 'I', 'S', 'T'}
	// CIDID3 is the chunk ID for an embedded ID3v2 tag.
	CIDID3 = [4]byte{'i', 'd', '3', ' '}
	// CIDInfo is the LIST sub-type for INFO metadata.
	CIDInfo = []byte{'I', 'N', 'F', 'O'}
)

// ChunkHandler decodes one kind of optional RIFF/WAV chunk into the music
// state. Required chunks (fmt, data) are handled by the walker itself.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte, listType [4]byte) bool
	Decode(m *Music, ch *riff.Chunk) error
}

// ChunkRegistry resolves chunks to handlers. Unmatched chunks are skipped by
// the caller without error.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

func newDefaultChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&smplChunkHandler{},
			&listChunkHandler{},
			&id3ChunkHandler{},
		},
	}
}

// Register appends a handler to the registry.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Decode(m *Music, chnk *riff.Chunk) (bool, error) {
	if r == nil || chnk == nil {
		return false, nil
	}

	listType, err := sniffListType(chnk)
	if err != nil {
		return false, err
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(chnk.ID, listType) {
			if err := handler.Decode(m, chnk); err != nil {
				return true, fmt.Errorf("chunk handler decode failed: %w", err)
			}

			return true, nil
		}
	}

	return false, nil
}

// sniffListType peeks the 4-byte sub-type of a LIST chunk and rewinds the
// chunk reader so the handler still sees the full payload.
func sniffListType(chnk *riff.Chunk) ([4]byte, error) {
	var listType [4]byte

	if chnk == nil || chnk.ID != CIDList || chnk.Size < 4 {
		return listType, nil
	}

	var head [4]byte

	n, err := io.ReadFull(chnk.R, head[:])
	if err != nil {
		return listType, fmt.Errorf("%w: LIST type: %v", ErrTruncatedRead, err)
	}

	copy(listType[:], head[:])

	remaining := io.LimitReader(chnk.R, int64(chnk.Size-n))
	chnk.R = io.MultiReader(bytes.NewReader(head[:]), remaining)

	return listType, nil
}

type smplChunkHandler struct{}

func (h *smplChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDSmpl
}

func (h *smplChunkHandler) Decode(m *Music, ch *riff.Chunk) error {
	return decodeSamplerChunk(m, ch)
}

type listChunkHandler struct{}

func (h *listChunkHandler) CanHandle(chunkID [4]byte, listType [4]byte) bool {
	return chunkID == CIDList && bytes.Equal(listType[:], CIDInfo)
}

func (h *listChunkHandler) Decode(m *Music, ch *riff.Chunk) error {
	return decodeListInfoChunk(m, ch)
}

type id3ChunkHandler struct{}

func (h *id3ChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDID3
}

func (h *id3ChunkHandler) Decode(m *Music, ch *riff.Chunk) error {
	return decodeID3Chunk(m, ch)
}
