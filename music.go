package wavstream

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/wavstream/pcm"
)

// Play count sentinels.
const (
	// PlayForever repeats the whole file until the caller stops it.
	PlayForever = -1
	// MaxVolume is the neutral volume; lower values attenuate.
	MaxVolume = 128
)

// Music is a streaming decoder for one WAV or AIFF/AIFC source. It decodes
// linear PCM on demand, honors sampler-chunk loop points and whole-file
// repeat counts, and converts output to the requested spec.
//
// Music implements io.Reader over the converted output; Read returns io.EOF
// once the configured play count is exhausted. A single goroutine must own
// each instance.
type Music struct {
	src     io.ReadSeeker
	ownsSrc bool

	spec     pcm.Spec // decoded source layout, post-expansion
	outSpec  pcm.Spec
	encoding uint16
	codec    codecKind
	fmtChunk *FmtChunk

	// data region, absolute byte offsets into the source
	start, stop int64
	// source bytes per frame, pre-expansion
	frameSize int64

	inBuf  []byte
	outBuf []byte
	stream *pcm.Stream

	chunks *ChunkRegistry
	loops  []*loopPoint
	tags   metaTags

	playCount int
	volume    int
}

// New creates a streaming decoder over src, which must be positioned at the
// start of the container. The leading magic bytes select the parser: RIFF
// (or WAVE) runs the WAV walk, FORM the AIFF walk. When takeOwnership
// is set and src implements io.Closer, Close closes it. A zero out Spec
// delivers the source format unchanged; a partial one (zero Channels or
// Rate) inherits the missing fields from the source.
//
// All format validation happens here: once New succeeds, decoding cannot
// fail due to an unsupported format.
func New(src io.ReadSeeker, out pcm.Spec, takeOwnership bool) (*Music, error) {
	m := &Music{
		src:      src,
		ownsSrc:  takeOwnership,
		volume:   MaxVolume,
		codec:    codecPCM,
		encoding: wavFormatPCM,
		chunks:   newDefaultChunkRegistry(),
	}

	var magic [4]byte
	if _, err := io.ReadFull(src, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: magic: %v", ErrMalformedContainer, err)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind source: %w", err)
	}

	var err error

	switch magic {
	case riffMagic, waveID:
		err = m.loadWAV()
	case formID:
		err = m.loadAIFF()
	default:
		err = fmt.Errorf("%w: magic %q", ErrMalformedContainer, magic[:])
	}

	if err != nil {
		return nil, err
	}

	if m.stop <= m.start {
		return nil, fmt.Errorf("%w: empty data region", ErrMalformedContainer)
	}

	m.inBuf = make([]byte, defaultChunkFrames*int(m.frameSize))
	m.outBuf = make([]byte, defaultChunkFrames*m.spec.FrameSize())

	if out == (pcm.Spec{}) {
		out = m.spec
	} else {
		if out.Channels == 0 {
			out.Channels = m.spec.Channels
		}

		if out.Rate == 0 {
			out.Rate = m.spec.Rate
		}
	}

	m.stream, err = pcm.NewStream(m.spec, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	m.outSpec = out

	return m, nil
}

var riffMagic = [4]byte{'R', 'I', 'F', 'F'}

// Format returns the decoded source spec, before output conversion.
func (m *Music) Format() pcm.Spec {
	return m.spec
}

// OutputFormat returns the delivery spec Read produces.
func (m *Music) OutputFormat() pcm.Spec {
	return m.outSpec
}

// FormatChunk returns the parsed WAV fmt chunk, when the source is a WAV.
func (m *Music) FormatChunk() *FmtChunk {
	if m == nil {
		return nil
	}

	return m.fmtChunk
}

// Tag returns the metadata string for the given tag kind, if the container
// carried one.
func (m *Music) Tag(tag MetaTag) (string, bool) {
	return m.tags.get(tag)
}

// SetVolume sets the playback volume from 0 (silent) to MaxVolume (full).
func (m *Music) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}

	if volume > MaxVolume {
		volume = MaxVolume
	}

	m.volume = volume
}

// Volume returns the current playback volume.
func (m *Music) Volume() int {
	return m.volume
}

// Play prepares playback: every loop point is reactivated with its initial
// play count, the cursor returns to the start of the data region, and the
// whole-file play count is set. A count of 1 plays once, N plays N times,
// PlayForever repeats endlessly, and 0 stops.
func (m *Music) Play(count int) error {
	for _, l := range m.loops {
		l.active = true
		l.current = l.initial
	}

	if _, err := m.src.Seek(m.start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data start: %w", err)
	}

	m.playCount = count

	return nil
}

// Read fills p with converted output bytes, always a whole number of output
// frames so a volume-scaled sample is never split across calls. A p shorter
// than one output frame fails with io.ErrShortBuffer. Read returns io.EOF
// once the play count is exhausted and the conversion stage has drained.
// Decode and conversion failures are fatal for the call and should stop
// playback.
func (m *Music) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	frameSize := m.outSpec.FrameSize()
	if len(p) < frameSize {
		return 0, io.ErrShortBuffer
	}

	p = p[:len(p)/frameSize*frameSize]

	for {
		n, done, err := m.getSome(p)
		if err != nil {
			return 0, err
		}

		if n > 0 {
			pcm.Scale(p[:n], m.outSpec.Format, m.volume, MaxVolume)
			return n, nil
		}

		if done {
			return 0, io.EOF
		}
	}
}

// getSome makes one bounded step of the streaming state machine: drain
// buffered output first, otherwise decode one block, push it to the
// conversion stage, and handle loop and end-of-region transitions. Calls
// that cross a boundary deliver no bytes but advance state; the caller
// invokes again.
func (m *Music) getSome(p []byte) (int, bool, error) {
	if n := m.stream.Pull(p); n > 0 {
		return n, false, nil
	}

	if m.playCount == 0 {
		return 0, true, nil
	}

	pos, err := m.tell()
	if err != nil {
		return 0, false, err
	}

	// Default boundary is the region stop; an active loop containing the
	// cursor takes precedence, first match in file order winning.
	stop := m.stop

	var (
		loop      *loopPoint
		loopStart int64
	)

	for _, l := range m.loops {
		if !l.active {
			continue
		}

		ls := m.start + l.start*m.frameSize
		lstop := m.start + l.stop*m.frameSize

		if pos >= ls && pos < lstop {
			stop = lstop
			loop = l
			loopStart = ls

			break
		}
	}

	// No loop holds the cursor: cap the block at the nearest upcoming loop
	// start so the next call enters the loop exactly on its boundary.
	if loop == nil {
		for _, l := range m.loops {
			if !l.active {
				continue
			}

			if ls := m.start + l.start*m.frameSize; ls > pos && ls < stop {
				stop = ls
			}
		}
	}

	amount := int64(len(m.inBuf))
	if stop-pos < amount {
		amount = stop - pos
	}

	produced, err := m.fetchBlock(int(amount))
	if err != nil {
		return 0, false, err
	}

	atEnd := produced == 0
	if produced > 0 {
		if err := m.stream.Push(m.outBuf[:produced]); err != nil {
			return 0, false, fmt.Errorf("conversion stage rejected block: %w", err)
		}
	}

	pos, err = m.tell()
	if err != nil {
		return 0, false, err
	}

	looped := false

	if loop != nil && pos >= stop {
		if loop.current == 1 {
			loop.active = false
		} else {
			if loop.current > 0 {
				loop.current--
			}

			if _, err := m.src.Seek(loopStart, io.SeekStart); err != nil {
				return 0, false, fmt.Errorf("failed to seek to loop start: %w", err)
			}

			looped = true
		}
	}

	if !looped && (atEnd || pos >= m.stop) {
		if m.playCount == 1 {
			m.playCount = 0
			m.stream.Flush()
		} else {
			count := PlayForever
			if m.playCount > 0 {
				count = m.playCount - 1
			}

			if err := m.Play(count); err != nil {
				return 0, false, err
			}
		}
	}

	// Looping or more data: the caller comes back for it.
	return 0, false, nil
}

// fetchBlock decodes up to amount source bytes through the selected codec
// into outBuf, returning the output byte count. amount is truncated to whole
// frames; zero means the boundary was already at the cursor.
func (m *Music) fetchBlock(amount int) (int, error) {
	amount -= amount % int(m.frameSize)
	if amount <= 0 {
		return 0, nil
	}

	var read int

	switch m.codec {
	case codecPCM:
		// Passthrough decodes straight into the output buffer.
		n, err := io.ReadFull(m.src, m.outBuf[:amount])
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("failed to read samples: %w", err)
		}

		return n - n%int(m.frameSize), nil
	case codecPCM24LE, codecPCM24BE, codecULaw, codecALaw:
		n, err := io.ReadFull(m.src, m.inBuf[:amount])
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("failed to read samples: %w", err)
		}

		read = n - n%int(m.frameSize)
	}

	switch m.codec {
	case codecPCM24LE:
		return expand24(m.outBuf, m.inBuf[:read], false), nil
	case codecPCM24BE:
		return expand24(m.outBuf, m.inBuf[:read], true), nil
	case codecULaw:
		return expandXLaw(m.outBuf, m.inBuf[:read], decodeMuLawSample), nil
	case codecALaw:
		return expandXLaw(m.outBuf, m.inBuf[:read], decodeALawSample), nil
	default:
		return 0, nil
	}
}

// Seek repositions the cursor to the given time without touching loop or
// play-count state. The target is frame aligned; seeking past the data
// region fails with ErrSeekOutOfRange and leaves the cursor unchanged.
func (m *Music) Seek(seconds float64) error {
	frames := int64(seconds * float64(m.spec.Rate))
	target := m.start + frames*m.frameSize

	if target > m.stop || target < m.start {
		return fmt.Errorf("%w: %.3fs", ErrSeekOutOfRange, seconds)
	}

	if _, err := m.src.Seek(target, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

// Tell returns the cursor position in seconds from the region start.
func (m *Music) Tell() (float64, error) {
	pos, err := m.tell()
	if err != nil {
		return 0, err
	}

	return float64(pos-m.start) / float64(int64(m.spec.Rate)*m.frameSize), nil
}

// Length returns the duration of one traversal of the data region in seconds.
func (m *Music) Length() float64 {
	return float64(m.stop-m.start) / float64(int64(m.spec.Rate)*m.frameSize)
}

// Duration returns Length as a time.Duration.
func (m *Music) Duration() time.Duration {
	return time.Duration(m.Length() * float64(time.Second))
}

// Close releases engine-owned resources. The source is closed only when the
// engine owns it.
func (m *Music) Close() error {
	m.tags.clear()
	m.loops = nil
	m.inBuf = nil
	m.outBuf = nil

	if m.stream != nil {
		m.stream.Reset()
		m.stream = nil
	}

	if m.ownsSrc {
		if c, ok := m.src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				return fmt.Errorf("failed to close source: %w", err)
			}
		}
	}

	return nil
}

func (m *Music) tell() (int64, error) {
	pos, err := m.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("failed to read source position: %w", err)
	}

	return pos, nil
}
