package pcm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec is returned when a stream spec is incomplete.
	ErrInvalidSpec = errors.New("invalid stream spec")
	// ErrChannelMix is returned when no mixing rule exists for a channel
	// count pair. Supported: identical counts, mono fan-out, down-mix to mono.
	ErrChannelMix = errors.New("unsupported channel conversion")
)

// Stream converts pushed source audio into buffered destination audio.
// Pushed bytes are decoded, channel-mixed, resampled, re-encoded, and queued;
// Pull drains the queue. A stream whose source and destination specs are
// identical is a plain byte queue and reproduces its input exactly.
type Stream struct {
	src, dst Spec

	identity bool
	rs       *resampler

	carry []byte // partial source frame awaiting completion
	out   []byte // queued destination bytes

	decoded   []int32 // scratch: decoded source samples
	resampled []int32 // scratch: post-resample samples
}

// NewStream creates a conversion stage from src to dst.
func NewStream(src, dst Spec) (*Stream, error) {
	if !src.Valid() {
		return nil, fmt.Errorf("%w: source %+v", ErrInvalidSpec, src)
	}

	if !dst.Valid() {
		return nil, fmt.Errorf("%w: destination %+v", ErrInvalidSpec, dst)
	}

	if src.Channels != dst.Channels && src.Channels != 1 && dst.Channels != 1 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrChannelMix, src.Channels, dst.Channels)
	}

	s := &Stream{
		src:      src,
		dst:      dst,
		identity: src == dst,
	}

	if !s.identity && src.Rate != dst.Rate {
		s.rs = newResampler(src.Rate, dst.Rate, dst.Channels)
	}

	return s, nil
}

// SourceSpec returns the stream's input spec.
func (s *Stream) SourceSpec() Spec { return s.src }

// DestSpec returns the stream's output spec.
func (s *Stream) DestSpec() Spec { return s.dst }

// Push queues source bytes for conversion. Partial trailing frames are held
// back until completed by a later push.
func (s *Stream) Push(p []byte) error {
	if len(p) == 0 {
		return nil
	}

	if s.identity {
		s.out = append(s.out, p...)
		return nil
	}

	if len(s.carry) > 0 {
		p = append(s.carry, p...)
		s.carry = nil
	}

	frameSize := s.src.FrameSize()
	whole := len(p) / frameSize * frameSize

	if whole < len(p) {
		s.carry = append(s.carry, p[whole:]...)
		p = p[:whole]
	}

	if len(p) == 0 {
		return nil
	}

	s.decoded = s.decoded[:0]

	sampleSize := s.src.Format.ByteSize()
	for i := 0; i+sampleSize <= len(p); i += sampleSize {
		s.decoded = append(s.decoded, decodeSample(s.src.Format, p[i:]))
	}

	samples := mixChannels(s.decoded, s.src.Channels, s.dst.Channels)

	if s.rs != nil {
		s.resampled = s.rs.process(samples, s.resampled[:0])
		samples = s.resampled
	}

	s.encode(samples)

	return nil
}

// Pull copies queued destination bytes into p and returns the byte count.
// Zero means the queue is empty.
func (s *Stream) Pull(p []byte) int {
	n := copy(p, s.out)
	if n > 0 {
		s.out = s.out[:copy(s.out, s.out[n:])]
	}

	return n
}

// Buffered returns the number of destination bytes waiting to be pulled.
func (s *Stream) Buffered() int { return len(s.out) }

// Flush emits any tail held by the resampler. Call once the source region is
// fully pushed.
func (s *Stream) Flush() {
	if s.rs == nil {
		return
	}

	tail := s.rs.drain(nil)
	if len(tail) > 0 {
		s.encode(tail)
	}
}

// Reset discards all buffered and carried state.
func (s *Stream) Reset() {
	s.out = s.out[:0]
	s.carry = nil

	if s.rs != nil {
		s.rs.reset()
	}
}

func (s *Stream) encode(samples []int32) {
	sampleSize := s.dst.Format.ByteSize()
	off := len(s.out)
	s.out = append(s.out, make([]byte, len(samples)*sampleSize)...)

	for _, v := range samples {
		encodeSample(s.dst.Format, s.out[off:], v)
		off += sampleSize
	}
}

// mixChannels adapts interleaved samples between channel counts: identical
// counts pass through, mono fans out, anything else averages down to mono.
func mixChannels(in []int32, from, to int) []int32 {
	if from == to {
		return in
	}

	frames := len(in) / from
	out := make([]int32, 0, frames*to)

	if from == 1 {
		for _, v := range in {
			for ch := 0; ch < to; ch++ {
				out = append(out, v)
			}
		}

		return out
	}

	for f := 0; f < frames; f++ {
		var sum int64
		for ch := 0; ch < from; ch++ {
			sum += int64(in[f*from+ch])
		}

		out = append(out, int32(sum/int64(from)))
	}

	return out
}
