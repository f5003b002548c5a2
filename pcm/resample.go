package pcm

// resampler converts interleaved int32 frames between sample rates using
// linear interpolation. It carries the previous input frame across calls so
// chunked input produces the same output as a single large call.
type resampler struct {
	channels int
	ratio    float64
	pos      float64
	prev     []int32
	primed   bool
}

func newResampler(inputRate, outputRate, channels int) *resampler {
	return &resampler{
		channels: channels,
		ratio:    float64(inputRate) / float64(outputRate),
		prev:     make([]int32, channels),
	}
}

// process consumes interleaved input frames and appends interpolated output
// frames to out. Interpolation positions are tracked relative to the carried
// previous frame, so position 0 sits on that frame and position 1 on the
// first frame of in.
func (r *resampler) process(in []int32, out []int32) []int32 {
	frames := len(in) / r.channels
	if frames == 0 {
		return out
	}

	if !r.primed {
		// Position 1 is the first real input frame; starting there avoids
		// emitting the priming frame twice.
		copy(r.prev, in[:r.channels])
		r.primed = true
		r.pos = 1
	}

	for r.pos < float64(frames) {
		idx := int(r.pos)
		frac := r.pos - float64(idx)

		var a, b []int32
		if idx == 0 {
			a = r.prev
			b = in[:r.channels]
		} else {
			a = in[(idx-1)*r.channels:]
			b = in[idx*r.channels:]
		}

		for ch := 0; ch < r.channels; ch++ {
			v := float64(a[ch])*(1-frac) + float64(b[ch])*frac
			out = append(out, int32(v))
		}

		r.pos += r.ratio
	}

	r.pos -= float64(frames)
	copy(r.prev, in[(frames-1)*r.channels:])

	return out
}

// drain emits the output frames still owed between the carried frame and the
// end of input, holding the last frame. Called on Flush.
func (r *resampler) drain(out []int32) []int32 {
	if !r.primed {
		return out
	}

	for r.pos < 1 {
		for ch := 0; ch < r.channels; ch++ {
			out = append(out, r.prev[ch])
		}

		r.pos += r.ratio
	}

	r.pos -= 1

	return out
}

func (r *resampler) reset() {
	r.pos = 0
	r.primed = false

	for i := range r.prev {
		r.prev[i] = 0
	}
}
