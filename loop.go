package wavstream

// loopPoint is a repeating frame range inside the data region. Frame offsets
// are converted to byte offsets with the source bytes-per-frame when the
// engine evaluates boundaries, so the table itself is format-agnostic.
type loopPoint struct {
	start   int64 // first frame of the loop
	stop    int64 // first frame past the loop
	initial int   // declared play count, 0 = infinite
	current int
	active  bool
}

// addLoopPoint appends a forward loop. The smpl chunk stores an inclusive
// end frame; stop is already normalized to exclusive by the caller.
func (m *Music) addLoopPoint(playCount uint32, start, stop uint32) {
	m.loops = append(m.loops, &loopPoint{
		start:   int64(start),
		stop:    int64(stop),
		initial: int(playCount),
		current: int(playCount),
	})
}

// LoopInfo describes one loop point for inspection.
type LoopInfo struct {
	// StartFrame is the first frame of the looped range.
	StartFrame int64
	// StopFrame is the first frame past the looped range.
	StopFrame int64
	// PlayCount is the declared repeat count, 0 meaning infinite.
	PlayCount int
}

// Loops returns a copy of the loop table read from the container.
func (m *Music) Loops() []LoopInfo {
	if m == nil || len(m.loops) == 0 {
		return nil
	}

	out := make([]LoopInfo, len(m.loops))
	for i, l := range m.loops {
		out[i] = LoopInfo{StartFrame: l.start, StopFrame: l.stop, PlayCount: l.initial}
	}

	return out
}
