// Package wavstream streams decoded linear PCM from WAV and AIFF/AIFC
// containers.
//
// The package parses both chunked container layouts, resolves the sample
// layout (PCM integer 8/16/24/32-bit, 32-bit float, A-law, and mu-law), and
// drives a pull-based decode engine that honors sampler-chunk loop points
// and whole-file repeat counts. LIST/INFO, embedded ID3v2, and AIFF text
// chunks populate metadata tags.
//
// Music implements io.Reader over the decoded output, converted to a caller
// chosen pcm.Spec, which makes it directly usable as a playback source:
//
//	m, err := wavstream.New(f, pcm.Spec{Format: pcm.S16LE, Channels: 2, Rate: 44100}, false)
//	if err != nil { ... }
//	m.Play(1)
//	io.Copy(dst, m)
package wavstream
