// Package pcm defines the linear-PCM sample vocabulary shared by the
// decoder and its consumers, plus a push/pull conversion stage that adapts
// sample format, channel count, and sample rate between two specs.
package pcm
