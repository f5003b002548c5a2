package wavstream

import "errors"

var (
	// ErrMalformedContainer is returned when the container magic is wrong, a
	// required chunk is missing, or the chunk walk hits a zero-length chunk
	// before the required set was found.
	ErrMalformedContainer = errors.New("malformed audio container")
	// ErrUnsupportedFormat is returned at load time when no codec mapping
	// exists for the encoding/bit-depth/compression combination.
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	// ErrTruncatedRead is returned when the source holds fewer bytes than a
	// chunk declares.
	ErrTruncatedRead = errors.New("truncated chunk read")
	// ErrSeekOutOfRange is returned when a seek target lies outside the data
	// region. The cursor is left unchanged.
	ErrSeekOutOfRange = errors.New("seek position out of range")
)
