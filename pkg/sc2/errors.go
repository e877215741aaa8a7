package sc2

import "errors"

var (
	ErrIO             = errors.New("sc2: io error")
	ErrTruncatedChunk = errors.New("sc2: truncated chunk")
	ErrTruncatedInput = errors.New("sc2: truncated rle input")
	ErrShortRecord    = errors.New("sc2: short record")
	ErrUnsupported    = errors.New("sc2: unsupported re-encoding")
)
