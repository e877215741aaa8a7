package sc2

import "fmt"

// RLE control bytes:
//
//	0..127   copy the next c bytes verbatim
//	128      no-op, consumes nothing else
//	129..255 repeat the next byte c-127 times
const (
	rleNoop       = 128
	rleRunBias    = 127
	rleMaxLiteral = 127
	rleMaxRun     = 127
	rleMinRun     = 3
)

// DecompressedLen returns the number of bytes Decompress would produce for src.
func DecompressedLen(src []byte) (int, error) {
	n := 0
	for i := 0; i < len(src); {
		c := src[i]
		i++
		switch {
		case c < rleNoop:
			if len(src)-i < int(c) {
				return 0, fmt.Errorf("%w: literal of %d bytes at offset %d, %d remain", ErrTruncatedInput, c, i-1, len(src)-i)
			}
			n += int(c)
			i += int(c)
		case c == rleNoop:
		default:
			if i >= len(src) {
				return 0, fmt.Errorf("%w: run at offset %d has no value byte", ErrTruncatedInput, i-1)
			}
			n += int(c) - rleRunBias
			i++
		}
	}
	return n, nil
}

// Decompress expands a run-length encoded chunk payload into a new slice.
// src is never modified.
func Decompress(src []byte) ([]byte, error) {
	n, err := DecompressedLen(src)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	for i := 0; i < len(src); {
		c := src[i]
		i++
		switch {
		case c < rleNoop:
			out = append(out, src[i:i+int(c)]...)
			i += int(c)
		case c == rleNoop:
		default:
			v := src[i]
			i++
			for range int(c) - rleRunBias {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// Compress encodes src with the chunk run-length scheme.
//
// Runs of rleMinRun or more identical bytes use the run form, split at
// rleMaxRun. Everything else is emitted as literal spans of at most
// rleMaxLiteral bytes, so Decompress(Compress(x)) == x for any x.
func Compress(src []byte) []byte {
	out := make([]byte, 0, len(src)/2+2)
	lit := -1
	for i := 0; i < len(src); {
		run := 1
		for i+run < len(src) && run < rleMaxRun && src[i+run] == src[i] {
			run++
		}
		if run >= rleMinRun {
			if lit >= 0 {
				out = appendLiteral(out, src[lit:i])
				lit = -1
			}
			out = append(out, byte(rleRunBias+run), src[i])
		} else if lit < 0 {
			lit = i
		}
		i += run
	}
	if lit >= 0 {
		out = appendLiteral(out, src[lit:])
	}
	return out
}

func appendLiteral(out, lit []byte) []byte {
	for len(lit) > 0 {
		n := min(len(lit), rleMaxLiteral)
		out = append(out, byte(n))
		out = append(out, lit[:n]...)
		lit = lit[n:]
	}
	return out
}
