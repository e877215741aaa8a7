package sc2

import (
	"encoding/binary"
	"fmt"
)

const pictureHeaderSize = 8

// Picture is the preview image chunk. Only the header and the declared
// dimensions are parsed; the pixel rows are kept undecoded.
type Picture struct {
	Header [4]byte `json:"-"`
	Width  uint16  `json:"width"`
	Height uint16  `json:"height"`
	Pixels []byte  `json:"-"`
}

// DecodePicture parses a raw PICT payload.
func DecodePicture(b []byte) (*Picture, error) {
	if len(b) < pictureHeaderSize {
		return nil, fmt.Errorf("%w: picture header needs %d bytes, have %d", ErrShortRecord, pictureHeaderSize, len(b))
	}
	p := &Picture{
		Width:  binary.BigEndian.Uint16(b[4:6]),
		Height: binary.BigEndian.Uint16(b[6:8]),
		Pixels: b[pictureHeaderSize:],
	}
	copy(p.Header[:], b[:4])
	return p, nil
}

func (p *Picture) sameHeader(b []byte) bool {
	q, err := DecodePicture(b)
	if err != nil {
		return false
	}
	return p.Header == q.Header && p.Width == q.Width && p.Height == q.Height
}
