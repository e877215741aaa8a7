package sc2

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Mode selects how chunk payloads are produced when re-encoding.
type Mode int

const (
	// ModePreserve writes every stored payload verbatim. A save parsed and
	// written back this way is byte-identical to a well-formed input.
	ModePreserve Mode = iota
	// ModeRecompress re-encodes compressible payloads from their
	// decompressed bytes with Compress. Raw and unknown chunks are verbatim.
	ModeRecompress
	// ModeFromModel rebuilds payloads from the City model: the record is
	// written over the MISC payload, grid layers are rebuilt from the tiles,
	// and altitude/water bits are written over the original ALTM words.
	// Name and picture changes cannot be encoded and fail with ErrUnsupported,
	// as do stats, tile attributes or a picture whose chunk is absent from the
	// source container. For a repeated grid tag the tiles layered from every
	// occurrence are written, while ModePreserve writes only the last payload.
	ModeFromModel
)

var modeNames = map[Mode]string{
	ModePreserve:   "preserve",
	ModeRecompress: "recompress",
	ModeFromModel:  "model",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name back to a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("sc2: unknown encode mode %q", s)
}

// Writer serialises a container. The header length is computed from the
// chunks, so all chunks are supplied up front.
type Writer struct {
	w       io.Writer
	written int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Payload is one chunk as it will be stored.
type Payload struct {
	Tag   Tag
	Bytes []byte
}

// WriteContainer writes the header and the chunks in the given order.
func (w *Writer) WriteContainer(fileType, marker uint32, chunks []Payload) error {
	length := uint64(4)
	for _, ch := range chunks {
		if len(ch.Tag) != 4 {
			return fmt.Errorf("sc2: chunk tag %q is not four bytes", ch.Tag)
		}
		length += chunkHeaderSize + uint64(len(ch.Bytes))
	}
	if length > uint64(^uint32(0)) {
		return fmt.Errorf("sc2: container of %d bytes exceeds the declared length field", length)
	}

	var hdr [HeaderSize]byte
	encodeHeader(hdr[:], Header{FileType: fileType, Length: uint32(length), Marker: marker})
	if err := w.write(hdr[:]); err != nil {
		return err
	}
	var chHdr [chunkHeaderSize]byte
	for _, ch := range chunks {
		copy(chHdr[:4], ch.Tag)
		binary.BigEndian.PutUint32(chHdr[4:], uint32(len(ch.Bytes)))
		if err := w.write(chHdr[:]); err != nil {
			return err
		}
		if err := w.write(ch.Bytes); err != nil {
			return err
		}
	}
	return nil
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 {
	return w.written
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.written += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// containerPayload returns the bytes stored for ch under mode, ignoring the model.
func containerPayload(ch *Chunk, mode Mode) []byte {
	if mode == ModeRecompress && ch.Tag.Compressed() {
		return Compress(ch.Data)
	}
	return ch.Stored
}

// WriteTo writes the container in canonical order with stored payloads.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	return c.Encode(w, ModePreserve)
}

// Encode writes the container. ModeFromModel needs a City and is rejected.
func (c *Container) Encode(w io.Writer, mode Mode) (int64, error) {
	if mode == ModeFromModel {
		return 0, fmt.Errorf("%w: a bare container has no model to encode from", ErrUnsupported)
	}
	chunks := make([]Payload, 0, len(c.chunks))
	for _, ch := range c.chunks {
		chunks = append(chunks, Payload{Tag: ch.Tag, Bytes: containerPayload(ch, mode)})
	}
	cw := NewWriter(w)
	err := cw.WriteContainer(c.Header.FileType, c.Header.Marker, chunks)
	return cw.Written(), err
}

// Encode writes the city as a save file and returns the number of bytes
// written. It reads the model and never modifies it.
func (city *City) Encode(w io.Writer, mode Mode) (int64, error) {
	if city.Container == nil {
		return 0, fmt.Errorf("%w: city has no source container", ErrUnsupported)
	}
	if mode != ModeFromModel {
		return city.Container.Encode(w, mode)
	}

	if err := city.checkModelTargets(); err != nil {
		return 0, err
	}
	chunks := make([]Payload, 0, city.Container.Len())
	for _, ch := range city.Container.chunks {
		p, err := city.modelPayload(ch)
		if err != nil {
			return 0, fmt.Errorf("chunk %s: %w", ch.Tag, err)
		}
		chunks = append(chunks, Payload{Tag: ch.Tag, Bytes: p})
	}
	cw := NewWriter(w)
	h := city.Container.Header
	err := cw.WriteContainer(h.FileType, h.Marker, chunks)
	return cw.Written(), err
}

// checkModelTargets fails when the model holds values that no chunk of the
// source container can carry.
func (city *City) checkModelTargets() error {
	has := func(t Tag) bool {
		_, ok := city.Container.Chunk(t)
		return ok
	}
	if !has(TagMisc) && city.Stats != (Stats{}) {
		return fmt.Errorf("%w: stats set but the save has no %s chunk", ErrUnsupported, TagMisc)
	}
	if !has(TagPicture) && city.Picture != nil {
		return fmt.Errorf("%w: picture set but the save has no %s chunk", ErrUnsupported, TagPicture)
	}
	if city.Map == nil {
		return nil
	}
	for a := range attrCount {
		t := a.chunkTag()
		if has(t) || city.Map.Coverage(a) == 0 {
			continue
		}
		return fmt.Errorf("%w: tiles carry %s but the save has no %s chunk", ErrUnsupported, a, t)
	}
	return nil
}

func (city *City) modelPayload(ch *Chunk) ([]byte, error) {
	switch ch.Tag {
	case TagName:
		if DecodeName(ch.Data) != city.Name {
			return nil, fmt.Errorf("%w: city name changes cannot be written back", ErrUnsupported)
		}
		return ch.Stored, nil
	case TagPicture:
		if city.Picture != nil && !city.Picture.sameHeader(ch.Data) {
			return nil, fmt.Errorf("%w: picture header changes cannot be written back", ErrUnsupported)
		}
		return ch.Stored, nil
	case TagAltitude:
		return city.Map.AltitudeBytes(ch.Data), nil
	case TagMisc:
		return Compress(overlayStats(ch.Data, city.Stats)), nil
	}
	if a, ok := LayerAttribute(ch.Tag); ok {
		return Compress(city.Map.LayerBytes(a, ch.Data)), nil
	}
	return containerPayload(ch, ModeRecompress), nil
}

// WriteFile encodes the city to path and returns the resulting file size.
func WriteFile(path string, city *City, mode Mode) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	bw := bufio.NewWriter(f)
	n, err := city.Encode(bw, mode)
	if err == nil {
		err = bw.Flush()
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	if err == nil {
		if serr := f.Sync(); serr != nil {
			err = fmt.Errorf("%w: %w", ErrIO, serr)
		}
	}
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("%w: %w", ErrIO, cerr)
	}
	if err != nil {
		return 0, errors.Join(err, os.Remove(path))
	}

	st, err := os.Stat(path)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return st.Size(), nil
}
