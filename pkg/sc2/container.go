package sc2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Header is the 12-byte file header.
type Header struct {
	FileType uint32
	// Length counts the marker plus every chunk, but not FileType or itself.
	Length uint32
	Marker uint32
}

// Valid reports whether the header carries the FORM/SCDH markers of a city
// save. The parser does not require it.
func (h Header) Valid() bool {
	return h.FileType == FileTypeFORM && h.Marker == MarkerSCDH
}

// chunkArea returns the number of bytes the chunk sequence must occupy.
func (h Header) chunkArea() (int, error) {
	if h.Length < 4 {
		return 0, fmt.Errorf("%w: declared length %d is shorter than the container marker", ErrTruncatedChunk, h.Length)
	}
	return int(h.Length - 4), nil
}

func decodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: file header needs %d bytes, have %d", ErrTruncatedChunk, HeaderSize, len(b))
	}
	return Header{
		FileType: binary.BigEndian.Uint32(b[0:4]),
		Length:   binary.BigEndian.Uint32(b[4:8]),
		Marker:   binary.BigEndian.Uint32(b[8:12]),
	}, nil
}

func encodeHeader(b []byte, h Header) {
	binary.BigEndian.PutUint32(b[0:4], h.FileType)
	binary.BigEndian.PutUint32(b[4:8], h.Length)
	binary.BigEndian.PutUint32(b[8:12], h.Marker)
}

// Chunk is one tagged payload of the container.
type Chunk struct {
	Tag Tag
	// Length is the stored (possibly compressed) payload size.
	Length uint32
	// Stored is the payload exactly as it appears in the file.
	Stored []byte
	// Data is the decompressed payload; it is Stored for raw and unknown tags.
	Data []byte
}

// Container is the parsed chunk sequence. Chunks are indexed by tag; a
// repeated tag keeps its first position and the last payload.
type Container struct {
	Header Header

	chunks   []*Chunk
	index    map[Tag]int
	replaced []Tag
}

// NewContainer returns an empty container with the given header.
func NewContainer(h Header) *Container {
	return &Container{
		Header: h,
		index:  make(map[Tag]int),
	}
}

// Put records ch under its tag, replacing any chunk with the same tag.
func (c *Container) Put(ch *Chunk) {
	if i, ok := c.index[ch.Tag]; ok {
		c.chunks[i] = ch
		c.replaced = append(c.replaced, ch.Tag)
		return
	}
	c.index[ch.Tag] = len(c.chunks)
	c.chunks = append(c.chunks, ch)
}

// Chunk returns the chunk stored under t.
func (c *Container) Chunk(t Tag) (*Chunk, bool) {
	i, ok := c.index[t]
	if !ok {
		return nil, false
	}
	return c.chunks[i], true
}

// Chunks returns the chunks in canonical (first-seen) order.
func (c *Container) Chunks() []*Chunk {
	out := make([]*Chunk, len(c.chunks))
	copy(out, c.chunks)
	return out
}

func (c *Container) Len() int {
	return len(c.chunks)
}

// Replaced lists, in file order, each tag occurrence that overwrote an
// earlier chunk with the same tag.
func (c *Container) Replaced() []Tag {
	return append([]Tag(nil), c.replaced...)
}

// walk parses the header and calls fn for every chunk, in file order, after
// its payload has been copied and decompressed.
func walk(data []byte, fn func(*Chunk) error) (Header, error) {
	h, err := decodeHeader(data)
	if err != nil {
		return Header{}, err
	}
	area, err := h.chunkArea()
	if err != nil {
		return Header{}, err
	}

	cursor := 0
	for cursor < area {
		off := HeaderSize + cursor
		if area-cursor < chunkHeaderSize || len(data)-off < chunkHeaderSize {
			return Header{}, fmt.Errorf("%w: chunk header at offset %d crosses the end of the container", ErrTruncatedChunk, off)
		}
		tag := tagFromBytes(data[off:])
		size := binary.BigEndian.Uint32(data[off+4:])

		start := off + chunkHeaderSize
		avail := min(area-cursor-chunkHeaderSize, len(data)-start)
		if uint64(size) > uint64(avail) {
			return Header{}, fmt.Errorf("%w: chunk %s at offset %d declares %d bytes, %d remain", ErrTruncatedChunk, tag, off, size, avail)
		}

		stored := bytes.Clone(data[start : start+int(size)])
		payload := stored
		if tag.Compressed() {
			payload, err = Decompress(stored)
			if err != nil {
				return Header{}, fmt.Errorf("chunk %s: %w", tag, err)
			}
		}
		ch := &Chunk{Tag: tag, Length: size, Stored: stored, Data: payload}
		if err := fn(ch); err != nil {
			return Header{}, err
		}

		cursor += chunkHeaderSize + int(size)
	}
	return h, nil
}

// Parse decodes the container structure of a save held in memory.
// Payloads are copied, so data may be reused after Parse returns.
func Parse(data []byte) (*Container, error) {
	c := NewContainer(Header{})
	h, err := walk(data, func(ch *Chunk) error {
		c.Put(ch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.Header = h
	return c, nil
}

// ParseReader reads r to the end and parses it.
func ParseReader(r io.Reader) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return Parse(data)
}

// readFile maps path read-only and hands the bytes to fn, falling back to
// a plain read where mmap is unavailable. The mapping is released when fn
// returns, so fn must not retain data.
func readFile(path string, fn func(data []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return fmt.Errorf("%w: %s is too large to map", ErrIO, path)
	}
	size := int(size64)
	if size == 0 {
		return fn(nil)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		defer func() { _ = unix.Munmap(data) }()
		return fn(data)
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return fn(data)
}

// Open reads and parses the container at path. The file is closed before
// Open returns.
func Open(path string) (*Container, error) {
	var c *Container
	err := readFile(path, func(data []byte) error {
		var err error
		c, err = Parse(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
