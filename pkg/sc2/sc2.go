// Package sc2 implements the SimCity 2000 city save container.
//
// A save is an IFF-style container: a 12-byte header followed by tagged,
// length-prefixed chunks. Most chunk payloads are stored with a two-mode
// run-length scheme; the name, altitude and picture chunks are stored raw.
// The package decodes the container into a City model and can re-encode it.
package sc2

// Container constants must never change.
const (
	// HeaderSize is the size of the file header: type, declared length, marker.
	HeaderSize = 12

	// chunkHeaderSize is the size of a chunk tag plus its length field.
	chunkHeaderSize = 8

	// FileTypeFORM is the expected file type ("FORM").
	FileTypeFORM uint32 = 0x464F524D

	// MarkerSCDH is the expected container marker ("SCDH").
	MarkerSCDH uint32 = 0x53434448

	// MapSize is the width and height of the tile grid.
	MapSize = 128

	// TileCount is the number of tiles in the grid.
	TileCount = MapSize * MapSize
)
