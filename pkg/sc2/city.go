package sc2

import (
	"fmt"

	"github.com/goccy/go-json"
)

// City is the decoded model of a save: the container it was read from plus
// the typed values extracted from its chunks.
type City struct {
	Container *Container
	Name      string
	Stats     Stats
	Map       *Map
	// Picture is nil when the save has no PICT chunk.
	Picture *Picture
	Report  Report
}

// Report records what the decoder tolerated instead of failing.
type Report struct {
	// Unknown lists tags outside the documented set, stored opaque.
	Unknown []Tag
	// Partial maps grid tags whose payload covered fewer than TileCount
	// tiles to the number of tiles written.
	Partial map[Tag]int
	// Excess maps grid tags whose payload ran past the grid to the number
	// of cells ignored.
	Excess map[Tag]int
	// Replaced lists tags that occurred more than once.
	Replaced []Tag
}

func newCity() *City {
	return &City{
		Map: NewMap(),
		Report: Report{
			Partial: make(map[Tag]int),
			Excess:  make(map[Tag]int),
		},
	}
}

// Decode parses a save held in memory into a City. Chunks are applied in
// file order as they are read, so a repeated grid tag layers over the
// tiles written by its earlier occurrence.
func Decode(data []byte) (*City, error) {
	city := newCity()
	c := NewContainer(Header{})
	h, err := walk(data, func(ch *Chunk) error {
		if err := city.apply(ch); err != nil {
			return fmt.Errorf("chunk %s: %w", ch.Tag, err)
		}
		c.Put(ch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.Header = h
	city.Container = c
	city.Report.Replaced = c.Replaced()
	return city, nil
}

// Load reads and decodes the save at path.
func Load(path string) (*City, error) {
	city, _, err := LoadSize(path)
	return city, err
}

// LoadSize is Load that also returns the number of bytes decoded.
func LoadSize(path string) (*City, int, error) {
	var (
		city *City
		size int
	)
	err := readFile(path, func(data []byte) error {
		var err error
		size = len(data)
		city, err = Decode(data)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return city, size, nil
}

func (city *City) apply(ch *Chunk) error {
	switch ch.Tag {
	case TagName:
		city.Name = DecodeName(ch.Data)
	case TagMisc:
		s, err := DecodeStats(ch.Data)
		if err != nil {
			return err
		}
		city.Stats = s
	case TagPicture:
		p, err := DecodePicture(ch.Data)
		if err != nil {
			return err
		}
		city.Picture = p
	case TagAltitude:
		written, excess, err := city.Map.ApplyAltitude(ch.Data)
		if err != nil {
			return err
		}
		city.noteCoverage(ch.Tag, written, excess)
	default:
		if a, ok := LayerAttribute(ch.Tag); ok {
			written, excess := city.Map.ApplyLayer(a, ch.Data)
			city.noteCoverage(ch.Tag, written, excess)
			return nil
		}
		if !ch.Tag.Known() {
			city.Report.Unknown = append(city.Report.Unknown, ch.Tag)
		}
	}
	return nil
}

func (city *City) noteCoverage(t Tag, written, excess int) {
	if written < TileCount {
		city.Report.Partial[t] = written
	}
	if excess > 0 {
		city.Report.Excess[t] = excess
	}
}

type cityJSON struct {
	Name  string `json:"name"`
	Stats Stats  `json:"stats"`
	Tiles *Map   `json:"tiles"`
}

// MarshalJSON encodes the projection {"name", "stats", "tiles"}.
func (city *City) MarshalJSON() ([]byte, error) {
	return json.Marshal(cityJSON{
		Name:  city.Name,
		Stats: city.Stats,
		Tiles: city.Map,
	})
}
