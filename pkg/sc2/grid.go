package sc2

import (
	"encoding/binary"
	"fmt"

	"github.com/goccy/go-json"
)

// Attribute identifies one per-tile value contributed by a chunk.
type Attribute uint8

const (
	AttrAltitude Attribute = iota
	AttrWater
	AttrTerrain
	AttrBuilding
	AttrZone
	AttrUnderground
	AttrText
	AttrBits
	AttrTraffic
	AttrPollution
	AttrLandValue
	AttrCrime
	AttrPolice
	AttrFire
	AttrPopulation
	AttrGrowth

	attrCount
)

// Bit layout of an ALTM word. Bits 4-6 and 8-15 are not extracted.
const (
	altitudeStart  = 0
	altitudeLength = 4
	waterStart     = 7
	waterLength    = 1
)

var attrTags = [attrCount]Tag{
	AttrAltitude:    TagAltitude,
	AttrWater:       TagWater,
	AttrTerrain:     TagTerrain,
	AttrBuilding:    TagBuilding,
	AttrZone:        TagZone,
	AttrUnderground: TagUnderground,
	AttrText:        TagText,
	AttrBits:        TagBits,
	AttrTraffic:     TagTraffic,
	AttrPollution:   TagPollution,
	AttrLandValue:   TagLandValue,
	AttrCrime:       TagCrime,
	AttrPolice:      TagPolice,
	AttrFire:        TagFire,
	AttrPopulation:  TagPopulation,
	AttrGrowth:      TagGrowth,
}

// byteLayers maps the one-byte-per-tile chunk tags to their attribute.
var byteLayers = map[Tag]Attribute{
	TagTerrain:     AttrTerrain,
	TagBuilding:    AttrBuilding,
	TagZone:        AttrZone,
	TagUnderground: AttrUnderground,
	TagText:        AttrText,
	TagBits:        AttrBits,
	TagTraffic:     AttrTraffic,
	TagPollution:   AttrPollution,
	TagLandValue:   AttrLandValue,
	TagCrime:       AttrCrime,
	TagPolice:      AttrPolice,
	TagFire:        AttrFire,
	TagPopulation:  AttrPopulation,
	TagGrowth:      AttrGrowth,
}

// Tag returns the attribute key, which is the contributing chunk tag.
func (a Attribute) Tag() Tag {
	if a >= attrCount {
		return ""
	}
	return attrTags[a]
}

// chunkTag returns the chunk that stores the attribute. Water lives in ALTM.
func (a Attribute) chunkTag() Tag {
	if a == AttrWater {
		return TagAltitude
	}
	return a.Tag()
}

func (a Attribute) String() string {
	return string(a.Tag())
}

// LayerAttribute returns the attribute filled by a one-byte-per-tile chunk.
func LayerAttribute(t Tag) (Attribute, bool) {
	a, ok := byteLayers[t]
	return a, ok
}

// Tile holds the attributes set on one grid cell.
type Tile struct {
	set    uint32
	values [attrCount]uint8
}

// Get returns the attribute value and whether it has been set.
func (t *Tile) Get(a Attribute) (uint8, bool) {
	if a >= attrCount || t.set&(1<<a) == 0 {
		return 0, false
	}
	return t.values[a], true
}

func (t *Tile) Set(a Attribute, v uint8) {
	if a >= attrCount {
		return
	}
	t.values[a] = v
	t.set |= 1 << a
}

func (t *Tile) Has(a Attribute) bool {
	return a < attrCount && t.set&(1<<a) != 0
}

// Len returns the number of attributes set on the tile.
func (t *Tile) Len() int {
	n := 0
	for s := t.set; s != 0; s &= s - 1 {
		n++
	}
	return n
}

// Attributes returns the set attributes in key order.
func (t *Tile) Attributes() []Attribute {
	out := make([]Attribute, 0, t.Len())
	for a := range attrCount {
		if t.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// tileJSON is the sparse wire form of a Tile. Fields follow attribute
// order; unset attributes are omitted.
type tileJSON struct {
	Altitude    *uint8 `json:"ALTM,omitempty"`
	Water       *uint8 `json:"WATR,omitempty"`
	Terrain     *uint8 `json:"XTER,omitempty"`
	Building    *uint8 `json:"XBLD,omitempty"`
	Zone        *uint8 `json:"XZON,omitempty"`
	Underground *uint8 `json:"XUND,omitempty"`
	Text        *uint8 `json:"XTXT,omitempty"`
	Bits        *uint8 `json:"XBIT,omitempty"`
	Traffic     *uint8 `json:"XTRF,omitempty"`
	Pollution   *uint8 `json:"XPLT,omitempty"`
	LandValue   *uint8 `json:"XVAL,omitempty"`
	Crime       *uint8 `json:"XCRM,omitempty"`
	Police      *uint8 `json:"XPLC,omitempty"`
	Fire        *uint8 `json:"XFIR,omitempty"`
	Population  *uint8 `json:"XPOP,omitempty"`
	Growth      *uint8 `json:"XROG,omitempty"`
}

func (t *Tile) wire() tileJSON {
	var w tileJSON
	fields := [attrCount]**uint8{
		&w.Altitude, &w.Water, &w.Terrain, &w.Building, &w.Zone,
		&w.Underground, &w.Text, &w.Bits, &w.Traffic, &w.Pollution,
		&w.LandValue, &w.Crime, &w.Police, &w.Fire, &w.Population, &w.Growth,
	}
	for a := range attrCount {
		if t.Has(a) {
			*fields[a] = &t.values[a]
		}
	}
	return w
}

// MarshalJSON encodes the tile as an object keyed by attribute tag.
func (t Tile) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.wire())
}

// Map is the fixed 128x128 tile grid, stored row-major.
type Map struct {
	tiles [TileCount]Tile
}

// NewMap returns a grid with every tile unset.
func NewMap() *Map {
	return &Map{}
}

// At returns the tile at column x, row y, or nil when out of range.
func (m *Map) At(x, y int) *Tile {
	if x < 0 || x >= MapSize || y < 0 || y >= MapSize {
		return nil
	}
	return &m.tiles[y*MapSize+x]
}

// Row returns row y, or nil when out of range. The slice aliases the map.
func (m *Map) Row(y int) []Tile {
	if y < 0 || y >= MapSize {
		return nil
	}
	return m.tiles[y*MapSize : (y+1)*MapSize]
}

// Coverage returns how many tiles carry attribute a.
func (m *Map) Coverage(a Attribute) int {
	n := 0
	for i := range m.tiles {
		if m.tiles[i].Has(a) {
			n++
		}
	}
	return n
}

// ApplyLayer writes one byte per tile in row-major order under attribute a.
// A short payload fills fewer tiles; bytes past the grid are not written and
// are reported as excess.
func (m *Map) ApplyLayer(a Attribute, data []byte) (written, excess int) {
	written = min(len(data), TileCount)
	for i := range written {
		m.tiles[i].Set(a, data[i])
	}
	return written, len(data) - written
}

// ApplyAltitude reads one big-endian word per tile and slices the altitude
// and water fields out of it.
func (m *Map) ApplyAltitude(data []byte) (written, excess int, err error) {
	if len(data)%2 != 0 {
		return 0, 0, fmt.Errorf("%w: altitude payload has odd length %d", ErrShortRecord, len(data))
	}
	words := len(data) / 2
	written = min(words, TileCount)
	for i := range written {
		w := binary.BigEndian.Uint16(data[2*i:])
		m.tiles[i].Set(AttrAltitude, uint8(ExtractBits(w, altitudeStart, altitudeLength)))
		m.tiles[i].Set(AttrWater, uint8(ExtractBits(w, waterStart, waterLength)))
	}
	return written, words - written, nil
}

// LayerBytes rebuilds a one-byte layer payload from the tiles. base supplies
// the bytes for tiles that do not carry the attribute; the result grows past
// base only as far as the last tile that does.
func (m *Map) LayerBytes(a Attribute, base []byte) []byte {
	n := len(base)
	for i := TileCount - 1; i >= n; i-- {
		if m.tiles[i].Has(a) {
			n = i + 1
			break
		}
	}
	out := make([]byte, n)
	copy(out, base)
	for i := range min(n, TileCount) {
		if v, ok := m.tiles[i].Get(a); ok {
			out[i] = v
		}
	}
	return out
}

// AltitudeBytes overlays the altitude and water fields of each tile onto the
// words in base. All other bits of each word are preserved.
func (m *Map) AltitudeBytes(base []byte) []byte {
	out := make([]byte, len(base))
	copy(out, base)
	for i := range min(len(out)/2, TileCount) {
		t := &m.tiles[i]
		w := binary.BigEndian.Uint16(out[2*i:])
		if v, ok := t.Get(AttrAltitude); ok {
			w = InsertBits(w, uint16(v), altitudeStart, altitudeLength)
		}
		if v, ok := t.Get(AttrWater); ok {
			w = InsertBits(w, uint16(v), waterStart, waterLength)
		}
		binary.BigEndian.PutUint16(out[2*i:], w)
	}
	return out
}

type rowJSON struct {
	Row []tileJSON `json:"row"`
}

func rowWire(row []Tile) rowJSON {
	out := rowJSON{Row: make([]tileJSON, len(row))}
	for x := range row {
		out.Row[x] = row[x].wire()
	}
	return out
}

// MarshalJSON encodes the grid as 128 row objects of 128 tile objects each.
func (m *Map) MarshalJSON() ([]byte, error) {
	rows := make([]rowJSON, MapSize)
	for y := range MapSize {
		rows[y] = rowWire(m.Row(y))
	}
	return json.Marshal(rows)
}

// Row is one grid row, encoded as {"row":[...]}.
type Row []Tile

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowWire(r))
}
