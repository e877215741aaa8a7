package sc2

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestApplyLayerRowMajor(t *testing.T) {
	t.Parallel()

	m := NewMap()
	data := make([]byte, TileCount)
	for i := range data {
		data[i] = byte(i / MapSize)
	}
	data[MapSize+5] = 200
	written, excess := m.ApplyLayer(AttrZone, data)
	if written != TileCount || excess != 0 {
		t.Fatalf("written %d excess %d", written, excess)
	}
	if v, _ := m.At(5, 1).Get(AttrZone); v != 200 {
		t.Fatalf("tile (5,1): got %d want 200", v)
	}
	if v, _ := m.At(127, 127).Get(AttrZone); v != 127 {
		t.Fatalf("tile (127,127): got %d want 127", v)
	}
}

func TestApplyLayerPartialLeavesDefaults(t *testing.T) {
	t.Parallel()

	m := NewMap()
	written, excess := m.ApplyLayer(AttrCrime, bytes.Repeat([]byte{9}, 4096))
	if written != 4096 || excess != 0 {
		t.Fatalf("written %d excess %d", written, excess)
	}
	if v, ok := m.At(MapSize-1, 31).Get(AttrCrime); !ok || v != 9 {
		t.Fatalf("last written tile: got %d %v", v, ok)
	}
	if m.At(0, 32).Has(AttrCrime) {
		t.Fatalf("tile past payload must stay unset")
	}
	if m.Coverage(AttrCrime) != 4096 {
		t.Fatalf("coverage: got %d want 4096", m.Coverage(AttrCrime))
	}
}

func TestApplyLayerIgnoresExcess(t *testing.T) {
	t.Parallel()

	m := NewMap()
	written, excess := m.ApplyLayer(AttrText, make([]byte, TileCount+10))
	if written != TileCount || excess != 10 {
		t.Fatalf("written %d excess %d", written, excess)
	}
}

func TestApplyAltitude(t *testing.T) {
	t.Parallel()

	m := NewMap()
	written, _, err := m.ApplyAltitude([]byte{0x01, 0x85, 0x00, 0x03})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if written != 2 {
		t.Fatalf("written: got %d want 2", written)
	}
	tile := m.At(0, 0)
	if v, _ := tile.Get(AttrAltitude); v != 5 {
		t.Fatalf("altitude: got %d want 5", v)
	}
	if v, _ := tile.Get(AttrWater); v != 1 {
		t.Fatalf("water: got %d want 1", v)
	}
	if v, _ := m.At(1, 0).Get(AttrWater); v != 0 {
		t.Fatalf("tile 1 water: got %d want 0", v)
	}
	if m.At(2, 0).Has(AttrAltitude) {
		t.Fatalf("tile past payload must stay unset")
	}

	if _, _, err := m.ApplyAltitude([]byte{1, 2, 3}); !errors.Is(err, ErrShortRecord) {
		t.Fatalf("odd payload: got err %v want ErrShortRecord", err)
	}
}

func TestAltitudeBytesPreservesUnextractedBits(t *testing.T) {
	t.Parallel()

	base := []byte{0xAB, 0x75, 0x12, 0x80}
	m := NewMap()
	if _, _, err := m.ApplyAltitude(base); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := m.AltitudeBytes(base); !bytes.Equal(got, base) {
		t.Fatalf("unchanged model must reproduce words: got %x want %x", got, base)
	}

	m.At(0, 0).Set(AttrAltitude, 2)
	m.At(0, 0).Set(AttrWater, 1)
	got := m.AltitudeBytes(base)
	if got[0] != 0xAB || got[1] != 0xF2 {
		t.Fatalf("overlay: got %x want abf2", got[:2])
	}
	if base[1] != 0x75 {
		t.Fatalf("AltitudeBytes modified its input")
	}
}

func TestLayerBytes(t *testing.T) {
	t.Parallel()

	m := NewMap()
	base := []byte{1, 2, 3}
	m.ApplyLayer(AttrBuilding, base)
	m.At(1, 0).Set(AttrBuilding, 9)
	if got := m.LayerBytes(AttrBuilding, base); !bytes.Equal(got, []byte{1, 9, 3}) {
		t.Fatalf("got %v", got)
	}
	m.At(5, 0).Set(AttrBuilding, 7)
	if got := m.LayerBytes(AttrBuilding, base); !bytes.Equal(got, []byte{1, 9, 3, 0, 0, 7}) {
		t.Fatalf("grown layer: got %v", got)
	}
}

func TestTileJSON(t *testing.T) {
	t.Parallel()

	var tile Tile
	b, err := json.Marshal(tile)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "{}" {
		t.Fatalf("empty tile: got %s", b)
	}

	tile.Set(AttrZone, 3)
	tile.Set(AttrAltitude, 4)
	tile.Set(AttrWater, 0)
	b, err = json.Marshal(tile)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"ALTM":4,"WATR":0,"XZON":3}` {
		t.Fatalf("tile: got %s", b)
	}
	if tile.Len() != 3 || len(tile.Attributes()) != 3 {
		t.Fatalf("len: got %d", tile.Len())
	}
}

func TestMapJSONShape(t *testing.T) {
	t.Parallel()

	m := NewMap()
	m.At(0, 0).Set(AttrTerrain, 1)
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var rows []struct {
		Row []map[string]uint8 `json:"row"`
	}
	if err := json.Unmarshal(b, &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != MapSize {
		t.Fatalf("rows: got %d want %d", len(rows), MapSize)
	}
	for y, r := range rows {
		if len(r.Row) != MapSize {
			t.Fatalf("row %d: got %d tiles", y, len(r.Row))
		}
	}
	if rows[0].Row[0]["XTER"] != 1 {
		t.Fatalf("tile (0,0): got %v", rows[0].Row[0])
	}
	if !strings.HasPrefix(string(b), `[{"row":[{"XTER":1},{}`) {
		t.Fatalf("unexpected prefix: %.40s", b)
	}
}

func TestMapBounds(t *testing.T) {
	t.Parallel()

	m := NewMap()
	if m.At(-1, 0) != nil || m.At(0, MapSize) != nil || m.Row(MapSize) != nil {
		t.Fatalf("out of range access must return nil")
	}
	if len(m.Row(0)) != MapSize {
		t.Fatalf("row length: got %d", len(m.Row(0)))
	}
}

func TestLayerAttribute(t *testing.T) {
	t.Parallel()

	if a, ok := LayerAttribute(TagPolice); !ok || a.Tag() != TagPolice {
		t.Fatalf("XPLC: got %v %v", a, ok)
	}
	for _, tag := range []Tag{TagAltitude, TagMisc, TagName, TagLabels, "ABCD"} {
		if _, ok := LayerAttribute(tag); ok {
			t.Fatalf("%s must not be a one-byte layer", tag)
		}
	}
}

func TestRowJSON(t *testing.T) {
	t.Parallel()

	m := NewMap()
	m.At(0, 2).Set(AttrTerrain, 1)
	m.At(1, 2).Set(AttrGrowth, 0)
	m.At(1, 2).Set(AttrAltitude, 9)
	b, err := json.Marshal(Row(m.Row(2)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"row":[{"XTER":1},{"ALTM":9,"XROG":0},{}`) {
		t.Fatalf("unexpected prefix: %.60s", b)
	}
}
