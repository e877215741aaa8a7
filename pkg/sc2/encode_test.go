package sc2

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPreserveRoundTripIsByteIdentical(t *testing.T) {
	t.Parallel()

	orig, err := os.ReadFile(utopiaPath)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	city, err := Decode(orig)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var buf bytes.Buffer
	n, err := city.Encode(&buf, ModePreserve)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if n != int64(len(orig)) {
		t.Fatalf("written: got %d want %d", n, len(orig))
	}
	if !bytes.Equal(buf.Bytes(), orig) {
		t.Fatalf("preserve round trip is not byte-identical")
	}
}

func TestWriteFileReportsOriginalSize(t *testing.T) {
	t.Parallel()

	st, err := os.Stat(utopiaPath)
	if err != nil {
		t.Fatalf("stat fixture: %v", err)
	}
	city := loadUtopia(t)
	out := filepath.Join(t.TempDir(), "out.sc2")
	size, err := WriteFile(out, city, ModePreserve)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if size != st.Size() {
		t.Fatalf("file size: got %d want %d", size, st.Size())
	}
}

func TestRecompressRoundTripDecodesEqual(t *testing.T) {
	t.Parallel()

	city := loadUtopia(t)
	var buf bytes.Buffer
	if _, err := city.Encode(&buf, ModeRecompress); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode re-encoded: %v", err)
	}
	if again.Name != city.Name || again.Stats != city.Stats {
		t.Fatalf("model changed: %q %+v", again.Name, again.Stats)
	}
	for _, ch := range city.Container.Chunks() {
		got, ok := again.Container.Chunk(ch.Tag)
		if !ok {
			t.Fatalf("chunk %s lost", ch.Tag)
		}
		if !bytes.Equal(got.Data, ch.Data) {
			t.Fatalf("chunk %s payload changed", ch.Tag)
		}
	}
}

func TestFromModelWritesEdits(t *testing.T) {
	t.Parallel()

	city := loadUtopia(t)
	city.Stats.Money = 12345
	city.Map.At(4, 9).Set(AttrZone, 6)
	city.Map.At(4, 9).Set(AttrAltitude, 15)
	city.Map.At(4, 9).Set(AttrWater, 0)

	var buf bytes.Buffer
	if _, err := city.Encode(&buf, ModeFromModel); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if again.Stats.Money != 12345 || again.Stats.YearFounded != 1900 {
		t.Fatalf("stats: %+v", again.Stats)
	}
	tile := again.Map.At(4, 9)
	if v, _ := tile.Get(AttrZone); v != 6 {
		t.Fatalf("zone: got %d want 6", v)
	}
	if v, _ := tile.Get(AttrAltitude); v != 15 {
		t.Fatalf("altitude: got %d want 15", v)
	}

	origMisc, _ := city.Container.Chunk(TagMisc)
	newMisc, _ := again.Container.Chunk(TagMisc)
	if !bytes.Equal(origMisc.Data[StatsSize:], newMisc.Data[StatsSize:]) {
		t.Fatalf("MISC bytes past the record changed")
	}

	origAlt, _ := city.Container.Chunk(TagAltitude)
	newAlt, _ := again.Container.Chunk(TagAltitude)
	i := 2 * (9*MapSize + 4)
	if ExtractBits(uint16(origAlt.Data[i])<<8|uint16(origAlt.Data[i+1]), 8, 8) !=
		ExtractBits(uint16(newAlt.Data[i])<<8|uint16(newAlt.Data[i+1]), 8, 8) {
		t.Fatalf("unextracted altitude bits changed")
	}
}

func TestFromModelUnchangedMatchesData(t *testing.T) {
	t.Parallel()

	city := loadUtopia(t)
	var buf bytes.Buffer
	if _, err := city.Encode(&buf, ModeFromModel); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, ch := range city.Container.Chunks() {
		got, _ := again.Container.Chunk(ch.Tag)
		if !bytes.Equal(got.Data, ch.Data) {
			t.Fatalf("chunk %s payload changed without edits", ch.Tag)
		}
	}
}

func TestFromModelUnsupportedEdits(t *testing.T) {
	t.Parallel()

	city := loadUtopia(t)
	city.Name = "Dystopia"
	if _, err := city.Encode(&bytes.Buffer{}, ModeFromModel); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("name edit: got err %v want ErrUnsupported", err)
	}

	pict := []byte{0x80, 0, 0, 0, 0, 4, 0, 4, 9}
	withPict, err := Decode(buildSave(rawChunk{"PICT", pict}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	withPict.Picture.Width = 8
	if _, err := withPict.Encode(&bytes.Buffer{}, ModeFromModel); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("picture edit: got err %v want ErrUnsupported", err)
	}

	if _, err := withPict.Container.Encode(&bytes.Buffer{}, ModeFromModel); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("bare container: got err %v want ErrUnsupported", err)
	}
}

func TestContainerWriteToRecomputesLength(t *testing.T) {
	t.Parallel()

	data := buildSave(rawChunk{"CNAM", []byte("abc")}, rawChunk{"XTER", []byte{130, 1}})
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c.Put(&Chunk{Tag: "NEWT", Length: 2, Stored: []byte{1, 2}, Data: []byte{1, 2}})

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	again, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if again.Len() != 3 {
		t.Fatalf("chunk count: got %d want 3", again.Len())
	}
	if int(again.Header.Length) != buf.Len()-8 {
		t.Fatalf("declared length %d does not match %d written", again.Header.Length, buf.Len())
	}
}

func TestWriterRejectsBadTag(t *testing.T) {
	t.Parallel()

	w := NewWriter(&bytes.Buffer{})
	if err := w.WriteContainer(FileTypeFORM, MarkerSCDH, []Payload{{Tag: "LONGTAG"}}); err == nil {
		t.Fatalf("expected error for a tag that is not four bytes")
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{ModePreserve, ModeRecompress, ModeFromModel} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q): got %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("zip"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestFromModelRejectsEditsWithoutChunk(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T) *City {
		t.Helper()
		city, err := Decode(buildSave(rawChunk{"CNAM", []byte{31, 'T', 0}}))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return city
	}

	cases := map[string]func(*City){
		"stats without MISC":      func(c *City) { c.Stats.Money = 999 },
		"layer without its chunk": func(c *City) { c.Map.At(3, 3).Set(AttrZone, 2) },
		"water without ALTM":      func(c *City) { c.Map.At(0, 0).Set(AttrWater, 1) },
		"picture without PICT":    func(c *City) { c.Picture = &Picture{Width: 4, Height: 4} },
	}
	for name, edit := range cases {
		city := decode(t)
		edit(city)
		if _, err := city.Encode(&bytes.Buffer{}, ModeFromModel); !errors.Is(err, ErrUnsupported) {
			t.Fatalf("%s: got err %v want ErrUnsupported", name, err)
		}
	}

	city := decode(t)
	var buf bytes.Buffer
	if _, err := city.Encode(&buf, ModeFromModel); err != nil {
		t.Fatalf("unedited save: %v", err)
	}
}
