package sc2

import (
	"encoding/binary"
	"fmt"
)

// StatsSize is the number of MISC payload bytes the city record occupies.
const StatsSize = statsFieldCount * 4

const statsFieldCount = 18

// Stats is the global city record at the start of the decompressed MISC
// payload: 18 big-endian uint32 fields in fixed order, with no field tags.
type Stats struct {
	Header           uint32 `json:"header"`
	Mode             uint32 `json:"mode"`
	Rotation         uint32 `json:"rotation"`
	YearFounded      uint32 `json:"year_founded"`
	Age              uint32 `json:"age"`
	Money            uint32 `json:"money"`
	Bonds            uint32 `json:"bonds"`
	Level            uint32 `json:"level"`
	Status           uint32 `json:"status"`
	CityValue        uint32 `json:"city_value"`
	LandValue        uint32 `json:"land_value"`
	CrimeCount       uint32 `json:"crime_count"`
	TrafficCount     uint32 `json:"traffic_count"`
	Pollution        uint32 `json:"pollution"`
	CityFame         uint32 `json:"city_fame"`
	Advertising      uint32 `json:"advertising"`
	Garbage          uint32 `json:"garbage"`
	WorkForcePercent uint32 `json:"work_force_percent"`
}

var statsFieldNames = [statsFieldCount]string{
	"header", "mode", "rotation", "year_founded", "age", "money", "bonds",
	"level", "status", "city_value", "land_value", "crime_count",
	"traffic_count", "pollution", "city_fame", "advertising", "garbage",
	"work_force_percent",
}

// fields returns pointers to the record fields in storage order.
func (s *Stats) fields() [statsFieldCount]*uint32 {
	return [statsFieldCount]*uint32{
		&s.Header, &s.Mode, &s.Rotation, &s.YearFounded, &s.Age, &s.Money,
		&s.Bonds, &s.Level, &s.Status, &s.CityValue, &s.LandValue,
		&s.CrimeCount, &s.TrafficCount, &s.Pollution, &s.CityFame,
		&s.Advertising, &s.Garbage, &s.WorkForcePercent,
	}
}

// DecodeStats reads the record from the start of a decompressed MISC payload.
// Bytes past StatsSize belong to other MISC fields and are ignored.
func DecodeStats(b []byte) (Stats, error) {
	var s Stats
	for i, f := range s.fields() {
		off := i * 4
		if len(b) < off+4 {
			return Stats{}, fmt.Errorf("%w: field %s at offset %d needs 4 bytes, %d remain",
				ErrShortRecord, statsFieldNames[i], off, max(len(b)-off, 0))
		}
		*f = binary.BigEndian.Uint32(b[off:])
	}
	return s, nil
}

// PutStats writes the record into the first StatsSize bytes of b.
func PutStats(b []byte, s Stats) error {
	if len(b) < StatsSize {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortRecord, StatsSize, len(b))
	}
	for i, f := range s.fields() {
		binary.BigEndian.PutUint32(b[i*4:], *f)
	}
	return nil
}

// overlayStats returns a copy of the MISC payload with the record replaced.
func overlayStats(base []byte, s Stats) []byte {
	out := make([]byte, max(len(base), StatsSize))
	copy(out, base)
	_ = PutStats(out, s)
	return out
}

// Field returns a record field by its JSON name.
func (s Stats) Field(name string) (uint32, bool) {
	fs := s.fields()
	for i, n := range statsFieldNames {
		if n == name {
			return *fs[i], true
		}
	}
	return 0, false
}

// StatsFields lists the record field names in storage order.
func StatsFields() []string {
	return append([]string(nil), statsFieldNames[:]...)
}
