package sc2

// ExtractBits returns the length-bit field of value starting at bit start,
// where bit 0 is the least significant. start+length must not exceed 16.
func ExtractBits(value uint16, start, length uint8) uint16 {
	mask := uint16(1)<<length - 1
	return (value >> start) & mask
}

// InsertBits replaces the length-bit field of value starting at bit start
// with field, leaving every other bit untouched.
func InsertBits(value, field uint16, start, length uint8) uint16 {
	mask := (uint16(1)<<length - 1) << start
	return value&^mask | (field<<start)&mask
}
