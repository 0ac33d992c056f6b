// Package buf contains bounds-checked little-endian helpers shared by the table codec.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// PutU16LE writes v at b[0:2]. It reports false when b is too short.
func PutU16LE(b []byte, v uint16) bool {
	if len(b) < 2 {
		return false
	}
	binary.LittleEndian.PutUint16(b, v)
	return true
}

// PutI32LE writes v at b[0:4]. It reports false when b is too short.
func PutI32LE(b []byte, v int32) bool {
	if len(b) < 4 {
		return false
	}
	binary.LittleEndian.PutUint32(b, uint32(v))
	return true
}
