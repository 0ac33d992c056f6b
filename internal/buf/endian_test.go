package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := U16LE(data); got != 0x2301 {
		t.Fatalf("U16LE = 0x%x, want 0x2301", got)
	}
	if got := I32LE(data[4:]); got != -0x10325477 {
		t.Fatalf("I32LE = %d, want %d", got, -0x10325477)
	}

	short := []byte{0xAA}
	if U16LE(short) != 0 {
		t.Fatalf("U16LE short should be 0")
	}
	if I32LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
}

func TestPutHelpers(t *testing.T) {
	b := make([]byte, 6)
	if !PutU16LE(b, 0xBEEF) {
		t.Fatalf("PutU16LE failed on large enough buffer")
	}
	if b[0] != 0xEF || b[1] != 0xBE {
		t.Fatalf("PutU16LE wrote %x", b[:2])
	}
	if !PutI32LE(b[2:], -2) {
		t.Fatalf("PutI32LE failed on large enough buffer")
	}
	if I32LE(b[2:]) != -2 {
		t.Fatalf("PutI32LE round trip = %d", I32LE(b[2:]))
	}
	if PutU16LE(b[5:], 1) {
		t.Fatalf("PutU16LE should refuse a 1-byte buffer")
	}
	if PutI32LE(b[3:], 1) {
		t.Fatalf("PutI32LE should refuse a 3-byte buffer")
	}
}

func TestCString(t *testing.T) {
	data := []byte("item\x00\x10\x00dlc\x00")

	s, next, ok := CString(data, 0)
	if !ok || string(s) != "item" || next != 5 {
		t.Fatalf("CString(0) = %q,%d,%v", s, next, ok)
	}
	s, next, ok = CString(data, 7)
	if !ok || string(s) != "dlc" || next != len(data) {
		t.Fatalf("CString(7) = %q,%d,%v", s, next, ok)
	}
	if _, _, ok = CString([]byte("abc"), 0); ok {
		t.Fatalf("CString should fail without a terminator")
	}
	if _, _, ok = CString(data, len(data)+1); ok {
		t.Fatalf("CString should reject out-of-range offset")
	}
	s, _, ok = CString([]byte{0}, 0)
	if !ok || len(s) != 0 {
		t.Fatalf("CString on lone terminator = %q,%v", s, ok)
	}
}

func TestAllZero(t *testing.T) {
	if !AllZero(nil) || !AllZero([]byte{0, 0, 0}) {
		t.Fatalf("AllZero false for zero input")
	}
	if AllZero([]byte{0, 1, 0}) {
		t.Fatalf("AllZero true for non-zero input")
	}
}
