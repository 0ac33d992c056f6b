package buf

import "math"

// add returns a+b, or false when the sum overflows int. Both operands are
// offsets or lengths and never negative here.
func add(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// Span returns the end of count consecutive slots of size bytes starting at
// off, or false when they do not fit in n bytes.
//
//	end, ok := buf.Span(len(payload), off, schema.GrantSlots, schema.GrantSlotSize)
func Span(n, off, count, size int) (int, bool) {
	if count < 0 || size < 0 || (size > 0 && count > math.MaxInt/size) {
		return 0, false
	}
	end, ok := add(off, count*size)
	if !ok || end > n {
		return 0, false
	}
	return end, true
}

// Slice returns b[off:off+n] if it lies within b.
func Slice(b []byte, off, n int) ([]byte, bool) {
	end, ok := add(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] lies within b.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
