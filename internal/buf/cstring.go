package buf

import "bytes"

// CString returns the bytes of the null-terminated string starting at off and
// the offset just past its terminator. ok is false when no terminator exists
// before the end of b.
func CString(b []byte, off int) (s []byte, next int, ok bool) {
	if off < 0 || off > len(b) {
		return nil, off, false
	}
	n := bytes.IndexByte(b[off:], 0)
	if n < 0 {
		return nil, off, false
	}
	return b[off : off+n], off + n + 1, true
}

// AllZero reports whether every byte of b is zero. An empty slice is all zero.
func AllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
