package mmfile

import (
	"fmt"
	"os"
)

// MapThreshold is the smallest file size worth mapping.
const MapThreshold = 1 << 20

// File is a read-only view of a file's bytes.
type File struct {
	path   string
	data   []byte
	mapped bool
}

// Open returns a view of the file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("mmfile: %s is a directory", path)
	}
	size := info.Size()
	if size > int64(maxInt) {
		return nil, fmt.Errorf("mmfile: %s too large (%d bytes)", path, size)
	}

	v := &File{path: path}
	if size >= MapThreshold {
		if v.data, err = mapFile(f, int(size)); err == nil {
			v.mapped = true
			return v, nil
		}
	}
	v.data = make([]byte, size)
	if _, err := f.ReadAt(v.data, 0); err != nil && size > 0 {
		return nil, fmt.Errorf("mmfile: reading %s: %w", path, err)
	}
	return v, nil
}

const maxInt = int(^uint(0) >> 1)

// Bytes returns the file contents. The slice is invalid after Close.
func (f *File) Bytes() []byte { return f.data }

// Len returns the file size.
func (f *File) Len() int { return len(f.data) }

// Mapped reports whether the contents are memory mapped.
func (f *File) Mapped() bool { return f.mapped }

// Close releases the view. Closing twice is a no-op.
func (f *File) Close() error {
	data, mapped := f.data, f.mapped
	f.data, f.mapped = nil, false
	if !mapped || data == nil {
		return nil
	}
	if err := unmap(data); err != nil {
		return fmt.Errorf("mmfile: unmapping %s: %w", f.path, err)
	}
	return nil
}
