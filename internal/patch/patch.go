// Package patch rewrites 2-byte ID fields inside table files in place. File
// length and every other byte are left untouched.
package patch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Kind names what a patched field refers to.
type Kind int

const (
	KindItemID Kind = iota // item record ID
	KindAttachRef          // AttachTableData target item
	KindGrantRef           // dlc grant slot item
	KindDLCID              // dlc record ID
)

func (k Kind) String() string {
	switch k {
	case KindItemID:
		return "item"
	case KindAttachRef:
		return "attach"
	case KindGrantRef:
		return "grant"
	case KindDLCID:
		return "dlc"
	default:
		return "unknown"
	}
}

// Patch is one planned 2-byte rewrite.
type Patch struct {
	Path   string
	Offset int64
	Old    uint16 // Value the field must hold before writing
	New    uint16
	Kind   Kind
}

func (p Patch) String() string {
	return fmt.Sprintf("%s %s@0x%X %d->%d", p.Kind, p.Path, p.Offset, p.Old, p.New)
}

// Inverse returns the patch that undoes p.
func (p Patch) Inverse() Patch {
	p.Old, p.New = p.New, p.Old
	return p
}

// PatchU16 writes v little-endian at offset in the file at path. The write
// must fall inside the current file.
func PatchU16(path string, offset int64, v uint16) error {
	f, err := openLocked(path)
	if err != nil {
		return err
	}
	defer closeLocked(f)

	if err := checkRange(f, offset); err != nil {
		return err
	}
	if err := writeU16(f, offset, v); err != nil {
		return err
	}
	return datasync(f)
}

// ReadU16 reads the little-endian value at offset in the file at path.
func ReadU16(path string, offset int64) (uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return readU16(f, offset)
}

func openLocked(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return f, nil
}

func closeLocked(f *os.File) error {
	return errors.Join(unlockFile(f), f.Close())
}

func checkRange(f *os.File, offset int64) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if offset < 0 || offset+2 > info.Size() {
		return fmt.Errorf("%w: 0x%X in %d-byte file", ErrOutOfRange, offset, info.Size())
	}
	return nil
}

func readU16(f io.ReaderAt, offset int64) (uint16, error) {
	var b [2]byte
	if _, err := f.ReadAt(b[:], offset); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: 0x%X", ErrOutOfRange, offset)
		}
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func writeU16(f io.WriterAt, offset int64, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := f.WriteAt(b[:], offset)
	return err
}
