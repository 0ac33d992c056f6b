// Package cle unwraps tables shipped inside the CLE cipher container.
//
// Container layout:
//
//	0x00  u32  magic 0x40104241
//	0x04  u32  plaintext size
//	0x08  ...  Blowfish-ECB ciphertext, floor(size/8)*8 bytes
//
// The decrypted bytes are a plain table and are validated before they
// replace the container on disk.
package cle

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blowfish"

	"github.com/joshuapare/tblkit/internal/format"
	"github.com/joshuapare/tblkit/internal/schema"
)

const (
	Magic      = 0x40104241
	HeaderSize = 8
	// OriginalSuffix names the sibling that keeps the encrypted container.
	OriginalSuffix = ".original_encrypted"
)

var key = []byte("ed8psv5_steam")

var (
	// ErrNotEncrypted indicates the data does not start with the CLE magic.
	ErrNotEncrypted = errors.New("cle: not encrypted")
	// ErrInvalidPlaintext indicates the decrypted bytes are not a valid table.
	ErrInvalidPlaintext = errors.New("cle: decrypted table invalid")
	// ErrTruncated indicates the container is shorter than its declared size.
	ErrTruncated = errors.New("cle: container truncated")
)

// IsEncrypted reports whether b starts with the CLE magic.
func IsEncrypted(b []byte) bool {
	return len(b) >= 4 && binary.LittleEndian.Uint32(b) == Magic
}

// IsEncryptedFile reports whether the file at path starts with the CLE magic.
func IsEncryptedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	var head [4]byte
	n, err := f.Read(head[:])
	if n < len(head) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return IsEncrypted(head[:]), nil
}

func newCipher() cipher.Block {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		panic(err) // fixed key, never fails
	}
	return c
}

// Decrypt returns the plaintext held by the container b.
func Decrypt(b []byte) ([]byte, error) {
	if !IsEncrypted(b) {
		return nil, ErrNotEncrypted
	}
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	size := int(binary.LittleEndian.Uint32(b[4:]))
	n := size / blowfish.BlockSize * blowfish.BlockSize
	if len(b)-HeaderSize < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, len(b)-HeaderSize)
	}

	c := newCipher()
	out := make([]byte, n)
	for off := 0; off < n; off += blowfish.BlockSize {
		c.Decrypt(out[off:], b[HeaderSize+off:])
	}
	return out, nil
}

// Encrypt wraps plain in a CLE container. Trailing bytes past the last full
// block are dropped, as the container cannot carry them.
func Encrypt(plain []byte) []byte {
	n := len(plain) / blowfish.BlockSize * blowfish.BlockSize
	out := make([]byte, HeaderSize+n)
	binary.LittleEndian.PutUint32(out, Magic)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(plain)))

	c := newCipher()
	for off := 0; off < n; off += blowfish.BlockSize {
		c.Encrypt(out[HeaderSize+off:], plain[off:])
	}
	return out
}

// DecryptFile replaces the container at path with its validated plaintext.
// The container is kept as <path>.original_encrypted, whose path is
// returned. When the plaintext does not validate, nothing on disk changes.
func DecryptFile(path string, v schema.Variant) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	plain, err := Decrypt(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tblkit-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, werr := tmp.Write(plain)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing plaintext: %w", werr)
	}

	// Validate what landed on disk, not the in-memory copy.
	verr := format.View(tmpPath, func(b []byte) error { return format.Check(b, v) })
	if verr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%s: %w: %w", path, ErrInvalidPlaintext, verr)
	}

	original := path + OriginalSuffix
	if _, err := os.Lstat(original); err == nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%s already exists", original)
	}
	if err := os.Rename(path, original); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving container aside: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// Put the container back so the table is not missing.
		os.Rename(original, path)
		os.Remove(tmpPath)
		return "", fmt.Errorf("installing plaintext: %w", err)
	}
	return original, nil
}
