package format

import (
	"errors"

	"github.com/joshuapare/tblkit/internal/mmfile"
)

// View opens the table at path read-only and passes its bytes to fn.
// The slice must not be retained after fn returns.
func View(path string, fn func(b []byte) error) (err error) {
	f, err := mmfile.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return fn(f.Bytes())
}
