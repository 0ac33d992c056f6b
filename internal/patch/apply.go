package patch

import (
	"errors"
	"fmt"
	"os"
)

// testHookBeforeWrite lets tests fail a write partway through a batch.
var testHookBeforeWrite func(Patch) error

type patchKey struct {
	path   string
	offset int64
}

// Apply writes a planned batch of patches as one logical unit.
//
// Process:
//  1. Open and lock every file touched by the batch
//  2. Verify every field still holds its Old value (ErrStale otherwise,
//     nothing written)
//  3. Write each patch in order, logging it
//  4. Sync every file
//
// If a write fails after another succeeded, the applied patches are
// restored and a *PartialPatchError is returned. The error is returned even
// when the restore succeeds.
func Apply(patches []Patch) (*Log, error) {
	log := NewLog()
	patches, err := dedupe(patches)
	if err != nil {
		return log, err
	}

	files := make(map[string]*os.File)
	var order []string
	defer func() {
		for _, p := range order {
			closeLocked(files[p])
		}
	}()
	for _, p := range patches {
		if _, ok := files[p.Path]; ok {
			continue
		}
		f, err := openLocked(p.Path)
		if err != nil {
			return log, err
		}
		files[p.Path] = f
		order = append(order, p.Path)
	}

	for _, p := range patches {
		f := files[p.Path]
		if err := checkRange(f, p.Offset); err != nil {
			return log, fmt.Errorf("%s: %w", p, err)
		}
		got, err := readU16(f, p.Offset)
		if err != nil {
			return log, fmt.Errorf("%s: %w", p, err)
		}
		if got != p.Old {
			return log, fmt.Errorf("%w: %s holds %d", ErrStale, p, got)
		}
	}

	for _, p := range patches {
		log.add(p)
		err := writePatch(files[p.Path], p)
		if err == nil {
			log.markApplied()
			continue
		}
		if log.AppliedCount() == 0 {
			return log, fmt.Errorf("%s: %w", p, err)
		}
		pe := &PartialPatchError{Applied: log.Applied(), Failed: p, Cause: err}
		if rbErr := rollback(files, pe.Applied); rbErr != nil {
			pe.RollbackErr = rbErr
		} else {
			pe.RolledBack = true
		}
		return log, pe
	}

	var syncErr error
	for _, path := range order {
		if err := datasync(files[path]); err != nil {
			syncErr = errors.Join(syncErr, fmt.Errorf("syncing %s: %w", path, err))
		}
	}
	return log, syncErr
}

func writePatch(f *os.File, p Patch) error {
	if testHookBeforeWrite != nil {
		if err := testHookBeforeWrite(p); err != nil {
			return err
		}
	}
	return writeU16(f, p.Offset, p.New)
}

// rollback restores applied patches in reverse order.
func rollback(files map[string]*os.File, applied []Patch) error {
	var errs error
	for i := len(applied) - 1; i >= 0; i-- {
		p := applied[i]
		if err := writeU16(files[p.Path], p.Offset, p.Old); err != nil {
			errs = errors.Join(errs, fmt.Errorf("restoring %s: %w", p, err))
		}
	}
	for _, f := range files {
		errs = errors.Join(errs, datasync(f))
	}
	return errs
}

// dedupe drops exact repeats of a patch and rejects two different patches
// for the same field.
func dedupe(patches []Patch) ([]Patch, error) {
	seen := make(map[patchKey]Patch, len(patches))
	out := make([]Patch, 0, len(patches))
	for _, p := range patches {
		k := patchKey{p.Path, p.Offset}
		if prev, ok := seen[k]; ok {
			if prev.Old == p.Old && prev.New == p.New {
				continue
			}
			return nil, fmt.Errorf("conflicting patches for one field: %s and %s", prev, p)
		}
		seen[k] = p
		out = append(out, p)
	}
	return out, nil
}
