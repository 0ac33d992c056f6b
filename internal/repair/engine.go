// Package repair brings table files to a valid state on disk. Every
// destructive write is preceded by a verified backup copy of the original
// bytes.
package repair

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joshuapare/tblkit/internal/format"
	"github.com/joshuapare/tblkit/internal/logger"
	"github.com/joshuapare/tblkit/internal/schema"
)

// Options configures a Repairer.
type Options struct {
	// DryRun computes the correction without writing a backup or the table.
	DryRun bool

	// BackupSuffix names the backup sibling. Default: ".bak".
	BackupSuffix string

	// Logger receives progress records. Default: logger.L.
	Logger *slog.Logger

	now func() time.Time
}

// Repairer validates and repairs tables of one game variant.
type Repairer struct {
	variant schema.Variant
	opts    Options
	log     *slog.Logger
}

// New returns a Repairer for variant v.
func New(v schema.Variant, opts Options) *Repairer {
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = DefaultBackupSuffix
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Repairer{variant: v, opts: opts, log: logger.Or(opts.Logger).With("variant", v.String())}
}

// Variant returns the variant the Repairer was built for.
func (r *Repairer) Variant() schema.Variant { return r.variant }

// Repair rewrites the table at path so that every block_size matches the
// schema, the zero tail is gone, and every declared count matches the entries
// present.
//
// Process:
//  1. Read the table
//  2. Copy it aside (ErrBackupFailed aborts before any write)
//  3. Correct the bytes against the schema (ErrUnrecoverable on failure)
//  4. Check the corrected bytes
//  5. Replace the table atomically
//
// With an unsupported variant Repair does nothing and returns an error
// wrapping schema.ErrUnsupportedVariant.
func (r *Repairer) Repair(path string) (*Result, error) {
	start := time.Now()
	if !r.variant.Supported() {
		return nil, &RepairError{Path: path, Stage: "correct", Message: "no schema for variant",
			Cause: fmt.Errorf("%w: %d", schema.ErrUnsupportedVariant, int(r.variant))}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RepairError{Path: path, Stage: "read", Message: "reading table", Cause: err}
	}
	res := &Result{Path: path, Before: Digest(data), DryRun: r.opts.DryRun}

	if !r.opts.DryRun {
		backup, err := CreateBackup(path, r.opts.BackupSuffix, data, r.opts.now())
		if err != nil {
			return nil, &RepairError{Path: path, Stage: "backup", Message: "no safety copy, table untouched",
				Cause: errors.Join(ErrBackupFailed, err)}
		}
		res.BackupPath = backup
		r.log.Debug("backup written", "path", path, "backup", backup)
	}

	out, corr, err := format.Correct(data, r.variant)
	if err != nil {
		return nil, &RepairError{Path: path, Stage: "correct", Message: "cannot interpret under schema",
			Cause: errors.Join(ErrUnrecoverable, err)}
	}
	if err := format.Check(out, r.variant); err != nil {
		return nil, &RepairError{Path: path, Stage: "verify", Message: "corrected table still invalid",
			Cause: errors.Join(ErrUnrecoverable, err)}
	}
	res.Correction = corr
	res.After = Digest(out)
	res.Size = len(out)

	if !r.opts.DryRun && corr.Changed() {
		if err := WriteAtomic(path, out); err != nil {
			return nil, &RepairError{Path: path, Stage: "write", Message: "replacing table", Cause: err}
		}
	}
	res.Duration = time.Since(start)
	r.log.Info("table repaired", "path", path, "fixes", len(corr.Fixes), "dry_run", r.opts.DryRun)
	return res, nil
}

// Ensure validates the table at path and repairs it when invalid. The
// returned Outcome always carries the final state; errors are recorded on it,
// never returned.
func (r *Repairer) Ensure(path string) Outcome {
	o := Outcome{Path: path, State: StateUnknown}

	var issue error
	err := format.View(path, func(b []byte) error {
		issue = format.Check(b, r.variant)
		return nil
	})
	if err != nil {
		o.State = StateUnrecoverable
		o.Err = &RepairError{Path: path, Stage: "read", Message: "reading table", Cause: err}
		return o
	}
	if issue == nil {
		o.State = StateValid
		return o
	}

	o.State = StateInvalid
	o.Issue = issue
	r.log.Warn("table invalid", "path", path, "issue", issue)

	res, err := r.Repair(path)
	if err != nil {
		o.State = StateUnrecoverable
		o.Err = err
		r.log.Error("repair failed", "path", path, "err", err)
		return o
	}
	o.Repair = res
	if !res.DryRun {
		o.State = StateValid
	}
	return o
}

// EnsureAll runs Ensure over paths in order. A failing file never stops the
// batch.
func (r *Repairer) EnsureAll(paths []string) []Outcome {
	out := make([]Outcome, 0, len(paths))
	for _, p := range paths {
		out = append(out, r.Ensure(p))
	}
	return out
}

// Failed returns the outcomes that ended UNRECOVERABLE.
func Failed(outcomes []Outcome) []Outcome {
	var bad []Outcome
	for _, o := range outcomes {
		if o.State == StateUnrecoverable {
			bad = append(bad, o)
		}
	}
	return bad
}
