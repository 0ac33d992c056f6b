package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tblkit/internal/logger"
	"github.com/joshuapare/tblkit/internal/repair"
)

var (
	repairDryRun       bool
	repairBackupSuffix string
)

var repairCmd = &cobra.Command{
	Use:   "repair [table...]",
	Short: "Repair table framing",
	Long: `Repairs tables whose framing does not validate.

The repair command:
1. Validates each table
2. Re-derives block sizes from the game's schema, drops trailing zero
   padding and rewrites the declared section counts
3. Writes a verified backup next to the table
4. Replaces the table atomically and validates it again

Valid tables are left untouched. With no arguments every table of the
install at --root is processed.`,
	Example: `  # Preview repairs without writing anything
  tblctl repair --dry-run --game 4 t_item.tbl

  # Repair every table of an install
  tblctl repair --root "C:/Games/CS4"

  # Repair with a custom backup suffix
  tblctl repair --backup-suffix .orig --game reverie t_item.tbl`,
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().BoolVarP(&repairDryRun, "dry-run", "n", false,
		"Preview repairs without applying them")
	repairCmd.Flags().StringVarP(&repairBackupSuffix, "backup-suffix", "b", repair.DefaultBackupSuffix,
		"Suffix for backup file")

	rootCmd.AddCommand(repairCmd)
}

type repairResult struct {
	File     string   `json:"file"`
	State    string   `json:"state"`
	Issue    string   `json:"issue,omitempty"`
	Backup   string   `json:"backup,omitempty"`
	Fixes    []string `json:"fixes,omitempty"`
	Error    string   `json:"error,omitempty"`
	Duration string   `json:"duration,omitempty"`
}

func runRepair(cmd *cobra.Command, args []string) error {
	v, err := gameVariant()
	if err != nil {
		return err
	}
	paths, err := tablePaths(v, args)
	if err != nil {
		return err
	}

	if repairDryRun {
		printInfo("Mode: DRY-RUN (no changes will be made)\n\n")
	}
	r := repair.New(v, repair.Options{
		DryRun:       repairDryRun,
		BackupSuffix: repairBackupSuffix,
		Logger:       logger.L,
	})
	outcomes := r.EnsureAll(paths)
	results := make([]repairResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, newRepairResult(o))
	}

	failed := repair.Failed(outcomes)
	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		printRepairResults(results)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d table(s) could not be repaired", len(failed))
	}
	return nil
}

func newRepairResult(o repair.Outcome) repairResult {
	res := repairResult{File: o.Path, State: o.State.String()}
	if o.Issue != nil {
		res.Issue = o.Issue.Error()
	}
	if o.Err != nil {
		res.Error = o.Err.Error()
	}
	if o.Repair != nil {
		res.Backup = o.Repair.BackupPath
		res.Duration = o.Repair.Duration.String()
		if o.Repair.Correction != nil {
			for _, f := range o.Repair.Correction.Fixes {
				res.Fixes = append(res.Fixes, f.String())
			}
		}
	}
	return res
}

func printRepairResults(results []repairResult) {
	for _, res := range results {
		status := "✓"
		if res.State != repair.StateValid.String() {
			status = "✗"
		}
		printInfo("%s %s: %s\n", status, res.File, res.State)
		if res.Issue != "" {
			printVerbose("    issue: %s\n", res.Issue)
		}
		if len(res.Fixes) > 0 {
			if repairDryRun {
				printInfo("    would apply %d fix(es)\n", len(res.Fixes))
			} else {
				printInfo("    applied %d fix(es)\n", len(res.Fixes))
			}
			for _, f := range res.Fixes {
				printVerbose("      %s\n", f)
			}
		}
		if res.Backup != "" {
			printInfo("    backup: %s\n", res.Backup)
			printVerbose("    to restore: cp %s %s\n", res.Backup, res.File)
		}
		if res.Error != "" {
			printInfo("    error: %s\n", res.Error)
		}
	}
	if repairDryRun {
		printInfo("\n✓ Dry-run complete. Run without --dry-run to apply repairs.\n")
	}
}
