package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tblkit/internal/cle"
	"github.com/joshuapare/tblkit/internal/gamedir"
	"github.com/joshuapare/tblkit/internal/logger"
	"github.com/joshuapare/tblkit/internal/repair"
	"github.com/joshuapare/tblkit/internal/resolve"
)

var (
	resolveAllowLow     bool
	resolveDecrypt      bool
	resolveDecisions    string
	resolveDryRun       bool
	resolveBackupSuffix string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Find and renumber colliding item and package IDs",
	Long: `Resolves ID collisions between the base game and installed content
packages.

The resolve command:
1. Detects the game and finds the master item table and every package's
   t_item.tbl and t_dlc.tbl
2. Validates and repairs every table, leaving out the ones that cannot be
   repaired
3. Walks the item tables in order (master first, then packages by folder
   number) and asks about every ID two differently named items share
4. Does the same for package IDs in the t_dlc.tbl files
5. Renumbers the chosen side across its whole package: item records,
   attach references and package grants

The master table is never renumbered. Answers come from the terminal, or
from a YAML file given with --decisions:

  default: skip        # skip | a | b
  rules:
    - space: item      # item | dlc
      id: 500
      choice: b
      replacement: 4321`,
	Example: `  # Interactive run
  tblctl resolve --root "C:/Games/CS4"

  # Preview with scripted answers
  tblctl resolve --root . --decisions answers.yaml --dry-run

  # Decrypt Reverie tables first
  tblctl resolve --root . --game 5 --decrypt`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.BoolVar(&resolveAllowLow, "allow-low-numbers", false,
		"Allow replacement IDs below the lowest package item ID and package IDs below 20")
	f.BoolVar(&resolveDecrypt, "decrypt", false, "Decrypt encrypted tables instead of skipping them")
	f.StringVar(&resolveDecisions, "decisions", "", "YAML file with scripted answers")
	f.BoolVarP(&resolveDryRun, "dry-run", "n", false, "Report planned renames without writing")
	f.StringVarP(&resolveBackupSuffix, "backup-suffix", "b", repair.DefaultBackupSuffix,
		"Suffix for repair backups")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	v, err := gameVariant()
	if err != nil {
		return err
	}

	p := prompter()
	var decider resolve.Decider = &promptDecider{p: p}
	if resolveDecisions != "" {
		d, err := loadDecisions(resolveDecisions)
		if err != nil {
			return err
		}
		decider = d
	}

	game, err := discoverGame(v, promptPicker(p))
	if err != nil {
		return err
	}
	printInfo("Game: %s (text %s, dat %s)\n", v, game.TextFolder, game.Dat)
	printInfo("Master: %s\n", game.Master)
	printInfo("Packages: %d\n", len(game.Packages))

	game, err = handleEncrypted(game)
	if err != nil {
		return err
	}

	if resolveDryRun {
		printInfo("Mode: DRY-RUN (no changes will be made)\n")
	}
	r, err := resolve.New(resolve.Config{
		Variant:         v,
		Items:           game.ItemTables(),
		DLCs:            game.DLCTables(),
		Families:        game.Families(),
		AllowLowNumbers: resolveAllowLow,
		Decider:         decider,
		DryRun:          resolveDryRun,
		Repairer: repair.New(v, repair.Options{
			DryRun:       resolveDryRun,
			BackupSuffix: resolveBackupSuffix,
			Logger:       logger.L,
		}),
		Logger: logger.L,
	})
	if err != nil {
		return err
	}

	report, runErr := r.Run()
	if report != nil {
		if jsonOut {
			if err := printJSON(newResolveSummary(report)); err != nil {
				return err
			}
		} else {
			printReport(report)
		}
	}
	return runErr
}

// handleEncrypted decrypts encrypted tables when --decrypt is set and
// otherwise leaves them out of the run.
func handleEncrypted(game *gamedir.Game) (*gamedir.Game, error) {
	drop := make(map[string]bool)
	for _, path := range game.Tables() {
		enc, err := cle.IsEncryptedFile(path)
		if err != nil {
			return nil, err
		}
		if !enc {
			continue
		}
		if !resolveDecrypt {
			printInfo("Skipping encrypted table %s (use --decrypt)\n", path)
			logger.Warn("skipping encrypted table", "path", path)
			drop[path] = true
			continue
		}
		if resolveDryRun {
			printInfo("Would decrypt %s\n", path)
			drop[path] = true
			continue
		}
		orig, err := cle.DecryptFile(path, game.Variant)
		if err != nil {
			printError("%v\n", err)
			logger.Error("decrypt failed", "path", path, "err", err)
			drop[path] = true
			continue
		}
		printInfo("Decrypted %s (original kept as %s)\n", path, orig)
	}
	if len(drop) == 0 {
		return game, nil
	}
	return game.Without(drop), nil
}

type resolutionSummary struct {
	Space       string   `json:"space"`
	ID          uint16   `json:"id"`
	A           string   `json:"a"`
	B           string   `json:"b"`
	Choice      string   `json:"choice"`
	Replacement uint16   `json:"replacement,omitempty"`
	Patches     []string `json:"patches,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type resolveSummary struct {
	DryRun     bool                `json:"dry_run"`
	Tables     []repairResult      `json:"tables,omitempty"`
	Skipped    []skippedTable      `json:"skipped,omitempty"`
	Items      []resolutionSummary `json:"items"`
	DLCs       []resolutionSummary `json:"dlcs"`
	Duplicates int                 `json:"duplicates"`
	Renamed    int                 `json:"renamed"`
}

func newResolveSummary(rep *resolve.Report) resolveSummary {
	s := resolveSummary{
		DryRun:     rep.DryRun,
		Items:      summarize(rep.Items),
		DLCs:       summarize(rep.DLCs),
		Duplicates: rep.Duplicates,
		Renamed:    rep.Renamed(),
	}
	for _, o := range rep.Tables {
		s.Tables = append(s.Tables, newRepairResult(o))
	}
	for _, te := range rep.Skipped {
		s.Skipped = append(s.Skipped, skippedTable{File: te.Path, Error: te.Err.Error()})
	}
	return s
}

type skippedTable struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func summarize(rs []resolve.Resolution) []resolutionSummary {
	out := make([]resolutionSummary, 0, len(rs))
	for _, r := range rs {
		s := resolutionSummary{
			Space:       r.Conflict.Space.String(),
			ID:          r.Conflict.ID,
			A:           sideString(r.Conflict.A),
			B:           sideString(r.Conflict.B),
			Choice:      r.Choice.String(),
			Replacement: r.Replacement,
		}
		for _, p := range r.Patches {
			s.Patches = append(s.Patches, p.String())
		}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		out = append(out, s)
	}
	return out
}

func sideString(s resolve.Side) string {
	return fmt.Sprintf("%q in %s", s.Name, s.Table)
}

func printReport(rep *resolve.Report) {
	for _, o := range rep.Tables {
		if o.State != repair.StateValid || o.Repair != nil {
			printInfo("Table %s: %s\n", o.Path, o.State)
		}
	}
	for _, te := range rep.Skipped {
		printInfo("✗ Left out %s: %v\n", te.Path, te.Err)
	}
	printResolutions("Item", rep.Items)
	printResolutions("Package", rep.DLCs)

	verb := "Renamed"
	if rep.DryRun {
		verb = "Would rename"
	}
	printInfo("\n=== RESOLVE RESULTS ===\n")
	printInfo("Item conflicts:    %d\n", len(rep.Items))
	printInfo("Package conflicts: %d\n", len(rep.DLCs))
	printInfo("Duplicates:        %d (same ID and name, left alone)\n", rep.Duplicates)
	printInfo("%s: %d\n", verb, rep.Renamed())
}

func printResolutions(label string, rs []resolve.Resolution) {
	for _, r := range rs {
		c := r.Conflict
		switch {
		case r.Err != nil:
			printInfo("✗ %s %d: %v\n", label, c.ID, r.Err)
		case r.Renamed():
			side := c.B
			if r.Choice == resolve.RenameA {
				side = c.A
			}
			printInfo("✓ %s %d -> %d: %s\n", label, c.ID, r.Replacement, sideString(side))
		default:
			printInfo("○ %s %d skipped\n", label, c.ID)
		}
		for _, p := range r.Patches {
			printVerbose("    %s\n", p)
		}
	}
}
