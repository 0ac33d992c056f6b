package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tblkit/internal/cle"
	"github.com/joshuapare/tblkit/internal/format"
	"github.com/joshuapare/tblkit/internal/schema"
)

var errEncrypted = errors.New("encrypted")

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [table...]",
		Short: "Validate table framing",
		Long: `The validate command checks each table's header, section counts and
entry framing. For entry types the game's schema can measure, every stored
block size must also match the measured payload length.

With no arguments every table of the install at --root is checked.

Example:
  tblctl validate --game 4 t_item.tbl
  tblctl validate --root "C:/Games/CS4"
  tblctl validate --game cs3 t_item.tbl t_dlc.tbl --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	return cmd
}

type validateResult struct {
	File      string `json:"file"`
	Valid     bool   `json:"valid"`
	Encrypted bool   `json:"encrypted,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runValidate(args []string) error {
	v, err := gameVariant()
	if err != nil {
		return err
	}
	paths, err := tablePaths(v, args)
	if err != nil {
		return err
	}

	results := make([]validateResult, 0, len(paths))
	invalid := 0
	for _, p := range paths {
		printVerbose("Validating %s\n", p)
		res := validateTable(p, v)
		if !res.Valid {
			invalid++
		}
		results = append(results, res)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		printInfo("\nValidating %d table(s) as %s...\n\n", len(results), v)
		for _, res := range results {
			switch {
			case res.Valid:
				printInfo("  ✓ %s\n", res.File)
			case res.Encrypted:
				printInfo("  ✗ %s: encrypted (run: tblctl decrypt)\n", res.File)
			default:
				printInfo("  ✗ %s: %s\n", res.File, res.Error)
			}
		}
	}

	if invalid > 0 {
		printInfo("\nResult: ✗ %d of %d INVALID\n", invalid, len(results))
		return fmt.Errorf("%d of %d table(s) invalid", invalid, len(results))
	}
	printInfo("\nResult: ✓ VALID\n")
	return nil
}

func validateTable(path string, v schema.Variant) validateResult {
	res := validateResult{File: path}
	err := format.View(path, func(b []byte) error {
		if cle.IsEncrypted(b) {
			return errEncrypted
		}
		return format.Check(b, v)
	})
	switch {
	case errors.Is(err, errEncrypted):
		res.Encrypted = true
		res.Error = err.Error()
	case err != nil:
		res.Error = err.Error()
	default:
		res.Valid = true
	}
	return res
}

// tablePaths returns args, or every table of the install when args is empty.
func tablePaths(v schema.Variant, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	game, err := discoverGame(v, promptPicker(prompter()))
	if err != nil {
		return nil, err
	}
	return game.Tables(), nil
}
