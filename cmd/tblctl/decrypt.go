package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tblkit/internal/cle"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt <table>...",
	Short: "Decrypt CLE-encrypted tables in place",
	Long: `Decrypts tables shipped in the CLE container. The plaintext is validated
before it replaces the table; the container is kept next to it with the
suffix ` + cle.OriginalSuffix + `. Tables that are not encrypted are left alone.`,
	Example: `  tblctl decrypt --game 5 t_item.tbl`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecrypt(args)
	},
}

func init() {
	rootCmd.AddCommand(decryptCmd)
}

func runDecrypt(args []string) error {
	v, err := gameVariant()
	if err != nil {
		return err
	}
	failed := 0
	for _, path := range args {
		orig, err := cle.DecryptFile(path, v)
		switch {
		case errors.Is(err, cle.ErrNotEncrypted):
			printInfo("○ %s: not encrypted\n", path)
		case err != nil:
			failed++
			printError("%v\n", err)
		default:
			printInfo("✓ %s (original kept as %s)\n", path, orig)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d table(s) could not be decrypted", failed)
	}
	return nil
}
