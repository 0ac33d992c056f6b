package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tblkit/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <table>...",
	Short: "Export table records as JSON or YAML",
	Long: `Decodes every entry of the given tables into records. Entries the game's
schema can measure are split into fields, with their ID, name and package
grants; the rest are exported as raw hex.`,
	Example: `  tblctl export --game 4 t_item.tbl
  tblctl export --game reverie --format yaml --out items.yaml t_item.tbl t_dlc.tbl`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(args)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json, yaml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(args []string) (err error) {
	v, err := gameVariant()
	if err != nil {
		return err
	}

	tables := make([]*export.Table, 0, len(args))
	for _, path := range args {
		printVerbose("Decoding %s\n", path)
		t, err := export.File(path, v)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		tables = append(tables, t)
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return export.Write(w, exportFormat, tables...)
}
