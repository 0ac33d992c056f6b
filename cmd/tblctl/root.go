package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tblkit/internal/gamedir"
	"github.com/joshuapare/tblkit/internal/logger"
	"github.com/joshuapare/tblkit/internal/schema"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	gameFlag   string
	rootDir    string
	textFolder string
	datFolder  string
	logEnabled bool
	logDir     string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "tblctl",
	Short: "Validate, repair and de-conflict game .tbl tables",
	Long: `tblctl works on the .tbl data tables of Trails of Cold Steel III, IV,
Trails into Reverie and Tokyo Xanadu eX+. It validates and repairs table
framing, and finds and renumbers item and package IDs that collide between
the base game and installed content packages.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and log to stderr")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	pf.StringVarP(&gameFlag, "game", "g", "auto", "Game: 3 (CS3), 4 (CS4), 5 (Reverie), 18 (TXe) or auto")
	pf.StringVar(&rootDir, "root", ".", "Game install directory")
	pf.StringVar(&textFolder, "text-folder", "", "Text folder to use (default: ask when several exist)")
	pf.StringVar(&datFolder, "dat", "", "Dat folder to use (default: "+gamedir.PreferredDat+" when present)")
	pf.BoolVar(&logEnabled, "log", false, "Write a daily JSON log file")
	pf.StringVar(&logDir, "log-dir", "", "Log directory (default: ~/.tblkit/logs)")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging() error {
	opts := logger.Options{
		Enabled: verbose || logEnabled,
		LogDir:  logDir,
		Level:   logger.ParseLevel(logLevel),
	}
	if verbose && !logEnabled {
		opts.Console = os.Stderr
	}
	if err := logger.Init(opts); err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	return nil
}

// gameVariant resolves --game, detecting it from --root when set to auto.
func gameVariant() (schema.Variant, error) {
	if gameFlag != "" && gameFlag != "auto" {
		return schema.ParseVariant(gameFlag)
	}
	v, err := gamedir.Detect(rootDir)
	if err != nil {
		return schema.VariantUnknown, fmt.Errorf("cannot detect game at %s (use --game): %w", rootDir, err)
	}
	printVerbose("Detected %s at %s\n", v, rootDir)
	return v, nil
}

// discoverGame finds the tables of the install at --root.
func discoverGame(v schema.Variant, pick gamedir.Picker) (*gamedir.Game, error) {
	return gamedir.Discover(rootDir, v, gamedir.Options{
		TextFolder: textFolder,
		Dat:        datFolder,
		Pick:       pick,
	})
}

// Helper functions for output

// printInfo prints an info message unless quiet or JSON output is on
func printInfo(format string, args ...interface{}) {
	if !quiet && !jsonOut {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet && !jsonOut {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
