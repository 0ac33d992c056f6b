package main

import (
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the game and tables found at --root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDetect()
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

type detectPackage struct {
	Folder    int    `json:"folder"`
	ItemTable string `json:"item_table,omitempty"`
	DLCTable  string `json:"dlc_table,omitempty"`
}

type detectResult struct {
	Root       string          `json:"root"`
	Game       string          `json:"game"`
	Tag        int             `json:"tag"`
	TextFolder string          `json:"text_folder"`
	Dat        string          `json:"dat"`
	Master     string          `json:"master"`
	Packages   []detectPackage `json:"packages"`
}

func runDetect() error {
	v, err := gameVariant()
	if err != nil {
		return err
	}
	game, err := discoverGame(v, promptPicker(prompter()))
	if err != nil {
		return err
	}

	res := detectResult{
		Root:       game.Root,
		Game:       v.String(),
		Tag:        int(v),
		TextFolder: game.TextFolder,
		Dat:        game.Dat,
		Master:     game.Master,
		Packages:   make([]detectPackage, 0, len(game.Packages)),
	}
	for _, p := range game.Packages {
		res.Packages = append(res.Packages, detectPackage{Folder: p.Folder, ItemTable: p.ItemTable, DLCTable: p.DLCTable})
	}
	if jsonOut {
		return printJSON(res)
	}

	printInfo("Game:     %s (%d)\n", res.Game, res.Tag)
	printInfo("Root:     %s\n", res.Root)
	printInfo("Text:     %s\n", res.TextFolder)
	printInfo("Dat:      %s\n", res.Dat)
	printInfo("Master:   %s\n", res.Master)
	printInfo("Packages: %d\n", len(res.Packages))
	for _, p := range res.Packages {
		printInfo("  %04d  items: %s  dlc: %s\n", p.Folder, orNone(p.ItemTable), orNone(p.DLCTable))
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
