package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tblkit/internal/format"
	"github.com/joshuapare/tblkit/internal/gamedir"
	"github.com/joshuapare/tblkit/internal/idindex"
	"github.com/joshuapare/tblkit/internal/resolve"
	"github.com/joshuapare/tblkit/internal/schema"
)

var (
	idsDLC      bool
	idsAllowLow bool
	idsCount    int
)

var idsCmd = &cobra.Command{
	Use:   "ids",
	Short: "Look up item and package IDs of an install",
}

var idsCheckCmd = &cobra.Command{
	Use:   "check <id>",
	Short: "Show where an ID is used",
	Example: `  tblctl ids check 500 --root "C:/Games/CS4"
  tblctl ids check 42 --dlc --root .`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		return runIDsCheck(uint16(id))
	},
}

var idsFreeCmd = &cobra.Command{
	Use:   "free",
	Short: "List the next free replacement IDs",
	Example: `  tblctl ids free --root "C:/Games/CS4"
  tblctl ids free --dlc -n 3 --root .`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIDsFree()
	},
}

func init() {
	idsCmd.PersistentFlags().BoolVar(&idsDLC, "dlc", false, "Look up package IDs instead of item IDs")
	idsCmd.PersistentFlags().BoolVar(&idsAllowLow, "allow-low-numbers", false,
		"Apply the low-number replacement policy")
	idsFreeCmd.Flags().IntVarP(&idsCount, "count", "n", 10, "Number of IDs to list")

	idsCmd.AddCommand(idsCheckCmd, idsFreeCmd)
	rootCmd.AddCommand(idsCmd)
}

// idSpace is one ID space of an install, indexed.
type idSpace struct {
	index  *idindex.Index
	grants *idindex.Index // package tables, for item grants
	policy resolve.Policy
}

func loadSpace(v schema.Variant, game *gamedir.Game) (*idSpace, error) {
	var dlcPaths []string
	for _, t := range game.DLCTables() {
		dlcPaths = append(dlcPaths, t.Path)
	}
	for _, f := range game.Families() {
		dlcPaths = append(dlcPaths, f.DLCTables...)
	}
	dlcs, err := idindex.Build(v, unique(dlcPaths)...)
	if err != nil {
		return nil, err
	}
	if idsDLC {
		return &idSpace{index: dlcs, policy: resolve.DLCPolicy(idsAllowLow, game.Folders())}, nil
	}

	items := idindex.New(v)
	pkg := idindex.NewSet()
	var attach []string
	for _, t := range game.ItemTables() {
		ix, err := idindex.Build(v, t.Path)
		if err != nil {
			return nil, err
		}
		if !t.IsMaster() {
			pkg.Union(ix.Owned())
		}
		if err := items.Add(t.Path); err != nil {
			return nil, err
		}
	}
	for _, f := range game.Families() {
		attach = append(attach, f.AttachTables...)
	}
	for _, p := range unique(attach) {
		if err := items.Add(p); err != nil {
			return nil, err
		}
	}
	return &idSpace{
		index:  items,
		grants: dlcs,
		policy: resolve.ItemPolicy(idsAllowLow, items.Owned(), pkg),
	}, nil
}

type idUse struct {
	Table  string `json:"table"`
	Kind   string `json:"kind"`
	Offset int64  `json:"offset"`
	Name   string `json:"name,omitempty"`
	DLC    uint16 `json:"dlc,omitempty"`
	Slot   int    `json:"slot,omitempty"`
	Qty    uint16 `json:"quantity,omitempty"`
}

type idCheck struct {
	Space string  `json:"space"`
	ID    uint16  `json:"id"`
	InUse bool    `json:"in_use"`
	Free  bool    `json:"free"`
	Uses  []idUse `json:"uses,omitempty"`
}

func runIDsCheck(id uint16) error {
	v, err := gameVariant()
	if err != nil {
		return err
	}
	game, err := discoverGame(v, promptPicker(prompter()))
	if err != nil {
		return err
	}
	sp, err := loadSpace(v, game)
	if err != nil {
		return err
	}

	res := idCheck{Space: spaceName(), ID: id, InUse: sp.index.Has(id)}
	res.Free = sp.policy.Free(id, sp.index.Owned()) && int(id) >= sp.policy.Floor
	for _, r := range sp.index.Refs(id) {
		res.Uses = append(res.Uses, idUse{
			Table:  r.Table,
			Kind:   r.Kind.String(),
			Offset: r.Offset,
			Name:   format.Text(r.Name),
		})
	}
	if sp.grants != nil {
		for _, g := range sp.grants.Grants(id) {
			res.Uses = append(res.Uses, idUse{
				Table:  g.Table,
				Kind:   "grant",
				Offset: g.Offset,
				DLC:    g.DLC,
				Slot:   g.Slot,
				Qty:    g.Quantity,
			})
		}
	}

	if jsonOut {
		return printJSON(res)
	}
	state := "free"
	switch {
	case res.InUse:
		state = "in use"
	case !res.Free:
		state = "unused, outside the replacement policy"
	}
	printInfo("%s ID %d: %s\n", res.Space, id, state)
	for _, u := range res.Uses {
		switch u.Kind {
		case "grant":
			printInfo("  granted by package %d in %s (slot %d, quantity %d)\n", u.DLC, u.Table, u.Slot, u.Qty)
		default:
			if u.Name != "" {
				printInfo("  %s %q in %s @0x%X\n", u.Kind, u.Name, u.Table, u.Offset)
			} else {
				printInfo("  %s in %s @0x%X\n", u.Kind, u.Table, u.Offset)
			}
		}
	}
	return nil
}

func runIDsFree() error {
	if idsCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	v, err := gameVariant()
	if err != nil {
		return err
	}
	game, err := discoverGame(v, promptPicker(prompter()))
	if err != nil {
		return err
	}
	sp, err := loadSpace(v, game)
	if err != nil {
		return err
	}

	ids := sp.policy.Take(sp.index.Owned(), idsCount)
	if jsonOut {
		return printJSON(map[string]interface{}{
			"space":   spaceName(),
			"floor":   sp.policy.Floor,
			"ceiling": sp.policy.Ceiling,
			"ids":     ids,
		})
	}
	printInfo("Free %s IDs in [%d, %d]:\n", spaceName(), sp.policy.Floor, sp.policy.Ceiling)
	if len(ids) == 0 {
		printInfo("  none\n")
		return nil
	}
	for _, id := range ids {
		printInfo("  %d\n", id)
	}
	return nil
}

func spaceName() string {
	if idsDLC {
		return resolve.SpaceDLC.String()
	}
	return resolve.SpaceItem.String()
}

func unique(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
