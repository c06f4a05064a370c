package cmd

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/skins"
)

type skinRow struct {
	Index uint32 `json:"index" yaml:"index"`
	// Source is the skin folder (modern) or configuration section (legacy).
	Source     string `json:"source" yaml:"source"`
	LoadScreen string `json:"load_screen" yaml:"load_screen"`
}

type skinList struct {
	Character string    `json:"character" yaml:"character"`
	Layout    string    `json:"layout" yaml:"layout"`
	Skins     []skinRow `json:"skins" yaml:"skins"`
}

var skinsCmd = &cobra.Command{
	Use:   "skins <character>",
	Short: "List the skin indices available for a character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openArchive()
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close(a) }()

		inv, err := newResolver(a).Inventory(args[0])
		if err != nil {
			return err
		}

		out := skinList{
			Character: inv.Character,
			Layout:    inv.Layout.String(),
			Skins:     make([]skinRow, 0, inv.Skins.GetCardinality()),
		}
		for _, idx := range inv.Indices() {
			source := skins.SkinFolder(idx)
			if inv.Layout == skins.Legacy {
				source = skins.LegacySection(idx)
			}
			out.Skins = append(out.Skins, skinRow{
				Index:      idx,
				Source:     source,
				LoadScreen: skins.LoadScreenName(inv.Character, idx),
			})
		}

		return render(cmd.OutOrStdout(), out, []any{"Skin", "Source", "Load Screen"}, func(t *tablewriter.Table) error {
			for _, s := range out.Skins {
				if err := t.Append(strconv.FormatUint(uint64(s.Index), 10), s.Source, s.LoadScreen); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(skinsCmd)
}
