package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/skins"
)

// characterRow is one line of the characters listing.
type characterRow struct {
	Name   string `json:"name" yaml:"name"`
	Layout string `json:"layout,omitempty" yaml:"layout,omitempty"`
	Skins  int    `json:"skins" yaml:"skins"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List the characters in the archive with their layout and skin count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openArchive()
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close(a) }()

		names, err := skins.Characters(a)
		if err != nil {
			return err
		}

		r := newResolver(a)
		rows := make([]characterRow, 0, len(names))
		for _, name := range names {
			row := characterRow{Name: name}
			inv, err := r.Inventory(name)
			if err != nil {
				// one broken character should not hide the rest
				log.Warn().Err(err).Str("character", name).Msg("listing skins failed")
				row.Error = err.Error()
			} else {
				row.Layout = inv.Layout.String()
				row.Skins = int(inv.Skins.GetCardinality())
			}
			rows = append(rows, row)
		}

		err = render(cmd.OutOrStdout(), rows, []any{"Name", "Layout", "Skins"}, func(t *tablewriter.Table) error {
			for _, row := range rows {
				layout, count := row.Layout, strconv.Itoa(row.Skins)
				if row.Error != "" {
					layout, count = "error", "-"
				}
				if err := t.Append(row.Name, layout, count); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if isTable() {
			fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d characters\n", len(rows))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(charactersCmd)
}
