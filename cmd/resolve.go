package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/skins"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <character> <skin>",
	Short: "Print the geometry, skeleton, texture and load-screen paths of a skin",
	Long: `Resolve looks the character up case-insensitively under DATA/Characters
and prints the asset paths of the given skin index (0 is the base skin).

Exit status: 0 on success, 2 if the character does not exist, 3 if the
skin index is invalid for the character, 1 on any archive error.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseSkinIndex(args[1])
		if err != nil {
			return err
		}

		a, _, err := openArchive()
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close(a) }()

		b, err := newResolver(a).Resolve(args[0], index)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), b, []any{"Asset", "Path"}, func(t *tablewriter.Table) error {
			for _, row := range [][2]string{
				{"geometry", b.Geometry},
				{"skeleton", b.Skeleton},
				{"texture", b.Texture},
				{"load screen", b.LoadScreen},
			} {
				if err := t.Append(row[0], row[1]); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func parseSkinIndex(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", skins.ErrInvalidSkinIndex, s)
	}
	return uint32(n), nil
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
