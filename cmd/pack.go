package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ItzWarty/liblolskins/internal/archive"
)

var packCmd = &cobra.Command{
	Use:   "pack <source-dir> <output.db>",
	Short: "Pack an extracted archive directory into a single SQLite file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, elapsed, err := packArchive(afero.NewOsFs(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Packed %d dirs, %d files (%d bytes) into %s in %v.\n",
			stats.Dirs, stats.Files, stats.Bytes, args[1], elapsed.Round(time.Millisecond))
		return nil
	},
}

func packArchive(fsys afero.Fs, source, output string) (archive.PackStats, time.Duration, error) {
	info, err := fsys.Stat(source)
	if err != nil {
		return archive.PackStats{}, 0, fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return archive.PackStats{}, 0, fmt.Errorf("source %s is not a directory", source)
	}

	_ = os.Remove(output) // Overwrite
	w, err := archive.NewSQLiteWriter(output)
	if err != nil {
		return archive.PackStats{}, 0, err
	}

	start := time.Now()
	log.Info().Str("source", source).Str("output", output).Msg("packing archive")
	stats, err := archive.Pack(fsys, source, w)
	if err != nil {
		_ = w.Close()
		return stats, 0, err
	}
	if err := w.Close(); err != nil {
		return stats, 0, fmt.Errorf("finish %s: %w", output, err)
	}
	return stats, time.Since(start), nil
}

func init() {
	rootCmd.AddCommand(packCmd)
}
