package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/winfsp/cgofuse/fuse"

	"github.com/ItzWarty/liblolskins/internal/archive"
	skinfs "github.com/ItzWarty/liblolskins/internal/fs"
)

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Mount the archive read-only with FUSE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mountPoint := args[0]

		a, p, err := openArchive()
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close(a) }()

		host := fuse.NewFileSystemHost(skinfs.NewArchiveFS(a))

		fmt.Fprintf(cmd.OutOrStdout(), "Mounting %s at %s (using fuse-t/cgofuse)...\n", p, mountPoint)

		// Mount blocks until unmounted.
		// -o uid/gid so the mount is owned by the caller (fuse-t serves it over NFS).
		opts := []string{
			"-o", "ro",
			"-o", fmt.Sprintf("uid=%d", os.Getuid()),
			"-o", fmt.Sprintf("gid=%d", os.Getgid()),
		}
		if !host.Mount(mountPoint, opts) {
			return fmt.Errorf("mount failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mountCmd)
}
