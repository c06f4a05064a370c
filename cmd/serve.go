package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/nfsmount"
)

var serveMount string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Export the archive read-only over NFS",
	Long: `Serve exports the archive as a read-only NFSv3 filesystem.

With --mount the export is also mounted locally (requires sudo). With
--watch the archive is reopened and swapped in whenever it changes on disk,
so a re-run of "skinpath pack" is picked up without restarting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, p, err := openArchive()
		if err != nil {
			return err
		}
		hs := archive.NewHotSwap(a)
		defer func() { _ = hs.Close() }()

		srv, err := nfsmount.NewServer(nfsmount.NewArchiveFS(hs), viper.GetString("serve.addr"), log)
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s over NFS on port %d\n", p, srv.Port())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if viper.GetBool("serve.watch") {
			w, err := watchArchive(p, hs, log)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()
		}

		if serveMount != "" {
			if err := nfsmount.Mount(srv.Port(), serveMount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mounted at %s\n", serveMount)
			defer func() {
				if err := nfsmount.Unmount(serveMount); err != nil {
					log.Error().Err(err).Str("mountpoint", serveMount).Msg("unmount failed")
				}
			}()
		}

		<-ctx.Done()
		log.Info().Msg("shutting down")
		return nil
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "127.0.0.1:0", "NFS listen address")
	f.Bool("watch", false, "reload the archive when it changes on disk")
	f.StringVar(&serveMount, "mount", "", "also mount the export at this directory")
	mustBind("serve.addr", f.Lookup("addr"))
	mustBind("serve.watch", f.Lookup("watch"))
	rootCmd.AddCommand(serveCmd)
}

