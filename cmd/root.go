package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/skins"
)

// version is overridden at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

var (
	cfgFile string

	// log is configured from --log-level / --log-format before any command runs.
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:     "skinpath",
	Short:   "Resolve League of Legends skin asset paths from a game archive",
	Version: version,

	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceErrors:     true,
	SilenceUsage:      true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		log = l
		if f := viper.ConfigFileUsed(); f != "" {
			log.Debug().Str("file", f).Msg("using config file")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.skinpath/config.yaml)")
	pf.StringP("archive", "a", "", "archive to read: a directory or a packed .db file")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.StringP("output", "o", "table", "output format (table, json, yaml)")

	mustBind("archive", pf.Lookup("archive"))
	mustBind("log.level", pf.Lookup("log-level"))
	mustBind("log.format", pf.Lookup("log-format"))
	mustBind("output", pf.Lookup("output"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".skinpath"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SKINPATH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := configError(viper.ReadInConfig()); err != nil {
		fmt.Fprintln(os.Stderr, color.YellowString("warning: %v", err))
	}
}

// configError drops the "no config file" case, which is normal when neither
// --config nor $HOME/.skinpath/config.yaml exists. Anything else, such as a
// malformed file, is reported.
func configError(err error) error {
	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) {
		return nil
	}
	return err
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// newLogger builds the process logger from the log.* settings.
func newLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", viper.GetString("log.level"), err)
	}

	switch viper.GetString("log.format") {
	case "json":
	case "console", "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: color.NoColor}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", viper.GetString("log.format"))
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// openArchive opens the archive named by --archive / SKINPATH_ARCHIVE.
func openArchive() (archive.Archive, string, error) {
	p := viper.GetString("archive")
	if p == "" {
		return nil, "", fmt.Errorf("no archive given: use --archive or set SKINPATH_ARCHIVE")
	}
	a, err := archive.Open(p)
	if err != nil {
		return nil, "", &skins.IOError{Op: "open archive", Path: p, Err: err}
	}
	log.Debug().Str("archive", p).Msg("opened archive")
	return a, p, nil
}

func newResolver(a archive.Reader) *skins.Resolver {
	r := skins.NewResolver(a)
	r.Logger = log
	return r
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch skins.Classify(err) {
	case skins.OutcomeSuccess:
		return 0
	case skins.OutcomeNotFound:
		return 2
	case skins.OutcomeInvalidSkinIndex:
		return 3
	default:
		return 1
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(exitCode(err))
	}
}
