package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rla3rd/pgdb2"
	"github.com/rla3rd/pgdb2/config"
	"github.com/rla3rd/pgdb2/internal/logger"
)

var (
	flagMode    string
	flagDir     string
	flagFile    string
	flagVerbose bool
	flagJSON    bool
)

var log *logger.Logger

var rootCmd = &cobra.Command{
	Use:   "pgdb2",
	Short: "Inspect and exercise pgdb2 connection configurations",
	Long: `pgdb2 resolves database connections the same way the library does:
pgdb.json plus a per-host override, looked up in --dir, PGDB_HOME or
the home directory, with a URL in PGDB_RW or PGDB_RO short-circuiting
the files entirely.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagJSON {
			log = logger.NewLogger("pgdb2")
		} else {
			log = logger.Console("pgdb2", flagVerbose)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagMode, "mode", "rw", "connection mode: rw or ro")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "configuration directory (default: PGDB_HOME, then the home directory)")
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", config.DefaultBaseFile, "base configuration file name")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "log as JSON instead of console lines")
}

// openDatabase builds a Database from the persistent flags. Nothing is
// dialed until a command asks for the engine.
func openDatabase() (*pgdb2.Database, error) {
	mode, err := config.ParseMode(flagMode)
	if err != nil {
		return nil, err
	}

	return pgdb2.Open(
		pgdb2.WithMode(mode),
		pgdb2.WithConfigDir(flagDir),
		pgdb2.WithConfigFile(flagFile),
		pgdb2.WithLogger(log.Logger),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
