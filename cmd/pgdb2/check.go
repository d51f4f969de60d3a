package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve the configuration, connect and ping the server",
	Long: `Check resolves the configuration for the selected mode, connects,
pings the server and reports its version. The exit code is non-zero
when any step fails, so it slots into cron jobs and health checks.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := db.Config()
	fmt.Printf("source: %s\n", cfg.Source)
	fmt.Printf("dsn: %s\n", cfg.Redacted())

	eng, err := db.Engine(ctx)
	if err != nil {
		return err
	}

	var server string
	if err := eng.DB().QueryRowContext(ctx, "SELECT version()").Scan(&server); err != nil {
		return fmt.Errorf("error querying server version: %w", err)
	}
	fmt.Printf("server: %s\n", server)

	return nil
}
