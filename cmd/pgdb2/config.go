package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as JSON",
	Long: `Config prints the merged connection record for the selected mode,
password masked, without touching the server. The record is written to
stdout as JSON; where it came from goes to stderr.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := db.Config()
	out, err := json.MarshalIndent(cfg.Redact(), "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	fmt.Fprintf(os.Stderr, "loaded from %s\n", cfg.Source)

	return nil
}
