package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajs/poefixer/cmd/fixer/currency"
)

const envPrefix = "FIXER"

var rootCmd = &cobra.Command{
	Use:   "fixer",
	Short: "Currency post-processor for a public stash feed",
	Long: `fixer derives a per-league currency exchange graph from an already-ingested
stash/item event stream: it extracts sale offers from free-text price notes,
maintains weighted exchange-rate summaries, and resolves the chaos-denominated
value of any priced currency.

Use "fixer currency" to run the post-processor against a PostgreSQL database
that an external ingest process has already populated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main.
func Execute() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.AddCommand(currency.New().Cmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1) //revive:disable-line:deep-exit
	}
}
