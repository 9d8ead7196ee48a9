// PhraseBot analyzes a hand-authored narrative phrase corpus for exact and
// near-duplicate phrases, reports the estimated reduction, and keeps the
// corpus taxonomy honest.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"phrasebot/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "phrasebot",
		Short:         "Phrase deduplication analysis for narrative seed corpora",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default config.yaml or $CONFIG_PATH)")

	root.AddCommand(
		newAnalyzeCmd(),
		newValidateCmd(),
		newFixCmd(),
		newHistoryCmd(),
		newBotCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.LoadConfig(configPath)
}
