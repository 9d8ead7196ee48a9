package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasebot/internal/rewrite"
)

func newFixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix",
		Short: "Apply mechanical corpus cleanups in place",
		Long: "Rewrites the data files in place: capitalizes sentence starts in opening\n" +
			"phrases, replaces specific weapon names with generic terms, and renames\n" +
			"legacy creature types to their canonical anatomy keys.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			changed, err := rewrite.FixDir(cfg.DataDir)
			if err != nil {
				return err
			}
			if len(changed) == 0 {
				fmt.Println("No changes needed.")
				return nil
			}
			total := 0
			for _, fc := range changed {
				fmt.Printf("%s: %d change(s)\n", fc.Path, fc.Changes)
				total += fc.Changes
			}
			fmt.Printf("Fixed %d value(s) across %d file(s).\n", total, len(changed))
			return nil
		},
	}
}
