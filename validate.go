package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasebot/internal/app"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the corpus against the fixed taxonomies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			issues := app.New(cfg).RunValidation()
			if len(issues) == 0 {
				fmt.Println("Corpus taxonomy is clean: no issues found.")
				return nil
			}
			for _, issue := range issues {
				fmt.Printf("- %s\n", issue)
			}
			return fmt.Errorf("%d taxonomy issue(s) found", len(issues))
		},
	}
}
