package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasebot/internal/app"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		threshold float64
		workers   int
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the duplicate scan and write the reduction report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				cfg.SimilarityThreshold = threshold
			}
			if workers > 0 {
				cfg.ScanWorkers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a := app.New(cfg)
			if !noHistory {
				if err := a.OpenDB(); err != nil {
					return fmt.Errorf("opening history db: %w", err)
				}
				defer a.Close()
			}

			outcome, err := a.RunAnalysis(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(outcome.Summary)
			fmt.Printf("Report: %s\n", outcome.ReportPath)
			if outcome.Warnings > 0 || outcome.SourceErrors > 0 {
				fmt.Printf("Load issues: %d warning(s), %d source error(s). See the report.\n",
					outcome.Warnings, outcome.SourceErrors)
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "similarity threshold override [0,1]")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel scan workers override")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording this run in the history database")
	return cmd
}
