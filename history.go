package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"phrasebot/internal/storage/sqlite"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent analysis runs and the weekly reduction trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := sqlite.InitDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening history db: %w", err)
			}
			defer db.Close()

			runs, err := sqlite.GetRecentRuns(db, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No analysis runs recorded yet. Run `phrasebot analyze` first.")
				return nil
			}

			fmt.Println("Recent runs:")
			for _, r := range runs {
				fmt.Printf("  %s  instances=%d unique=%d exact_groups=%d near_pairs=%d reduction=%.1f%% (%dms)\n",
					r.RanAt.Format("2006-01-02 15:04"), r.TotalInstances, r.UniquePhrases,
					r.ExactGroups, r.NearDuplicatePairs, r.ReductionPercent, r.DurationMS)
			}

			latest, err := sqlite.GetLatestRun(db)
			if err != nil {
				return err
			}
			if latest.ReportPath != "" {
				fmt.Printf("\nLatest report: %s\n", latest.ReportPath)
			}

			eightWeeksAgo := time.Now().AddDate(0, 0, -56)
			trends, err := sqlite.GetWeeklyTrend(db, eightWeeksAgo)
			if err != nil {
				return err
			}
			if len(trends) > 0 {
				fmt.Println("\nWeekly trend:")
				for _, tr := range trends {
					fmt.Printf("  week of %s: %d run(s), avg reduction %.1f%%, near pairs %d, duplicate instances %d\n",
						tr.WeekStart, tr.Runs, tr.AvgReductionPct, tr.LastNearPairs, tr.LastDuplicateCnt)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of recent runs to show")
	return cmd
}
