// Package schedule runs the analysis pipeline on a cron schedule and posts
// each run's summary to the report channel.
package schedule

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"

	"phrasebot/internal/app"
)

// StartAnalysisScheduler starts a cron-based scheduler that periodically
// re-analyzes the corpus. The schedule is a standard 5-field cron expression
// (minute hour day-of-month month day-of-week).
// Examples: "0 9 * * *" (daily 9am), "0 9 * * 1" (Mondays 9am).
// The api may be nil; runs then only log and write report files.
func StartAnalysisScheduler(a *app.App, api *slack.Client) {
	schedule := strings.TrimSpace(a.Cfg.AnalysisSchedule)
	if schedule == "" {
		log.Println("Scheduled analysis disabled (analysis_schedule not set)")
		return
	}

	sched, err := ParseSchedule(schedule)
	if err != nil {
		log.Printf("Invalid analysis_schedule '%s': %v; scheduled analysis disabled", schedule, err)
		return
	}
	log.Printf("Analysis scheduled (cron: %s)", schedule)

	loc := a.Cfg.Location
	if loc == nil {
		loc = time.Local
	}

	go func() {
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next scheduled analysis at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			outcome, err := a.RunAnalysis(context.Background())
			if err != nil {
				log.Printf("Scheduled analysis error: %v", err)
				continue
			}
			log.Printf("Scheduled analysis complete: %s", outcome.Summary)

			if api != nil && a.Cfg.ReportChannelID != "" {
				_, _, postErr := api.PostMessage(a.Cfg.ReportChannelID, slack.MsgOptionText(
					fmt.Sprintf("Scheduled analysis complete: %s\nReport: %s", outcome.Summary, outcome.ReportPath), false))
				if postErr != nil {
					log.Printf("Scheduled analysis post error: %v", postErr)
				}
			}
		}
	}()
}

// ParseSchedule parses a 5-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}
