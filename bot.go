package main

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	"phrasebot/internal/app"
	slackbot "phrasebot/internal/integrations/slack"
	"phrasebot/internal/schedule"
	"phrasebot/internal/watch"
)

func newBotCmd() *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the long-lived mode: Slack bot, scheduled analysis, optional watch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log.Printf("Config loaded. Corpus=%s DataDir=%s Threshold=%.2f Workers=%d Schedule=%q Timezone=%s",
				cfg.CorpusName, cfg.DataDir, cfg.SimilarityThreshold, cfg.ScanWorkers,
				cfg.AnalysisSchedule, cfg.Timezone)

			a := app.New(cfg)
			if err := a.OpenDB(); err != nil {
				return fmt.Errorf("opening history db: %w", err)
			}
			defer a.Close()
			log.Printf("Database initialized at %s", cfg.DBPath)

			var api *slack.Client
			if cfg.SlackConfigured() {
				api = slack.New(
					cfg.SlackBotToken,
					slack.OptionAppLevelToken(cfg.SlackAppToken),
				)
			} else {
				log.Println("Slack not configured; running without the bot")
			}

			schedule.StartAnalysisScheduler(a, api)

			if watchMode {
				w, err := watch.Start(cfg.DataDir, watch.DefaultDebounce, func(changed []string) {
					log.Printf("data changed files=%d, re-running analysis", len(changed))
					outcome, err := a.RunAnalysis(context.Background())
					if err != nil {
						log.Printf("watch re-analysis error: %v", err)
						return
					}
					log.Printf("watch re-analysis complete: %s", outcome.Summary)
				})
				if err != nil {
					return fmt.Errorf("starting watcher: %w", err)
				}
				defer w.Close()
			}

			if api == nil {
				if cfg.AnalysisSchedule == "" && !watchMode {
					return fmt.Errorf("nothing to run: configure Slack tokens, analysis_schedule, or --watch")
				}
				log.Println("Running headless; press Ctrl-C to stop")
				<-cmd.Context().Done()
				return nil
			}

			log.Println("Starting PhraseBot...")
			return slackbot.StartSlackBot(a, api)
		},
	}

	cmd.Flags().BoolVar(&watchMode, "watch", false, "re-run analysis when data files change")
	return cmd
}
