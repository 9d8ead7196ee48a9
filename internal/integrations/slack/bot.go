// Package slackbot runs the Socket Mode bot that lets reviewers trigger
// corpus analysis from Slack and receive the reports in a channel.
package slackbot

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"phrasebot/internal/app"
	"phrasebot/internal/integrations/llm"
	"phrasebot/internal/storage/sqlite"
)

func StartSlackBot(a *app.App, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s %q from user=%s channel=%s", cmd.Command, cmd.Text, cmd.UserID, cmd.ChannelID)
				go handleSlashCommand(api, a, cmd)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func handleSlashCommand(api *slack.Client, a *app.App, cmd slack.SlashCommand) {
	if cmd.Command != "/phrases" {
		return
	}
	sub := normalizeSubcommand(cmd.Text)
	switch sub {
	case "analyze":
		handleAnalyze(api, a, cmd)
	case "validate":
		handleValidate(api, a, cmd)
	case "stats":
		handleStats(api, a, cmd)
	case "help", "":
		handleHelp(api, cmd)
	default:
		postEphemeral(api, cmd, fmt.Sprintf("Unknown subcommand %q. Try `/phrases help`.", sub))
	}
}

// normalizeSubcommand keeps only the first word so "analyze please" still
// routes to analyze.
func normalizeSubcommand(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func handleAnalyze(api *slack.Client, a *app.App, cmd slack.SlashCommand) {
	postEphemeral(api, cmd, "Running phrase analysis...")

	outcome, err := a.RunAnalysis(context.Background())
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Analysis failed: %v", err))
		log.Printf("slack analyze error user=%s: %v", cmd.UserID, err)
		return
	}

	comment := outcome.Summary
	if a.Cfg.LLMConfigured() {
		client := llm.Client{
			Provider:        a.Cfg.LLMProvider,
			Model:           a.Cfg.LLMModel,
			AnthropicAPIKey: a.Cfg.AnthropicAPIKey,
			OpenAIAPIKey:    a.Cfg.OpenAIAPIKey,
		}
		digest, usage, err := client.DigestReport(context.Background(), outcome.Report)
		if err != nil {
			log.Printf("slack analyze digest error (non-fatal): %v", err)
		} else if digest != "" {
			comment = digest + fmt.Sprintf("\n\n(tokens used: %d)", usage.TotalTokens())
		}
	}

	channel := a.Cfg.ReportChannelID
	if channel == "" {
		channel = cmd.ChannelID
	}
	if err := uploadReport(api, channel, outcome.ReportPath, a.Cfg.CorpusName, comment); err != nil {
		log.Printf("slack analyze upload error: %v", err)
		postEphemeral(api, cmd, fmt.Sprintf("Report saved to %s but upload failed: %v", outcome.ReportPath, err))
		return
	}

	postEphemeral(api, cmd, fmt.Sprintf("%s\nSaved to: %s", outcome.Summary, outcome.ReportPath))
	log.Printf("slack analyze done user=%s pairs=%d", cmd.UserID, len(outcome.Result.NearDuplicatePairs))
}

func uploadReport(api *slack.Client, channelID, path, corpusName, comment string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stating report file: %w", err)
	}
	if fi.Size() <= 0 {
		return fmt.Errorf("generated report file is empty")
	}
	title := "phrase reduction report"
	if corpusName != "" {
		title = corpusName + " reduction report"
	}
	_, err = api.UploadFileV2(slack.UploadFileV2Parameters{
		File:           path,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(path),
		Channel:        channelID,
		Title:          title,
		InitialComment: comment,
	})
	return err
}

func handleValidate(api *slack.Client, a *app.App, cmd slack.SlashCommand) {
	issues := a.RunValidation()
	if len(issues) == 0 {
		postEphemeral(api, cmd, "Corpus taxonomy is clean: no issues found.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%d taxonomy issue(s) found:*\n", len(issues))
	limit := 20
	for i, issue := range issues {
		if i >= limit {
			fmt.Fprintf(&sb, "- ... and %d more\n", len(issues)-limit)
			break
		}
		fmt.Fprintf(&sb, "- %s\n", issue)
	}
	postEphemeral(api, cmd, sb.String())
	log.Printf("slack validate done user=%s issues=%d", cmd.UserID, len(issues))
}

func handleStats(api *slack.Client, a *app.App, cmd slack.SlashCommand) {
	if a.DB == nil {
		postEphemeral(api, cmd, "No run history database configured.")
		return
	}

	runs, err := sqlite.GetRecentRuns(a.DB, 5)
	if err != nil {
		postEphemeral(api, cmd, fmt.Sprintf("Error loading history: %v", err))
		log.Printf("slack stats error: %v", err)
		return
	}
	if len(runs) == 0 {
		postEphemeral(api, cmd, "No analysis runs recorded yet. Try `/phrases analyze`.")
		return
	}

	eightWeeksAgo := time.Now().AddDate(0, 0, -56)
	trends, err := sqlite.GetWeeklyTrend(a.DB, eightWeeksAgo)
	if err != nil {
		log.Printf("slack stats trend error (non-fatal): %v", err)
	}

	var sb strings.Builder
	sb.WriteString("*Phrase Reduction Dashboard*\n\n*Recent runs*\n")
	for _, r := range runs {
		fmt.Fprintf(&sb, "- %s: %d instances, %d exact groups, %d near pairs, %.1f%% reduction\n",
			r.RanAt.Format("2006-01-02 15:04"), r.TotalInstances, r.ExactGroups,
			r.NearDuplicatePairs, r.ReductionPercent)
	}
	if len(trends) > 0 {
		sb.WriteString("\n*Weekly trend*\n")
		for _, tr := range trends {
			fmt.Fprintf(&sb, "- week of %s: %d run(s), avg reduction %.1f%%, near pairs %d\n",
				tr.WeekStart, tr.Runs, tr.AvgReductionPct, tr.LastNearPairs)
		}
	}
	postEphemeral(api, cmd, sb.String())
	log.Printf("slack stats done user=%s runs=%d", cmd.UserID, len(runs))
}

func handleHelp(api *slack.Client, cmd slack.SlashCommand) {
	help := "*PhraseBot commands*\n" +
		"- `/phrases analyze`: run the duplicate scan and post the report here\n" +
		"- `/phrases validate`: check the corpus against the taxonomy\n" +
		"- `/phrases stats`: recent runs and the weekly reduction trend\n" +
		"- `/phrases help`: this message"
	postEphemeral(api, cmd, help)
}

func postEphemeral(api *slack.Client, cmd slack.SlashCommand, text string) {
	_, err := api.PostEphemeral(cmd.ChannelID, cmd.UserID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}
