// Package app wires config, corpus loading, the duplicate scan, reporting,
// and run history into one pipeline the CLI, the scheduler, the watcher, and
// the Slack bot all share.
package app

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"phrasebot/internal/analysis"
	"phrasebot/internal/config"
	"phrasebot/internal/corpus"
	"phrasebot/internal/report"
	"phrasebot/internal/storage/sqlite"
	"phrasebot/internal/taxonomy"
)

type App struct {
	Cfg config.Config
	DB  *sql.DB
}

// New prepares the app. The database is optional: a nil-DB app still runs
// analysis, it just keeps no history.
func New(cfg config.Config) *App {
	return &App{Cfg: cfg}
}

// OpenDB initializes the run history store at the configured path.
func (a *App) OpenDB() error {
	db, err := sqlite.InitDB(a.Cfg.DBPath)
	if err != nil {
		return err
	}
	a.DB = db
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// RunOutcome is everything one analysis run produced.
type RunOutcome struct {
	Result       analysis.Result
	Report       string
	ReportPath   string
	Summary      string
	Warnings     int
	SourceErrors int
	Duration     time.Duration
}

// RunAnalysis loads the corpus, runs the full duplicate scan, renders and
// writes the report, and records the run. History persistence failures are
// logged, not returned; the report already exists on disk at that point.
func (a *App) RunAnalysis(ctx context.Context) (RunOutcome, error) {
	start := time.Now()

	c := corpus.Load(a.Cfg.DataDir)
	log.Printf("corpus loaded dir=%s occurrences=%d warnings=%d source_errors=%d",
		a.Cfg.DataDir, len(c.Occurrences), len(c.Warnings), len(c.SourceErrors))
	for _, w := range c.Warnings {
		log.Printf("corpus warning %s", w)
	}
	for _, e := range c.SourceErrors {
		log.Printf("corpus source error %s", e)
	}

	ix := analysis.NewIndex()
	ix.AddAll(c.Occurrences)

	opts := a.scanOptions()
	res, err := analysis.Run(ctx, ix, opts)
	if err != nil {
		return RunOutcome{}, err
	}
	duration := time.Since(start)
	log.Printf("analysis done instances=%d unique=%d exact_groups=%d near_pairs=%d reduction=%.1f%% duration=%s",
		res.TotalInstances, res.UniquePhrases, len(res.ExactDuplicateGroups),
		len(res.NearDuplicatePairs), res.ReductionEstimatePercent, duration.Round(time.Millisecond))

	loc := a.Cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now().In(loc)
	md := report.BuildMarkdown(res, report.RenderOptions{
		CorpusName:        a.Cfg.CorpusName,
		MaxDuplicates:     a.Cfg.MaxReportedDuplicates,
		MaxNearDuplicates: a.Cfg.MaxReportedNearDuplicates,
		GeneratedAt:       now,
		Warnings:          c.Warnings,
		SourceErrors:      c.SourceErrors,
	})

	if err := os.MkdirAll(a.Cfg.ReportOutputDir, 0o755); err != nil {
		return RunOutcome{}, err
	}
	path, err := report.WriteReportFile(md, a.Cfg.ReportOutputDir, now, a.Cfg.CorpusName)
	if err != nil {
		return RunOutcome{}, err
	}
	log.Printf("report written file=%s bytes=%d", path, len(md))

	outcome := RunOutcome{
		Result:       res,
		Report:       md,
		ReportPath:   path,
		Summary:      report.FormatSummary(res),
		Warnings:     len(c.Warnings),
		SourceErrors: len(c.SourceErrors),
		Duration:     duration,
	}

	if a.DB != nil {
		_, err := sqlite.InsertRun(a.DB, sqlite.RunRecord{
			RanAt:               now,
			TotalInstances:      res.TotalInstances,
			UniquePhrases:       res.UniquePhrases,
			ExactGroups:         len(res.ExactDuplicateGroups),
			DuplicateInstances:  res.DuplicateInstances,
			NearDuplicatePairs:  len(res.NearDuplicatePairs),
			ReductionPercent:    res.ReductionEstimatePercent,
			SimilarityThreshold: opts.SimilarityThreshold,
			DurationMS:          duration.Milliseconds(),
			ReportPath:          path,
		})
		if err != nil {
			log.Printf("run history persist error (non-fatal): %v", err)
		}
	}

	return outcome, nil
}

// RunValidation loads the corpus and runs the taxonomy checks over it.
func (a *App) RunValidation() []taxonomy.Issue {
	c := corpus.Load(a.Cfg.DataDir)
	issues := taxonomy.Validate(a.Cfg.DataDir, c.Occurrences)
	for _, e := range c.SourceErrors {
		issues = append(issues, taxonomy.Issue{Source: e.Source, Detail: e.Err.Error()})
	}
	log.Printf("validation done occurrences=%d issues=%d", len(c.Occurrences), len(issues))
	return issues
}

func (a *App) scanOptions() analysis.Options {
	opts := analysis.DefaultOptions()
	// Threshold 0 and radius 0 are legitimate settings, so these copy
	// unconditionally; LoadConfig already defaulted absent keys.
	opts.SimilarityThreshold = a.Cfg.SimilarityThreshold
	opts.BucketRadius = a.Cfg.BucketRadius
	if a.Cfg.BucketWidth > 0 {
		opts.BucketWidth = a.Cfg.BucketWidth
	}
	if a.Cfg.ScanWorkers > 0 {
		opts.Workers = a.Cfg.ScanWorkers
	}
	return opts
}
