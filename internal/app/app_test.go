package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"phrasebot/internal/config"
	"phrasebot/internal/storage/sqlite"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	return config.Config{
		DataDir:                   filepath.Join(root, "data"),
		DBPath:                    filepath.Join(root, "phrasebot.db"),
		ReportOutputDir:           filepath.Join(root, "reports"),
		CorpusName:                "test seeds",
		SimilarityThreshold:       0.85,
		BucketWidth:               10,
		BucketRadius:              2,
		MaxReportedDuplicates:     50,
		MaxReportedNearDuplicates: 100,
		ScanWorkers:               2,
		Location:                  time.UTC,
	}
}

func writeData(t *testing.T, cfg config.Config, rel, content string) {
	t.Helper()
	path := filepath.Join(cfg.DataDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRunAnalysisEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	writeData(t, cfg, "combat/damage/slashing.json", `{
		"verbs": {"criticalSuccess": ["the blade bites deep", "a clean cut opens"]}
	}`)
	writeData(t, cfg, "combat/damage/piercing.json", `{
		"verbs": {"criticalSuccess": ["the blade bites deep"]}
	}`)

	a := New(cfg)
	if err := a.OpenDB(); err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer a.Close()

	outcome, err := a.RunAnalysis(context.Background())
	if err != nil {
		t.Fatalf("RunAnalysis: %v", err)
	}

	if outcome.Result.TotalInstances != 3 {
		t.Errorf("total instances = %d, want 3", outcome.Result.TotalInstances)
	}
	if len(outcome.Result.ExactDuplicateGroups) != 1 {
		t.Errorf("exact groups = %d, want 1", len(outcome.Result.ExactDuplicateGroups))
	}
	if !strings.Contains(outcome.Report, "the blade bites deep") {
		t.Errorf("report missing duplicate phrase")
	}
	if outcome.Summary == "" {
		t.Error("empty summary")
	}

	data, err := os.ReadFile(outcome.ReportPath)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if string(data) != outcome.Report {
		t.Error("report file content differs from rendered report")
	}

	runs, err := sqlite.GetRecentRuns(a.DB, 5)
	if err != nil {
		t.Fatalf("GetRecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("history rows = %d, want 1", len(runs))
	}
	if runs[0].TotalInstances != 3 || runs[0].ReportPath != outcome.ReportPath {
		t.Errorf("history row = %+v", runs[0])
	}
}

func TestRunAnalysisWithoutDB(t *testing.T) {
	cfg := testConfig(t)
	writeData(t, cfg, "combat/locations/head.json", `{"criticalSuccess": ["a solid blow lands"]}`)

	outcome, err := New(cfg).RunAnalysis(context.Background())
	if err != nil {
		t.Fatalf("RunAnalysis: %v", err)
	}
	if outcome.Result.TotalInstances != 1 {
		t.Errorf("total instances = %d, want 1", outcome.Result.TotalInstances)
	}
}

// Radius 0 restricts the scan to same-bucket candidates; it must survive the
// trip from config to scan options instead of being replaced by the default.
func TestRunAnalysisHonorsZeroBucketRadius(t *testing.T) {
	// 18 and 20 chars land in adjacent length buckets and score above the
	// default threshold, so only the radius decides whether they pair up.
	run := func(t *testing.T, radius int) int {
		cfg := testConfig(t)
		cfg.BucketRadius = radius
		writeData(t, cfg, "combat/damage/slashing.json", `{
			"verbs": {"success": ["the axe falls hard"]}
		}`)
		writeData(t, cfg, "combat/damage/piercing.json", `{
			"verbs": {"success": ["the axe falls harder"]}
		}`)

		outcome, err := New(cfg).RunAnalysis(context.Background())
		if err != nil {
			t.Fatalf("RunAnalysis: %v", err)
		}
		return len(outcome.Result.NearDuplicatePairs)
	}

	if pairs := run(t, 1); pairs != 1 {
		t.Fatalf("radius 1 pairs = %d, want 1", pairs)
	}
	if pairs := run(t, 0); pairs != 0 {
		t.Fatalf("radius 0 pairs = %d, want 0; radius was not honored", pairs)
	}
}

func TestScanOptionsKeepZeroValues(t *testing.T) {
	cfg := testConfig(t)
	cfg.SimilarityThreshold = 0
	cfg.BucketRadius = 0

	opts := New(cfg).scanOptions()
	if opts.SimilarityThreshold != 0 {
		t.Errorf("threshold = %f, want 0", opts.SimilarityThreshold)
	}
	if opts.BucketRadius != 0 {
		t.Errorf("radius = %d, want 0", opts.BucketRadius)
	}
}

func TestRunValidationReportsIssues(t *testing.T) {
	cfg := testConfig(t)
	writeData(t, cfg, "combat/damage/radiant.json", `{"verbs": {"critSuccess": ["glows"]}}`)

	issues := New(cfg).RunValidation()
	var stems, outcomes bool
	for _, i := range issues {
		if strings.Contains(i.Detail, `"radiant"`) {
			stems = true
		}
		if strings.Contains(i.Detail, `"critSuccess"`) {
			outcomes = true
		}
	}
	if !stems || !outcomes {
		t.Errorf("missing expected issues, got: %v", issues)
	}
}
