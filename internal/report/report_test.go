package report

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"phrasebot/internal/analysis"
	"phrasebot/internal/corpus"
)

func sampleResult() analysis.Result {
	occA := analysis.Occurrence{Phrase: "the axe cleaves through bone", Source: "axe.json", Kind: "verb", Outcome: "criticalSuccess"}
	occB := analysis.Occurrence{Phrase: "the axe cleaves through flesh", Source: "greataxe.json", Kind: "verb", Outcome: "criticalSuccess"}
	return analysis.Result{
		TotalInstances:     4,
		UniquePhrases:      3,
		DuplicateInstances: 1,
		ExactDuplicateGroups: []analysis.ExactDuplicateGroup{
			{Phrase: "The blade cuts deep", Count: 2, Sources: []string{"sword.json", "dagger.json"}},
		},
		NearDuplicatePairs: []analysis.NearDuplicatePair{
			{
				PhraseA:      occA.Phrase,
				PhraseB:      occB.Phrase,
				Similarity:   0.877,
				OccurrencesA: []analysis.Occurrence{occA},
				OccurrencesB: []analysis.Occurrence{occB},
			},
		},
		ReductionEstimatePercent: 50.0,
	}
}

func TestBuildMarkdownSections(t *testing.T) {
	md := BuildMarkdown(sampleResult(), RenderOptions{
		CorpusName:        "narrative-seeds",
		MaxDuplicates:     50,
		MaxNearDuplicates: 100,
		GeneratedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	for _, want := range []string{
		"# Phrase Reduction Analysis Report",
		"**Total phrase instances:** 4",
		"**Unique phrases:** 3",
		"## Exact Duplicates (1 phrases)",
		`"The blade cuts deep"`,
		"sword.json, dagger.json",
		"## Near Duplicates (1 pairs)",
		"Similarity: 87.7%",
		"- **Estimated reduction:** 50.0%",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}
}

func TestBuildMarkdownAppliesCapsAtRenderTime(t *testing.T) {
	res := analysis.Result{TotalInstances: 10, UniquePhrases: 10}
	for i := 0; i < 5; i++ {
		res.ExactDuplicateGroups = append(res.ExactDuplicateGroups, analysis.ExactDuplicateGroup{
			Phrase:  fmt.Sprintf("phrase %d", i),
			Count:   2,
			Sources: []string{"a.json", "b.json"},
		})
	}

	md := BuildMarkdown(res, RenderOptions{MaxDuplicates: 2, MaxNearDuplicates: 100})
	if !strings.Contains(md, "## Exact Duplicates (5 phrases)") {
		t.Fatalf("header should report the full count:\n%s", md)
	}
	if !strings.Contains(md, "Showing the top 2 of 5.") {
		t.Fatalf("cap note missing:\n%s", md)
	}
	if strings.Contains(md, `"phrase 2"`) {
		t.Fatalf("capped entries should not render:\n%s", md)
	}
}

func TestBuildMarkdownIncludesLoadIssues(t *testing.T) {
	md := BuildMarkdown(analysis.Result{}, RenderOptions{
		Warnings:     []corpus.Warning{{Source: "bad.json", Detail: "verbs.success[1]: non-string phrase"}},
		SourceErrors: []corpus.SourceError{{Source: "broken.json", Err: fmt.Errorf("invalid JSON")}},
	})
	if !strings.Contains(md, "## Load Issues") ||
		!strings.Contains(md, "broken.json") ||
		!strings.Contains(md, "bad.json") {
		t.Fatalf("load issues missing:\n%s", md)
	}
}

func TestInlineDiffMarksChanges(t *testing.T) {
	got := InlineDiff("the axe cleaves through bone", "the axe cleaves through flesh")
	if !strings.Contains(got, "the axe cleaves through ") {
		t.Fatalf("shared prefix should pass through: %q", got)
	}
	if !strings.Contains(got, "~~") || !strings.Contains(got, "**") {
		t.Fatalf("diff should mark removed and added text: %q", got)
	}
}

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(sampleResult())
	for _, want := range []string{"4 phrase instances", "3 unique", "1 exact", "1 near-duplicate", "50.0%"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q: %q", want, got)
		}
	}
}

func TestWriteReportFile(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	path, err := WriteReportFile("# report\n", dir, date, "narrative seeds")
	if err != nil {
		t.Fatalf("WriteReportFile failed: %v", err)
	}
	if !strings.HasSuffix(path, "narrative_seeds_20260301.md") {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "# report\n" {
		t.Fatalf("unexpected file contents %q, err=%v", data, err)
	}
}
