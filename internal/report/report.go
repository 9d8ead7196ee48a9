// Package report renders analysis results as markdown and short summaries.
// Rendering is a stateless pass over the result data; the caps on reported
// groups and pairs are applied here, never during detection.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"phrasebot/internal/analysis"
	"phrasebot/internal/corpus"
)

// RenderOptions controls presentation only.
type RenderOptions struct {
	CorpusName        string
	MaxDuplicates     int
	MaxNearDuplicates int
	GeneratedAt       time.Time
	Warnings          []corpus.Warning
	SourceErrors      []corpus.SourceError
}

// BuildMarkdown renders the full reduction report.
func BuildMarkdown(res analysis.Result, opts RenderOptions) string {
	var b strings.Builder

	b.WriteString("# Phrase Reduction Analysis Report\n\n")
	if opts.CorpusName != "" {
		fmt.Fprintf(&b, "**Corpus:** %s\n", opts.CorpusName)
	}
	if !opts.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "**Generated:** %s\n", opts.GeneratedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "**Total phrase instances:** %d\n", res.TotalInstances)
	fmt.Fprintf(&b, "**Unique phrases:** %d\n\n", res.UniquePhrases)

	writeExactDuplicates(&b, res, opts)
	writeNearDuplicates(&b, res, opts)
	writeStatistics(&b, res)
	writeLoadIssues(&b, opts)

	return b.String()
}

func writeExactDuplicates(b *strings.Builder, res analysis.Result, opts RenderOptions) {
	groups := res.ExactDuplicateGroups
	fmt.Fprintf(b, "## Exact Duplicates (%d phrases)\n\n", len(groups))
	b.WriteString("Phrases that appear in more than one source file.\n\n")

	shown := groups
	if opts.MaxDuplicates > 0 && len(shown) > opts.MaxDuplicates {
		shown = shown[:opts.MaxDuplicates]
		fmt.Fprintf(b, "Showing the top %d of %d.\n\n", opts.MaxDuplicates, len(groups))
	}
	for _, g := range shown {
		fmt.Fprintf(b, "### %q\n", g.Phrase)
		fmt.Fprintf(b, "- **Occurrences:** %d\n", g.Count)
		fmt.Fprintf(b, "- **Files:** %s\n", strings.Join(g.Sources, ", "))
		b.WriteString("\n")
	}
}

func writeNearDuplicates(b *strings.Builder, res analysis.Result, opts RenderOptions) {
	pairs := res.NearDuplicatePairs
	fmt.Fprintf(b, "## Near Duplicates (%d pairs)\n\n", len(pairs))
	b.WriteString("Very similar phrases that could be consolidated.\n\n")

	shown := pairs
	if opts.MaxNearDuplicates > 0 && len(shown) > opts.MaxNearDuplicates {
		shown = shown[:opts.MaxNearDuplicates]
		fmt.Fprintf(b, "Showing the top %d of %d.\n\n", opts.MaxNearDuplicates, len(pairs))
	}
	for _, p := range shown {
		fmt.Fprintf(b, "### Similarity: %.1f%%\n", p.Similarity*100)
		fmt.Fprintf(b, "1. %q (%s)\n", p.PhraseA, sourceList(p.OccurrencesA))
		fmt.Fprintf(b, "2. %q (%s)\n", p.PhraseB, sourceList(p.OccurrencesB))
		fmt.Fprintf(b, "- Diff: %s\n\n", InlineDiff(p.PhraseA, p.PhraseB))
	}
}

func writeStatistics(b *strings.Builder, res analysis.Result) {
	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(b, "- **Exact duplicates:** %d phrases\n", len(res.ExactDuplicateGroups))
	fmt.Fprintf(b, "- **Near duplicates:** %d pairs\n", len(res.NearDuplicatePairs))
	fmt.Fprintf(b, "- **Potential phrase reductions:** %d instances\n",
		res.DuplicateInstances+len(res.NearDuplicatePairs))
	fmt.Fprintf(b, "- **Estimated reduction:** %.1f%%\n", res.ReductionEstimatePercent)
}

func writeLoadIssues(b *strings.Builder, opts RenderOptions) {
	if len(opts.SourceErrors) == 0 && len(opts.Warnings) == 0 {
		return
	}
	b.WriteString("\n## Load Issues\n\n")
	for _, e := range opts.SourceErrors {
		fmt.Fprintf(b, "- **Source error:** %s\n", e)
	}
	for _, w := range opts.Warnings {
		fmt.Fprintf(b, "- **Warning:** %s\n", w)
	}
}

func sourceList(occs []analysis.Occurrence) string {
	seen := make(map[string]bool, len(occs))
	var out []string
	for _, occ := range occs {
		if !seen[occ.Source] {
			seen[occ.Source] = true
			out = append(out, occ.Source)
		}
	}
	return strings.Join(out, ", ")
}

// FormatSummary returns the one-paragraph form used for console output and
// Slack posts.
func FormatSummary(res analysis.Result) string {
	return fmt.Sprintf(
		"Analyzed %d phrase instances (%d unique): %d exact duplicate phrases, "+
			"%d near-duplicate pairs, estimated reduction %.1f%%.",
		res.TotalInstances, res.UniquePhrases,
		len(res.ExactDuplicateGroups), len(res.NearDuplicatePairs),
		res.ReductionEstimatePercent,
	)
}

// WriteReportFile writes the rendered markdown under outputDir as
// <corpus>_<date>.md and returns the path.
func WriteReportFile(content, outputDir string, reportDate time.Time, corpusName string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.md", sanitizeFilename(corpusName), reportDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}
