package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"unicode/utf8"
)

const (
	DefaultSimilarityThreshold = 0.85
	DefaultBucketWidth         = 10
	DefaultBucketRadius        = 2

	// Phrases whose lengths differ by more than this fraction of the longer
	// one are never scored, regardless of bucket distance.
	maxLengthDelta = 0.2
)

// Options controls one analysis run. The zero value is not usable; call
// DefaultOptions and override what you need.
type Options struct {
	SimilarityThreshold float64
	BucketWidth         int
	BucketRadius        int
	Workers             int // parallel scan shards; <=1 means serial

	// Progress, when set, is called as anchors complete with (done, total).
	// With Workers > 1 it may be called from multiple goroutines.
	Progress func(done, total int)
}

func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: DefaultSimilarityThreshold,
		BucketWidth:         DefaultBucketWidth,
		BucketRadius:        DefaultBucketRadius,
		Workers:             1,
	}
}

// Validate rejects out-of-range options before any scanning starts.
func (o Options) Validate() error {
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold %.2f out of range [0,1]", o.SimilarityThreshold)
	}
	if o.BucketWidth <= 0 {
		return fmt.Errorf("bucket width must be positive, got %d", o.BucketWidth)
	}
	if o.BucketRadius < 0 {
		return fmt.Errorf("bucket radius must be non-negative, got %d", o.BucketRadius)
	}
	return nil
}

// Run performs the full analysis over an index: exact duplicates, then the
// bucketed near-duplicate scan. The result is identical for identical input
// and options on every run. On cancellation the partial pair list gathered
// so far is returned along with ctx.Err(); it is valid, just incomplete.
func Run(ctx context.Context, ix *Index, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	groups := ix.ExactDuplicates()
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})

	duplicateInstances := 0
	for _, g := range groups {
		duplicateInstances += g.Count - 1
	}

	pairs, scanErr := scanNearDuplicates(ctx, ix, opts)
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})

	res := Result{
		TotalInstances:       ix.TotalInstances(),
		UniquePhrases:        len(ix.UniquePhrases()),
		DuplicateInstances:   duplicateInstances,
		ExactDuplicateGroups: groups,
		NearDuplicatePairs:   pairs,
	}
	if res.TotalInstances > 0 {
		res.ReductionEstimatePercent = float64(duplicateInstances+len(pairs)) / float64(res.TotalInstances) * 100
	}
	return res, scanErr
}

// scanNearDuplicates shards the anchor phrases across workers. Each worker
// writes into its own slot of the results slice, and slots are merged in
// anchor order, so the output matches a serial scan exactly. Cancellation
// is checked between anchors only; a finished anchor is never rolled back.
func scanNearDuplicates(ctx context.Context, ix *Index, opts Options) ([]NearDuplicatePair, error) {
	anchors := ix.UniquePhrases()
	if len(anchors) == 0 {
		return nil, nil
	}

	buckets := newBucketIndex(anchors, opts.BucketWidth, opts.BucketRadius)

	norms := make(map[string]string, len(anchors))
	for _, p := range anchors {
		norms[p] = Normalize(p)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(anchors) {
		workers = len(anchors)
	}

	chunkSize := (len(anchors) + workers - 1) / workers
	var chunks [][]string
	for start := 0; start < len(anchors); start += chunkSize {
		end := start + chunkSize
		if end > len(anchors) {
			end = len(anchors)
		}
		chunks = append(chunks, anchors[start:end])
	}

	var done atomic.Int64
	total := len(anchors)
	results := make([][]NearDuplicatePair, len(chunks))

	var wg sync.WaitGroup
	for ci, chunk := range chunks {
		wg.Add(1)
		go func(ci int, chunk []string) {
			defer wg.Done()
			var local []NearDuplicatePair
			for _, anchor := range chunk {
				if ctx.Err() != nil {
					break
				}
				local = append(local, scanAnchor(anchor, buckets, norms, ix, opts)...)
				n := done.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n), total)
				}
			}
			results[ci] = local
		}(ci, chunk)
	}
	wg.Wait()

	var pairs []NearDuplicatePair
	for _, r := range results {
		pairs = append(pairs, r...)
	}
	return pairs, ctx.Err()
}

// scanAnchor scores one anchor phrase against its admissible candidates and
// returns the pairs at or above the threshold. The unordered pair {P,Q} is
// emitted only while scanning the lexically smaller phrase, so it can never
// appear twice no matter how buckets overlap.
func scanAnchor(anchor string, buckets *bucketIndex, norms map[string]string, ix *Index, opts Options) []NearDuplicatePair {
	anchorLen := utf8.RuneCountInString(anchor)
	normAnchor := norms[anchor]

	var out []NearDuplicatePair
	for _, cand := range buckets.candidates(anchor) {
		if cand == anchor || anchor > cand {
			continue
		}

		candLen := utf8.RuneCountInString(cand)
		longer := anchorLen
		if candLen > longer {
			longer = candLen
		}
		if longer == 0 {
			continue
		}
		delta := anchorLen - candLen
		if delta < 0 {
			delta = -delta
		}
		if float64(delta)/float64(longer) > maxLengthDelta {
			continue
		}

		normCand := norms[cand]
		if normAnchor == normCand {
			continue // same phrase under normalization: exact, not near
		}

		sim := Ratio(normAnchor, normCand)
		if sim >= opts.SimilarityThreshold {
			out = append(out, NearDuplicatePair{
				PhraseA:      anchor,
				PhraseB:      cand,
				Similarity:   sim,
				OccurrencesA: ix.Occurrences(anchor),
				OccurrencesB: ix.Occurrences(cand),
			})
		}
	}
	return out
}
