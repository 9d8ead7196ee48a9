// Package analysis finds exact and near-duplicate phrases in a loaded
// corpus. The corpus is immutable once indexed; every operation returns a
// new collection and leaves its inputs untouched.
package analysis

// Occurrence records one appearance of a phrase in one source file.
type Occurrence struct {
	Phrase  string
	Source  string // file name, e.g. "slashing.json" or "melee/sword.json"
	Kind    string // "verb", "effect", "location", "opening"
	Outcome string // e.g. "criticalSuccess", "failure"
}

// PhraseRecord is a phrase plus every occurrence of it, in the order the
// occurrences were added. Occurrences are not deduplicated: the same phrase
// listed twice in one file yields two entries.
type PhraseRecord struct {
	Phrase      string
	Occurrences []Occurrence
}

// ExactDuplicateGroup is a phrase whose occurrences span at least two
// distinct source files.
type ExactDuplicateGroup struct {
	Phrase  string
	Count   int      // total occurrences, including repeats within one file
	Sources []string // distinct source files, in first-seen order
}

// NearDuplicatePair is an unordered pair of distinct phrases whose
// normalized forms differ but score at or above the similarity threshold.
// PhraseA always sorts lexically before PhraseB.
type NearDuplicatePair struct {
	PhraseA      string
	PhraseB      string
	Similarity   float64
	OccurrencesA []Occurrence
	OccurrencesB []Occurrence
}

// Result is the full output of one analysis run.
type Result struct {
	TotalInstances           int
	UniquePhrases            int
	DuplicateInstances       int // sum of (count-1) over exact groups
	ExactDuplicateGroups     []ExactDuplicateGroup
	NearDuplicatePairs       []NearDuplicatePair
	ReductionEstimatePercent float64
}
