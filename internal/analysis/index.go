package analysis

// Index accumulates occurrences keyed by literal phrase text (case- and
// whitespace-sensitive). Unique phrases are remembered in first-seen order
// so every downstream scan iterates deterministically.
type Index struct {
	records map[string]*PhraseRecord
	order   []string
	total   int
}

func NewIndex() *Index {
	return &Index{records: make(map[string]*PhraseRecord)}
}

func (ix *Index) Add(occ Occurrence) {
	rec, ok := ix.records[occ.Phrase]
	if !ok {
		rec = &PhraseRecord{Phrase: occ.Phrase}
		ix.records[occ.Phrase] = rec
		ix.order = append(ix.order, occ.Phrase)
	}
	rec.Occurrences = append(rec.Occurrences, occ)
	ix.total++
}

func (ix *Index) AddAll(occs []Occurrence) {
	for _, occ := range occs {
		ix.Add(occ)
	}
}

// TotalInstances is the number of occurrences added, including repeats.
func (ix *Index) TotalInstances() int { return ix.total }

// UniquePhrases returns the distinct phrase texts in first-seen order.
func (ix *Index) UniquePhrases() []string {
	out := make([]string, len(ix.order))
	copy(out, ix.order)
	return out
}

// Occurrences returns the occurrence list for a phrase, or nil.
func (ix *Index) Occurrences(phrase string) []Occurrence {
	rec, ok := ix.records[phrase]
	if !ok {
		return nil
	}
	return rec.Occurrences
}

// ExactDuplicates returns every phrase whose occurrences span at least two
// distinct source files, in first-seen phrase order. A phrase repeated
// several times within a single file is not an exact duplicate.
func (ix *Index) ExactDuplicates() []ExactDuplicateGroup {
	var groups []ExactDuplicateGroup
	for _, phrase := range ix.order {
		rec := ix.records[phrase]
		seen := make(map[string]bool, len(rec.Occurrences))
		var sources []string
		for _, occ := range rec.Occurrences {
			if !seen[occ.Source] {
				seen[occ.Source] = true
				sources = append(sources, occ.Source)
			}
		}
		if len(sources) >= 2 {
			groups = append(groups, ExactDuplicateGroup{
				Phrase:  phrase,
				Count:   len(rec.Occurrences),
				Sources: sources,
			})
		}
	}
	return groups
}
