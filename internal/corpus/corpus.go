// Package corpus loads the narrative phrase corpus from its JSON data
// directory into a flat occurrence stream. Loading is tolerant: a malformed
// entry becomes a warning, a broken file becomes a source error, and the
// rest of the corpus still loads.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"phrasebot/internal/analysis"
)

// Warning flags a single malformed entry, tagged with the source it came
// from. The entry is excluded from analysis; the run continues.
type Warning struct {
	Source string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Source, w.Detail)
}

// SourceError records a file that could not be read or parsed at all.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) String() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Corpus is the loaded phrase stream plus everything that went wrong while
// loading it.
type Corpus struct {
	Occurrences  []analysis.Occurrence
	Warnings     []Warning
	SourceErrors []SourceError
}

// Load reads every known source family under dataDir. A missing family
// directory is fine; an empty corpus is a valid result.
func Load(dataDir string) *Corpus {
	c := &Corpus{}
	c.loadDamageFiles(filepath.Join(dataDir, "combat", "damage"))
	c.loadLocationFiles(filepath.Join(dataDir, "combat", "locations"))
	c.loadOpeningFiles(filepath.Join(dataDir, "combat", "openings"))
	return c
}

// loadDamageFiles reads files with "verbs" and "effects" maps of
// outcome -> phrase list.
func (c *Corpus) loadDamageFiles(dir string) {
	for _, path := range jsonFiles(dir) {
		source := filepath.Base(path)
		doc, ok := c.parseFile(path, source)
		if !ok {
			continue
		}
		c.collectOutcomeMap(doc.Get("verbs"), source, "verb", "verbs")
		c.collectOutcomeMap(doc.Get("effects"), source, "effect", "effects")
	}
}

// loadLocationFiles reads files whose top level is an outcome -> phrase
// list map.
func (c *Corpus) loadLocationFiles(dir string) {
	for _, path := range jsonFiles(dir) {
		source := filepath.Base(path)
		doc, ok := c.parseFile(path, source)
		if !ok {
			continue
		}
		c.collectOutcomeMap(doc, source, "location", "")
	}
}

// loadOpeningFiles reads outcome -> phrase list files from the openings
// directory and its nested subdirectories (ranged, melee, defense). Source
// names always carry the containing directory ("openings/generic.json",
// "melee/sword.json") so an opening file can never collide with a locations
// file of the same basename.
func (c *Corpus) loadOpeningFiles(root string) {
	dirs := []string{root}
	entries, err := os.ReadDir(root)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}

	for _, dir := range dirs {
		for _, path := range jsonFiles(dir) {
			source := filepath.Base(dir) + "/" + filepath.Base(path)
			doc, ok := c.parseFile(path, source)
			if !ok {
				continue
			}
			c.collectOutcomeMap(doc, source, "opening", "")
		}
	}
}

// collectOutcomeMap walks a map of outcome label -> phrase array and emits
// one occurrence per string phrase. Anything else becomes a warning.
func (c *Corpus) collectOutcomeMap(node gjson.Result, source, kind, section string) {
	if !node.Exists() {
		return
	}
	if !node.IsObject() {
		c.warnf(source, "%s: expected an object of outcome lists, got %s", labelOr(section, kind), node.Type)
		return
	}
	node.ForEach(func(outcome, phrases gjson.Result) bool {
		if !phrases.IsArray() {
			c.warnf(source, "%s.%s: expected a phrase list, got %s", labelOr(section, kind), outcome.String(), phrases.Type)
			return true
		}
		idx := 0
		phrases.ForEach(func(_, phrase gjson.Result) bool {
			if phrase.Type != gjson.String {
				c.warnf(source, "%s.%s[%d]: non-string phrase (%s)", labelOr(section, kind), outcome.String(), idx, phrase.Type)
			} else {
				c.Occurrences = append(c.Occurrences, analysis.Occurrence{
					Phrase:  phrase.String(),
					Source:  source,
					Kind:    kind,
					Outcome: outcome.String(),
				})
			}
			idx++
			return true
		})
		return true
	})
}

func (c *Corpus) parseFile(path, source string) (gjson.Result, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		c.SourceErrors = append(c.SourceErrors, SourceError{Source: source, Err: err})
		return gjson.Result{}, false
	}
	if !gjson.ValidBytes(data) {
		c.SourceErrors = append(c.SourceErrors, SourceError{
			Source: source,
			Err:    fmt.Errorf("invalid JSON"),
		})
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(data), true
}

func (c *Corpus) warnf(source, format string, args ...any) {
	c.Warnings = append(c.Warnings, Warning{Source: source, Detail: fmt.Sprintf(format, args...)})
}

// jsonFiles lists *.json in dir, sorted, so load order is stable between
// runs. A missing directory yields nothing.
func jsonFiles(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil
	}
	return matches
}

func labelOr(section, kind string) string {
	if section != "" {
		return section
	}
	return kind
}
