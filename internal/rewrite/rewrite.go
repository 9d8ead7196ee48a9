// Package rewrite applies mechanical cleanups to the corpus data files in
// place: sentence capitalization, weapon-reference sanitization, and legacy
// creature-type renames. Every rewrite preserves the JSON structure and key
// order of the file it touches; only string values (or renamed keys) change.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"phrasebot/internal/taxonomy"
)

// Transform is a pure string-to-string function applied to string leaves.
type Transform func(string) string

// Apply walks every string leaf of a JSON document, applies the transform,
// and writes changed values back in place. Returns the rewritten document
// and the number of leaves changed.
func Apply(doc []byte, t Transform) ([]byte, int, error) {
	if !gjson.ValidBytes(doc) {
		return nil, 0, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() && !root.IsArray() {
		return doc, 0, nil
	}

	out := doc
	changes := 0
	var walkErr error

	var walk func(node gjson.Result, path string)
	walk = func(node gjson.Result, path string) {
		if walkErr != nil {
			return
		}
		switch {
		case node.IsObject():
			node.ForEach(func(key, value gjson.Result) bool {
				walk(value, joinPath(path, escapePathKey(key.String())))
				return walkErr == nil
			})
		case node.IsArray():
			i := 0
			node.ForEach(func(_, value gjson.Result) bool {
				walk(value, joinPath(path, fmt.Sprintf("%d", i)))
				i++
				return walkErr == nil
			})
		case node.Type == gjson.String:
			next := t(node.String())
			if next == node.String() {
				return
			}
			var err error
			out, err = sjson.SetBytes(out, path, next)
			if err != nil {
				walkErr = fmt.Errorf("set %s: %w", path, err)
				return
			}
			changes++
		}
	}
	walk(root, "")
	if walkErr != nil {
		return nil, 0, walkErr
	}
	return out, changes, nil
}

// RenameAnatomyKeys renames legacy top-level keys of an anatomy overrides
// document to their canonical anatomy names. Values move untouched.
func RenameAnatomyKeys(doc []byte) ([]byte, int, error) {
	if !gjson.ValidBytes(doc) {
		return nil, 0, fmt.Errorf("invalid JSON")
	}

	out := doc
	changes := 0
	var err error
	gjson.ParseBytes(doc).ForEach(func(key, value gjson.Result) bool {
		canonical, ok := taxonomy.CreatureTypeAliases[key.String()]
		if !ok {
			return true
		}
		out, err = sjson.SetRawBytes(out, escapePathKey(canonical), []byte(value.Raw))
		if err != nil {
			return false
		}
		out, err = sjson.DeleteBytes(out, escapePathKey(key.String()))
		if err != nil {
			return false
		}
		changes++
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	return out, changes, nil
}

// CanonicalizeCreatureTypes rewrites legacy names inside each entry's
// applicableContexts.creatureTypes list. Only those lists are touched, so a
// description that happens to mention "beast" stays as written.
func CanonicalizeCreatureTypes(doc []byte, listKey string) ([]byte, int, error) {
	if !gjson.ValidBytes(doc) {
		return nil, 0, fmt.Errorf("invalid JSON")
	}

	out := doc
	changes := 0
	var err error
	entry := 0
	gjson.GetBytes(doc, listKey).ForEach(func(_, item gjson.Result) bool {
		i := 0
		item.Get("applicableContexts.creatureTypes").ForEach(func(_, ct gjson.Result) bool {
			if canonical, ok := taxonomy.CreatureTypeAliases[ct.String()]; ok {
				path := fmt.Sprintf("%s.%d.applicableContexts.creatureTypes.%d", listKey, entry, i)
				out, err = sjson.SetBytes(out, path, canonical)
				if err != nil {
					return false
				}
				changes++
			}
			i++
			return true
		})
		entry++
		return err == nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, changes, nil
}

// FileChange records one rewritten file.
type FileChange struct {
	Path    string
	Changes int
}

// FixDir runs every rewrite over the data directory and writes changed
// files back. Opening files get sentence capitalization plus the weapon
// table matching their stem; complications and dismemberments get creature
// type renames; the anatomy overrides file gets key renames.
func FixDir(dataDir string) ([]FileChange, error) {
	var changed []FileChange

	openings, err := openingFiles(filepath.Join(dataDir, "combat", "openings"))
	if err != nil {
		return nil, err
	}
	for _, path := range openings {
		stem := strings.TrimSuffix(filepath.Base(path), ".json")
		transform := CapitalizeSentences
		if weapon, ok := WeaponTransform(stem); ok {
			transform = Chain(weapon, CapitalizeSentences)
		}
		fc, err := rewriteFile(path, func(doc []byte) ([]byte, int, error) {
			return Apply(doc, transform)
		})
		if err != nil {
			return changed, err
		}
		if fc.Changes > 0 {
			changed = append(changed, fc)
		}
	}

	contextFiles := []struct {
		rel     string
		listKey string
	}{
		{"combat/complications/critical-success.json", "complications"},
		{"combat/dismemberment/dismemberments.json", "dismemberments"},
	}
	for _, cf := range contextFiles {
		path := filepath.Join(dataDir, filepath.FromSlash(cf.rel))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		fc, err := rewriteFile(path, func(doc []byte) ([]byte, int, error) {
			return CanonicalizeCreatureTypes(doc, cf.listKey)
		})
		if err != nil {
			return changed, err
		}
		if fc.Changes > 0 {
			changed = append(changed, fc)
		}
	}

	overrides := filepath.Join(dataDir, "combat", "effects", "anatomy-overrides.json")
	if _, err := os.Stat(overrides); err == nil {
		fc, err := rewriteFile(overrides, RenameAnatomyKeys)
		if err != nil {
			return changed, err
		}
		if fc.Changes > 0 {
			changed = append(changed, fc)
		}
	}

	return changed, nil
}

func rewriteFile(path string, fn func([]byte) ([]byte, int, error)) (FileChange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileChange{}, fmt.Errorf("read %s: %w", path, err)
	}
	out, changes, err := fn(data)
	if err != nil {
		return FileChange{}, fmt.Errorf("rewrite %s: %w", path, err)
	}
	if changes == 0 {
		return FileChange{Path: path}, nil
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return FileChange{}, fmt.Errorf("write %s: %w", path, err)
	}
	return FileChange{Path: path, Changes: changes}, nil
}

// openingFiles lists opening JSON files including one level of nested
// subdirectories, matching how the corpus loader walks them.
func openingFiles(root string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.json"))
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return matches, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		nested, err := filepath.Glob(filepath.Join(root, e.Name(), "*.json"))
		if err != nil {
			return nil, err
		}
		matches = append(matches, nested...)
	}
	return matches, nil
}

// Chain composes transforms left to right.
func Chain(transforms ...Transform) Transform {
	return func(s string) string {
		for _, t := range transforms {
			s = t(s)
		}
		return s
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// escapePathKey escapes gjson path metacharacters in a literal object key.
func escapePathKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
