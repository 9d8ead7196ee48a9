package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestLoadAllFamilies(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "combat/damage/slashing.json", `{
		"verbs": {"criticalSuccess": ["cleaves", "severs"], "failure": ["glances off"]},
		"effects": {"criticalSuccess": ["blood sprays wide"]}
	}`)
	writeFile(t, root, "combat/locations/humanoid.json", `{
		"success": ["across the chest", "along the arm"]
	}`)
	writeFile(t, root, "combat/openings/generic.json", `{
		"success": ["The attacker presses forward"]
	}`)
	writeFile(t, root, "combat/openings/melee/sword.json", `{
		"criticalSuccess": ["Steel flashes"]
	}`)

	c := Load(root)
	if len(c.Warnings) != 0 || len(c.SourceErrors) != 0 {
		t.Fatalf("unexpected warnings %v or errors %v", c.Warnings, c.SourceErrors)
	}
	if len(c.Occurrences) != 8 {
		t.Fatalf("expected 8 occurrences, got %d", len(c.Occurrences))
	}

	bySource := make(map[string]int)
	for _, occ := range c.Occurrences {
		bySource[occ.Source]++
	}
	if bySource["slashing.json"] != 4 {
		t.Fatalf("expected 4 damage occurrences, got %d", bySource["slashing.json"])
	}
	if bySource["melee/sword.json"] != 1 {
		t.Fatalf("expected nested opening source 'melee/sword.json', got %v", bySource)
	}
	if bySource["openings/generic.json"] != 1 {
		t.Fatalf("expected root opening source 'openings/generic.json', got %v", bySource)
	}

	for _, occ := range c.Occurrences {
		if occ.Source == "slashing.json" && occ.Phrase == "cleaves" {
			if occ.Kind != "verb" || occ.Outcome != "criticalSuccess" {
				t.Fatalf("unexpected labels on occurrence: %+v", occ)
			}
		}
	}
}

func TestLoadMalformedEntriesBecomeWarnings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "combat/damage/piercing.json", `{
		"verbs": {"success": ["pierces", 42, "punctures"], "failure": "not-a-list"}
	}`)

	c := Load(root)
	if len(c.SourceErrors) != 0 {
		t.Fatalf("malformed entries must not be source errors: %v", c.SourceErrors)
	}
	if len(c.Occurrences) != 2 {
		t.Fatalf("expected the 2 well-formed phrases, got %d", len(c.Occurrences))
	}
	if len(c.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", c.Warnings)
	}
	for _, w := range c.Warnings {
		if w.Source != "piercing.json" {
			t.Fatalf("warning not tagged with its source: %+v", w)
		}
	}
	if !strings.Contains(c.Warnings[0].Detail, "success[1]") {
		t.Fatalf("warning should locate the bad entry: %q", c.Warnings[0].Detail)
	}
}

func TestLoadBrokenFileIsSourceErrorOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "combat/damage/bad.json", `{"verbs": {`)
	writeFile(t, root, "combat/damage/good.json", `{"verbs": {"success": ["strikes true"]}}`)

	c := Load(root)
	if len(c.SourceErrors) != 1 || c.SourceErrors[0].Source != "bad.json" {
		t.Fatalf("expected one source error for bad.json, got %v", c.SourceErrors)
	}
	if len(c.Occurrences) != 1 || c.Occurrences[0].Phrase != "strikes true" {
		t.Fatalf("good source should still load, got %v", c.Occurrences)
	}
}

func TestOpeningSourceNeverCollidesWithLocations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "combat/locations/head.json", `{"success": ["across the brow"]}`)
	writeFile(t, root, "combat/openings/head.json", `{"success": ["a feint high"]}`)

	c := Load(root)
	sources := make(map[string]bool)
	for _, occ := range c.Occurrences {
		sources[occ.Source] = true
	}
	if !sources["head.json"] || !sources["openings/head.json"] {
		t.Fatalf("same-basename files must keep distinct sources, got %v", sources)
	}
}

func TestLoadEmptyDataDir(t *testing.T) {
	c := Load(t.TempDir())
	if len(c.Occurrences) != 0 || len(c.Warnings) != 0 || len(c.SourceErrors) != 0 {
		t.Fatalf("empty corpus should load cleanly, got %+v", c)
	}
}
