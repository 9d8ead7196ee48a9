package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestApplyTouchesEveryStringLeaf(t *testing.T) {
	doc := []byte(`{
		"criticalSuccess": ["the blade strikes true", "A clean hit"],
		"nested": {"failure": ["the swing goes wide"]},
		"count": 3
	}`)

	out, changes, err := Apply(doc, CapitalizeSentences)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if changes != 2 {
		t.Fatalf("changes = %d, want 2", changes)
	}
	if got := gjson.GetBytes(out, "criticalSuccess.0").String(); got != "The blade strikes true" {
		t.Errorf("leaf 0 = %q", got)
	}
	if got := gjson.GetBytes(out, "criticalSuccess.1").String(); got != "A clean hit" {
		t.Errorf("already-capitalized leaf changed: %q", got)
	}
	if got := gjson.GetBytes(out, "nested.failure.0").String(); got != "The swing goes wide" {
		t.Errorf("nested leaf = %q", got)
	}
	if got := gjson.GetBytes(out, "count").Int(); got != 3 {
		t.Errorf("non-string leaf changed: %v", got)
	}
}

func TestApplyPreservesUntouchedDocument(t *testing.T) {
	doc := []byte(`{"criticalSuccess": ["Already fine"]}`)
	out, changes, err := Apply(doc, CapitalizeSentences)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if changes != 0 {
		t.Fatalf("changes = %d, want 0", changes)
	}
	if string(out) != string(doc) {
		t.Errorf("untouched document rewritten: %s", out)
	}
}

func TestApplyRejectsInvalidJSON(t *testing.T) {
	if _, _, err := Apply([]byte(`{"a":`), CapitalizeSentences); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestApplyEscapesKeysWithDots(t *testing.T) {
	doc := []byte(`{"melee/sword.json": {"success": ["the blade lands"]}}`)
	out, changes, err := Apply(doc, CapitalizeSentences)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if changes != 1 {
		t.Fatalf("changes = %d, want 1", changes)
	}
	if got := gjson.GetBytes(out, `melee/sword\.json.success.0`).String(); got != "The blade lands" {
		t.Errorf("dotted-key leaf = %q", got)
	}
}

func TestCapitalizeSentences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"the blade bites deep", "The blade bites deep"},
		{"The blade bites deep", "The blade bites deep"},
		{"${attackerName} strikes hard", "${attackerName} strikes hard"},
		{"", ""},
		{"7 cuts land", "7 cuts land"},
		{"über-swing connects", "Über-swing connects"},
	}
	for _, tt := range tests {
		if got := CapitalizeSentences(tt.in); got != tt.want {
			t.Errorf("CapitalizeSentences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWeaponTransform(t *testing.T) {
	sword, ok := WeaponTransform("sword")
	if !ok {
		t.Fatal("no sword table")
	}
	got := sword("the katana flashes as the longsword master executes a Zwerchhau")
	want := "the blade flashes as the sword master executes a diagonal strike"
	if got != want {
		t.Errorf("sword transform = %q, want %q", got, want)
	}

	// Word boundaries: "pikeman" must not become "polearmman".
	spear, ok := WeaponTransform("spear")
	if !ok {
		t.Fatal("no spear table")
	}
	if got := spear("the pikeman levels the pike"); got != "the pikeman levels the polearm" {
		t.Errorf("spear transform = %q", got)
	}

	if _, ok := WeaponTransform("unarmed"); ok {
		t.Error("unexpected table for unarmed")
	}
}

func TestRenameAnatomyKeys(t *testing.T) {
	doc := []byte(`{"ooze": {"criticalSuccess": ["Splatter"]}, "humanoid": {"criticalSuccess": ["Cut"]}, "beast": {"failure": ["Miss"]}}`)
	out, changes, err := RenameAnatomyKeys(doc)
	if err != nil {
		t.Fatalf("RenameAnatomyKeys: %v", err)
	}
	if changes != 2 {
		t.Fatalf("changes = %d, want 2", changes)
	}
	if !gjson.GetBytes(out, "amorphous").Exists() || gjson.GetBytes(out, "ooze").Exists() {
		t.Errorf("ooze not renamed: %s", out)
	}
	if !gjson.GetBytes(out, "quadruped").Exists() || gjson.GetBytes(out, "beast").Exists() {
		t.Errorf("beast not renamed: %s", out)
	}
	if got := gjson.GetBytes(out, "amorphous.criticalSuccess.0").String(); got != "Splatter" {
		t.Errorf("value lost in rename: %q", got)
	}
	if got := gjson.GetBytes(out, "humanoid.criticalSuccess.0").String(); got != "Cut" {
		t.Errorf("valid key disturbed: %q", got)
	}
}

func TestCanonicalizeCreatureTypes(t *testing.T) {
	doc := []byte(`{"dismemberments": [
		{"id": "a", "description": "a beast of a wound",
		 "applicableContexts": {"creatureTypes": ["beast", "humanoid"]}},
		{"id": "b", "applicableContexts": {"creatureTypes": ["fey", "ooze"]}}
	]}`)

	out, changes, err := CanonicalizeCreatureTypes(doc, "dismemberments")
	if err != nil {
		t.Fatalf("CanonicalizeCreatureTypes: %v", err)
	}
	if changes != 3 {
		t.Fatalf("changes = %d, want 3", changes)
	}
	if got := gjson.GetBytes(out, "dismemberments.0.applicableContexts.creatureTypes.0").String(); got != "quadruped" {
		t.Errorf("beast = %q", got)
	}
	if got := gjson.GetBytes(out, "dismemberments.1.applicableContexts.creatureTypes").Raw; got != `["fey-general","amorphous"]` {
		// sjson may keep original spacing; compare values instead.
		if gjson.GetBytes(out, "dismemberments.1.applicableContexts.creatureTypes.0").String() != "fey-general" ||
			gjson.GetBytes(out, "dismemberments.1.applicableContexts.creatureTypes.1").String() != "amorphous" {
			t.Errorf("second entry types = %s", got)
		}
	}
	// Prose mentioning "beast" is not data.
	if got := gjson.GetBytes(out, "dismemberments.0.description").String(); got != "a beast of a wound" {
		t.Errorf("description rewritten: %q", got)
	}
}

func TestFixDir(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	write("combat/openings/melee/sword.json", `{"criticalSuccess": ["the katana sings"]}`)
	write("combat/openings/melee/fist.json", `{"criticalSuccess": ["Knuckles crack"]}`)
	write("combat/effects/anatomy-overrides.json", `{"ooze": {"criticalSuccess": ["Splatter"]}}`)
	write("combat/dismemberment/dismemberments.json", `{"dismemberments": [{"id": "x", "applicableContexts": {"creatureTypes": ["beast"]}}]}`)

	changed, err := FixDir(dir)
	if err != nil {
		t.Fatalf("FixDir: %v", err)
	}
	if len(changed) != 3 {
		t.Fatalf("expected 3 changed files, got %d: %+v", len(changed), changed)
	}

	data, err := os.ReadFile(filepath.Join(dir, "combat", "openings", "melee", "sword.json"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := gjson.GetBytes(data, "criticalSuccess.0").String(); got != "The blade sings" {
		t.Errorf("sword opening = %q", got)
	}

	data, err = os.ReadFile(filepath.Join(dir, "combat", "effects", "anatomy-overrides.json"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !gjson.GetBytes(data, "amorphous").Exists() {
		t.Errorf("override key not renamed: %s", data)
	}

	// Second pass is a no-op.
	changed, err = FixDir(dir)
	if err != nil {
		t.Fatalf("FixDir second pass: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("second pass changed files: %+v", changed)
	}
}

func TestChain(t *testing.T) {
	sword, _ := WeaponTransform("sword")
	combined := Chain(sword, CapitalizeSentences)
	if got := combined("the katana sings"); got != "The blade sings" {
		t.Errorf("chained transform = %q", got)
	}
	if !strings.HasPrefix(combined("${attackerName} draws the katana"), "${attackerName} draws the blade") {
		t.Errorf("template head capitalized")
	}
}
