// Package taxonomy holds the fixed vocabularies the corpus must stay inside
// (damage types, anatomy keys, outcome labels) and the consistency checks
// that keep hand-authored data honest. Checks report issues; they never
// abort a run.
package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"phrasebot/internal/analysis"
)

// ValidDamageTypes are the damage type names data files may reference,
// including the wildcard.
var ValidDamageTypes = map[string]bool{
	"slashing": true, "piercing": true, "bludgeoning": true,
	"fire": true, "cold": true, "electricity": true, "acid": true, "sonic": true,
	"positive": true, "negative": true, "force": true, "mental": true,
	"poison": true, "bleed": true, "cold-iron": true, "silver": true,
	"any": true,
}

// ValidAnatomyKeys are the base anatomy names plus undead modifiers that
// creatureTypes lists and anatomy-override keys may use.
var ValidAnatomyKeys = map[string]bool{
	"will-o-wisp": true, "scythe-tree": true, "shambling-mound": true,
	"troll": true, "owlbear": true, "worg": true, "giant-cyclops": true,
	"dragon": true, "fey-tiny": true, "fey-small": true, "fey-humanoid": true,
	"fey-general": true, "air-elemental": true, "earth-elemental": true,
	"fire-elemental": true, "water-elemental": true, "elemental-general": true,
	"golem": true, "construct": true, "amorphous": true, "vine": true,
	"plant": true, "aberration-tentacled": true, "aberration-general": true,
	"insectoid": true, "serpent": true, "avian": true, "aquatic": true,
	"quadruped": true, "demon": true, "devil": true, "daemon": true,
	"fiend": true, "angel": true, "archon": true, "azata": true,
	"celestial": true, "psychopomp": true, "monitor": true,
	"giant": true, "goblinoid": true, "orc": true, "humanoid": true,
	"incorporeal": true, "skeletal": true, "skeleton": true, "zombie": true,
	"vampire": true, "mummy": true, "lich": true, "undead": true,
}

// AnatomyModifiers layer on top of a base anatomy rather than naming one.
var AnatomyModifiers = map[string]bool{
	"incorporeal": true, "skeletal": true, "skeleton": true, "zombie": true,
	"vampire": true, "mummy": true, "lich": true, "undead": true,
}

// CreatureTypeAliases maps legacy creature type names to their current
// anatomy keys. Rewrite uses this to fix data in place; validate treats the
// legacy names as issues.
var CreatureTypeAliases = map[string]string{
	"aberration": "aberration-general",
	"beast":      "quadruped",
	"elemental":  "elemental-general",
	"fey":        "fey-general",
	"ooze":       "amorphous",
}

// ValidOutcomes are the outcome labels phrase files key their lists by.
var ValidOutcomes = map[string]bool{
	"criticalSuccess": true,
	"success":         true,
	"failure":         true,
	"criticalFailure": true,
}

// humanoidOnlyParts only make sense on creatures with hands and feet.
var humanoidOnlyParts = []string{"hand", "finger", "foot", "ear"}

// nonHumanoidTypes never have those parts.
var nonHumanoidTypes = map[string]bool{
	"plant": true, "construct": true, "elemental-general": true,
	"amorphous": true, "dragon": true, "aberration-general": true,
	"quadruped": true,
}

// Issue is one taxonomy problem found in the corpus data.
type Issue struct {
	Source string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Source, i.Detail)
}

// Validate runs every taxonomy check against the data directory and the
// already-loaded occurrence stream. Missing files and directories are
// skipped, not reported; an absent family is a valid corpus.
func Validate(dataDir string, occurrences []analysis.Occurrence) []Issue {
	var issues []Issue
	issues = append(issues, CheckOutcomeLabels(occurrences)...)
	issues = append(issues, checkDamageFileStems(dataDir)...)
	issues = append(issues, checkContextEntries(dataDir, "combat/complications/critical-success.json", "complications")...)
	issues = append(issues, checkContextEntries(dataDir, "combat/dismemberment/dismemberments.json", "dismemberments")...)
	issues = append(issues, checkAnatomyOverrides(dataDir)...)
	return issues
}

// CheckOutcomeLabels flags phrase lists keyed by an outcome label outside
// the fixed set.
func CheckOutcomeLabels(occurrences []analysis.Occurrence) []Issue {
	var issues []Issue
	seen := make(map[string]bool)
	for _, occ := range occurrences {
		key := occ.Source + "\x00" + occ.Outcome
		if seen[key] || ValidOutcomes[occ.Outcome] {
			continue
		}
		seen[key] = true
		issues = append(issues, Issue{
			Source: occ.Source,
			Detail: fmt.Sprintf("unknown outcome label %q", occ.Outcome),
		})
	}
	return issues
}

// checkDamageFileStems expects combat/damage files to be named after a
// damage type.
func checkDamageFileStems(dataDir string) []Issue {
	var issues []Issue
	matches, _ := filepath.Glob(filepath.Join(dataDir, "combat", "damage", "*.json"))
	for _, path := range matches {
		name := filepath.Base(path)
		stem := strings.TrimSuffix(name, ".json")
		if !ValidDamageTypes[stem] {
			issues = append(issues, Issue{
				Source: name,
				Detail: fmt.Sprintf("file stem %q is not a damage type", stem),
			})
		}
	}
	return issues
}

// checkContextEntries validates the applicableContexts of each entry in a
// complications or dismemberments file: creature types must be known
// anatomy keys, damage types must be valid, context arrays must not be
// present-but-empty, and humanoid-only injury locations must not target
// non-humanoid creatures.
func checkContextEntries(dataDir, rel, listKey string) []Issue {
	source := filepath.Base(rel)
	data, err := os.ReadFile(filepath.Join(dataDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil
	}
	if !gjson.ValidBytes(data) {
		return []Issue{{Source: source, Detail: "invalid JSON"}}
	}

	var issues []Issue
	gjson.GetBytes(data, listKey).ForEach(func(_, entry gjson.Result) bool {
		id := entry.Get("id").String()
		if id == "" {
			id = "(no id)"
		}
		contexts := entry.Get("applicableContexts")

		creatureTypes := contexts.Get("creatureTypes")
		if creatureTypes.IsArray() && len(creatureTypes.Array()) == 0 {
			issues = append(issues, Issue{Source: source, Detail: fmt.Sprintf("%s: empty creatureTypes array", id)})
		}
		var entryTypes []string
		creatureTypes.ForEach(func(_, ct gjson.Result) bool {
			name := ct.String()
			entryTypes = append(entryTypes, name)
			if name == "any" || ValidAnatomyKeys[name] {
				return true
			}
			if canonical, ok := CreatureTypeAliases[name]; ok {
				issues = append(issues, Issue{
					Source: source,
					Detail: fmt.Sprintf("%s: legacy creature type %q (rename to %q)", id, name, canonical),
				})
			} else {
				issues = append(issues, Issue{
					Source: source,
					Detail: fmt.Sprintf("%s: unknown creature type %q", id, name),
				})
			}
			return true
		})

		damageTypes := contexts.Get("damageTypes")
		if damageTypes.IsArray() && len(damageTypes.Array()) == 0 {
			issues = append(issues, Issue{Source: source, Detail: fmt.Sprintf("%s: empty damageTypes array", id)})
		}
		damageTypes.ForEach(func(_, dt gjson.Result) bool {
			if name := dt.String(); name != "" && !ValidDamageTypes[name] {
				issues = append(issues, Issue{
					Source: source,
					Detail: fmt.Sprintf("%s: unknown damage type %q", id, name),
				})
			}
			return true
		})

		location := strings.ToLower(entry.Get("location").String())
		if location != "" {
			for _, part := range humanoidOnlyParts {
				if !strings.Contains(location, part) {
					continue
				}
				for _, ctype := range entryTypes {
					if nonHumanoidTypes[ctype] {
						issues = append(issues, Issue{
							Source: source,
							Detail: fmt.Sprintf("%s: %q location for %q creature", id, location, ctype),
						})
					}
				}
			}
		}
		return true
	})
	return issues
}

// checkAnatomyOverrides validates the top-level keys of the anatomy
// overrides file.
func checkAnatomyOverrides(dataDir string) []Issue {
	source := "anatomy-overrides.json"
	data, err := os.ReadFile(filepath.Join(dataDir, "combat", "effects", source))
	if err != nil {
		return nil
	}
	if !gjson.ValidBytes(data) {
		return []Issue{{Source: source, Detail: "invalid JSON"}}
	}

	var issues []Issue
	gjson.ParseBytes(data).ForEach(func(key, _ gjson.Result) bool {
		name := key.String()
		if ValidAnatomyKeys[name] {
			return true
		}
		if canonical, ok := CreatureTypeAliases[name]; ok {
			issues = append(issues, Issue{
				Source: source,
				Detail: fmt.Sprintf("legacy override key %q (rename to %q)", name, canonical),
			})
		} else {
			issues = append(issues, Issue{
				Source: source,
				Detail: fmt.Sprintf("unknown override key %q", name),
			})
		}
		return true
	})
	return issues
}
