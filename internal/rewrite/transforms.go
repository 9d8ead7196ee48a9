package rewrite

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CapitalizeSentences upper-cases the first letter of a phrase. Phrases that
// open with a template variable like ${attackerName} are left alone; the
// substituted name carries its own casing.
func CapitalizeSentences(s string) string {
	if s == "" || strings.HasPrefix(s, "${") {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

type replacement struct {
	pattern *regexp.Regexp
	repl    string
}

func rules(pairs ...string) []replacement {
	out := make([]replacement, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, replacement{regexp.MustCompile(pairs[i]), pairs[i+1]})
	}
	return out
}

// Weapon phrase files accumulated specific weapon names and fencing jargon
// that read wrong when the attacker holds a different weapon of the same
// category. Each table maps those to generic terms. Order matters: longer
// patterns go first so "the longsword" rewrites before "longsword".
var weaponReplacements = map[string][]replacement{
	"sword": rules(
		`\bthe wakizashi\b`, "the blade",
		`\bwakizashi\b`, "blade",
		`\bkissaki\b`, "point",
		`\bZwerchhau\b`, "diagonal strike",
		`\bOberhau\b`, "overhead strike",
		`\bUnterhau\b`, "rising cut",
		`\bLiechtenauer\b`, "a master",
		`\bthe longsword\b`, "the sword",
		`\blongsword\b`, "sword",
		`\bthe rapier\b`, "the blade",
		`\brapier\b`, "blade",
		`\bthe katana\b`, "the blade",
		`\bkatana\b`, "blade",
		`\bthe scimitar\b`, "the curved blade",
		`\bscimitar\b`, "curved blade",
		`\bthe greatsword\b`, "the great sword",
		`\bgreatsword\b`, "great sword",
		`\bthe claymore\b`, "the great sword",
		`\bclaymore\b`, "great sword",
		`\bthe falchion\b`, "the heavy blade",
		`\bfalchion\b`, "heavy blade",
		`\bthe zweihander\b`, "the great sword",
		`\bzweihander\b`, "great sword",
	),
	"hammer": rules(
		`\bthe warhammer\b`, "the hammer",
		`\bwarhammer\b`, "hammer",
		`\bthe maul\b`, "the heavy weapon",
		`\bmaul\b`, "heavy weapon",
		`\bthe mace\b`, "the weapon",
		`\bmace\b`, "weapon",
		`\bthe morningstar\b`, "the spiked weapon",
		`\bmorningstar\b`, "spiked weapon",
		`\bthe flail\b`, "the chained weapon",
		`\bflail\b`, "chained weapon",
		`\bthe quarterstaff\b`, "the staff",
		`\bquarterstaff\b`, "staff",
	),
	"spear": rules(
		`\bthe halberd\b`, "the polearm",
		`\bhalberd\b`, "polearm",
		`\bthe glaive\b`, "the polearm",
		`\bglaive\b`, "polearm",
		`\bthe pike\b`, "the polearm",
		`\bpike\b`, "polearm",
		`\bthe lance\b`, "the spear",
		`\blance\b`, "spear",
		`\bthe javelin\b`, "the spear",
		`\bjavelin\b`, "spear",
		`\bthe trident\b`, "the multi-pronged spear",
		`\btrident\b`, "multi-pronged spear",
		`\bthe naginata\b`, "the polearm",
		`\bnaginata\b`, "polearm",
	),
	"dagger": rules(
		`\bthe stiletto\b`, "the dagger",
		`\bstiletto\b`, "dagger",
		`\bthe kukri\b`, "the curved blade",
		`\bkukri\b`, "curved blade",
		`\bthe dirk\b`, "the dagger",
		`\bdirk\b`, "dagger",
		`\bthe tanto\b`, "the blade",
		`\btanto\b`, "blade",
		`\bthe main gauche\b`, "the parrying dagger",
		`\bmain gauche\b`, "parrying dagger",
		`\bthe throwing knife\b`, "the thrown blade",
		`\bthrowing knife\b`, "thrown blade",
	),
	"axe": rules(
		`\bthe bardiche blade\b`, "the axe blade",
		`\bbardiche blade\b`, "axe blade",
		`\bthe bardiche\b`, "the axe",
		`\bbardiche\b`, "axe",
		`\bthe tomahawk\b`, "the thrown weapon",
		`\btomahawk\b`, "thrown weapon",
		`\bthe battleaxe\b`, "the axe",
		`\bbattleaxe\b`, "axe",
		`\bthe greataxe\b`, "the great axe",
		`\bgreataxe\b`, "great axe",
	),
}

// WeaponTransform returns the sanitization transform for a weapon category
// (the file stem, e.g. "sword"). The second return is false for files with
// no table.
func WeaponTransform(category string) (Transform, bool) {
	table, ok := weaponReplacements[category]
	if !ok {
		return nil, false
	}
	return func(s string) string {
		for _, r := range table {
			s = r.pattern.ReplaceAllString(s, r.repl)
		}
		return s
	}, true
}
