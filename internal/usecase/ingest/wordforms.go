package ingest

import (
	"strings"

	"github.com/eslsoft/wordgym/internal/entity"
)

var inflectionSuffixes = []string{"s", "es", "ed", "ing"}

// CategorizeWordForms buckets each form relative to headword. Every non-empty token lands in
// exactly one bucket; duplicates are dropped case-insensitively.
func CategorizeWordForms(headword string, forms []string) entity.WordForms {
	var out entity.WordForms
	base := strings.ToLower(strings.TrimSpace(headword))
	seen := make(map[string]struct{})
	for _, form := range forms {
		form = strings.TrimSpace(form)
		lf := strings.ToLower(form)
		if lf == "" {
			continue
		}
		if _, ok := seen[lf]; ok {
			continue
		}
		seen[lf] = struct{}{}

		switch {
		case isInflection(base, lf):
			out.Base = append(out.Base, form)
		case strings.Contains(lf, " "):
			out.Idiom = append(out.Idiom, form)
		case strings.Contains(lf, "-") || (base != "" && strings.Contains(lf, base)):
			out.Compound = append(out.Compound, form)
		default:
			out.Derivation = append(out.Derivation, form)
		}
	}
	return out
}

func isInflection(base, form string) bool {
	if base == "" {
		return false
	}
	if form == base {
		return true
	}
	for _, suffix := range inflectionSuffixes {
		if form == base+suffix {
			return true
		}
	}
	return false
}

// mergeWordForms unions each bucket independently.
func mergeWordForms(dst, src entity.WordForms) entity.WordForms {
	return entity.WordForms{
		Base:       unionFold(dst.Base, src.Base),
		Idiom:      unionFold(dst.Idiom, src.Idiom),
		Compound:   unionFold(dst.Compound, src.Compound),
		Derivation: unionFold(dst.Derivation, src.Derivation),
	}
}

// wordFormTokens flattens word_forms_detail entries, which are either plain strings or
// {pos, details} objects.
func wordFormTokens(v any) []string {
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, wordFormTokens(item)...)
		}
		return out
	case map[string]any:
		if details, ok := t["details"]; ok {
			return tokensOf(details)
		}
		// already bucketed, e.g. an exported record
		var out []string
		for _, bucket := range []string{"base", "idiom", "compound", "derivation"} {
			out = append(out, tokensOf(t[bucket])...)
		}
		return out
	default:
		return tokensOf(v)
	}
}
