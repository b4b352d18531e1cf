package ingest

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/wordgym/internal/entity"
)

var posAliases = func() map[string]entity.PartOfSpeech {
	table := map[entity.PartOfSpeech][]string{
		entity.PosNoun:        {"n", "noun", "名", "名詞"},
		entity.PosVerb:        {"v", "vt", "vi", "aux", "verb", "動", "動詞"},
		entity.PosAdjective:   {"a", "adj", "adjective", "形", "形容詞"},
		entity.PosAdverb:      {"ad", "adv", "adverb", "副", "副詞"},
		entity.PosPreposition: {"prep", "preposition", "介", "介詞", "介系詞"},
		entity.PosConjunction: {"conj", "conjunction", "連", "連接詞"},
		entity.PosPronoun:     {"pron", "pronoun", "代", "代詞", "代名詞"},
		entity.PosOther:       {"other"},
	}
	out := make(map[string]entity.PartOfSpeech)
	for pos, aliases := range table {
		for _, alias := range aliases {
			out[alias] = pos
		}
	}
	return out
}()

// posParen matches (adj.), （n./v.） and similar annotations.
var posParen = regexp.MustCompile(`[(（]\s*([^()（）]{1,24}?)\s*[)）]`)

// NormalizePOS maps a free-form tag to its canonical form. Unknown tags become other.
func NormalizePOS(raw string) entity.PartOfSpeech {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "(（")
	s = strings.TrimRight(s, ")）")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".．")
	s = strings.ToLower(strings.TrimSpace(s))
	if pos, ok := posAliases[s]; ok {
		return pos
	}
	return entity.PosOther
}

// finalizePOS canonicalizes every source token, drops other when a real tag exists and falls
// back to exactly [other].
func finalizePOS(sources []string) []entity.PartOfSpeech {
	tags := lo.Uniq(lo.Map(sources, func(s string, _ int) entity.PartOfSpeech {
		return NormalizePOS(s)
	}))
	known := lo.Filter(tags, func(p entity.PartOfSpeech, _ int) bool { return p.IsReal() })
	if len(known) == 0 {
		return []entity.PartOfSpeech{entity.PosOther}
	}
	return known
}

// extractPOSAnnotations returns the POS tokens found in parenthetical annotations. Parentheses
// whose contents are not all recognizable tags are ignored.
func extractPOSAnnotations(s string) []string {
	var out []string
	for _, m := range posParen.FindAllStringSubmatch(s, -1) {
		if tokens, ok := posAnnotationTokens(m[1]); ok {
			out = append(out, tokens...)
		}
	}
	return out
}

// stripPOSAnnotations removes parenthetical POS annotations and collapses whitespace.
func stripPOSAnnotations(s string) string {
	cleaned := posParen.ReplaceAllStringFunc(s, func(m string) string {
		sub := posParen.FindStringSubmatch(m)
		if _, ok := posAnnotationTokens(sub[1]); ok {
			return " "
		}
		return m
	})
	return strings.Join(strings.Fields(cleaned), " ")
}

func posAnnotationTokens(inner string) ([]string, bool) {
	tokens := splitOn(inner, '/', ',', '&', '，', '、', ' ')
	if len(tokens) == 0 {
		return nil, false
	}
	for _, tok := range tokens {
		if !NormalizePOS(tok).IsReal() {
			return nil, false
		}
	}
	return tokens, true
}
