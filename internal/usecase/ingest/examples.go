package ingest

import (
	"fmt"
	"strings"

	"github.com/eslsoft/wordgym/internal/entity"
)

type exampleTemplate struct {
	sentence    string
	translation string
}

var placeholderTemplates = map[entity.PartOfSpeech]exampleTemplate{
	entity.PosNoun:        {"I can see the %s.", "我看得到這個 %s。"},
	entity.PosVerb:        {"We %s every day.", "我們每天都 %s。"},
	entity.PosAdjective:   {"It looks very %s.", "它看起來很 %s。"},
	entity.PosAdverb:      {"She does it %s.", "她 %s 地做這件事。"},
	entity.PosPreposition: {"Put it %s the box.", "把它放在盒子 %s。"},
	entity.PosConjunction: {"I stayed home %s it rained.", "我待在家 %s 下雨了。"},
	entity.PosPronoun:     {"Who is %s?", "%s 是誰？"},
	entity.PosOther:       {"Let's learn the word \"%s\".", "我們來學「%s」這個字。"},
}

// PlaceholderExample is the deterministic auto-generated slot 1 example for a headword.
func PlaceholderExample(headword string, pos entity.PartOfSpeech) entity.ExampleSentence {
	tmpl, ok := placeholderTemplates[pos]
	if !ok {
		tmpl = placeholderTemplates[entity.PosOther]
	}
	word := strings.TrimSpace(headword)
	return entity.ExampleSentence{
		Sentence:    fmt.Sprintf(tmpl.sentence, word),
		Translation: fmt.Sprintf(tmpl.translation, word),
	}
}

// isPlaceholderSentence reports whether s is the auto sentence for headword under any of tags.
func isPlaceholderSentence(s, headword string, tags []entity.PartOfSpeech) bool {
	return matchesPlaceholder(s, headword, tags, func(e entity.ExampleSentence) string { return e.Sentence })
}

func isPlaceholderTranslation(s, headword string, tags []entity.PartOfSpeech) bool {
	return matchesPlaceholder(s, headword, tags, func(e entity.ExampleSentence) string { return e.Translation })
}

func matchesPlaceholder(s, headword string, tags []entity.PartOfSpeech, pick func(entity.ExampleSentence) string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	candidates := append([]entity.PartOfSpeech{entity.PosOther}, tags...)
	for _, pos := range candidates {
		if pick(PlaceholderExample(headword, pos)) == s {
			return true
		}
	}
	return false
}
