package ingest

import (
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/wordgym/internal/entity"
)

// ImportOptions controls one ImportRows call.
type ImportOptions struct {
	// OverrideExamples lets incoming examples replace user-customized ones.
	OverrideExamples bool
	// Replace discards the current dataset before merging.
	Replace bool

	Normalize NormalizeOptions
}

// mergeInto applies incoming onto existing field by field.
func (d *Dataset) mergeInto(existing, incoming *entity.Word, opts ImportOptions, stats *entity.MergeStats) {
	preCount := len(existing.POSTags)
	mergePOS(existing, incoming, stats)

	for _, theme := range incoming.Themes {
		if !lo.Contains(existing.Themes, theme) {
			existing.Themes = append(existing.Themes, theme)
		}
	}
	for theme, v := range incoming.ThemeOrder {
		if _, ok := existing.ThemeOrder[theme]; !ok && lo.Contains(existing.Themes, theme) {
			if existing.ThemeOrder == nil {
				existing.ThemeOrder = make(map[string]int)
			}
			existing.ThemeOrder[theme] = v
		}
	}
	d.order.Stamp(existing, existing.Themes)

	if incoming.Level != "" {
		existing.Level = incoming.Level
	}

	fill(&existing.KKPhonetic, incoming.KKPhonetic)
	fill(&existing.GrammarMainCategory, incoming.GrammarMainCategory)
	fill(&existing.GrammarSubCategory, incoming.GrammarSubCategory)
	fill(&existing.GrammarFunction, incoming.GrammarFunction)
	fill(&existing.ApplicableSentencePattern, incoming.ApplicableSentencePattern)
	fill(&existing.Theme, incoming.Theme)

	if incoming.Definition != "" && (existing.Definition == "" || len(incoming.POSTags) > preCount) {
		existing.Definition = incoming.Definition
	}

	mergeExamples(existing, incoming, opts.OverrideExamples)

	existing.WordFormsDetail = mergeWordForms(existing.WordFormsDetail, incoming.WordFormsDetail)
	fill(&existing.WordForms, incoming.WordForms)

	existing.Derivatives = unionFold(existing.Derivatives, incoming.Derivatives)
	existing.Synonyms = unionFold(existing.Synonyms, incoming.Synonyms)
	existing.Antonyms = unionFold(existing.Antonyms, incoming.Antonyms)
	existing.Confusables = unionFold(existing.Confusables, incoming.Confusables)
	existing.Phrases = unionFold(existing.Phrases, incoming.Phrases)

	existing.Affix = mergeAffix(existing.Affix, incoming.Affix)
	fill(&existing.VideoURL, incoming.VideoURL)
	if !existing.Stage.Known() {
		existing.Stage = incoming.Stage
	}

	existing.TextbookIndex = unionExact(existing.TextbookIndex, incoming.TextbookIndex)
	existing.ExamTags = unionExact(existing.ExamTags, incoming.ExamTags)
	existing.ThemeIndex = unionExact(existing.ThemeIndex, incoming.ThemeIndex)
}

func mergePOS(existing, incoming *entity.Word, stats *entity.MergeStats) {
	incomingReal := lo.Filter(incoming.POSTags, func(p entity.PartOfSpeech, _ int) bool { return p.IsReal() })
	if isFallbackOnly(existing.POSTags) && len(incomingReal) > 0 {
		existing.POSTags = append([]entity.PartOfSpeech(nil), incomingReal...)
		return
	}
	existingHasReal := lo.ContainsBy(existing.POSTags, func(p entity.PartOfSpeech) bool { return p.IsReal() })
	for _, tag := range incoming.POSTags {
		if lo.Contains(existing.POSTags, tag) {
			continue
		}
		// the fallback never joins a set of real tags
		if !tag.IsReal() && existingHasReal {
			continue
		}
		existing.POSTags = append(existing.POSTags, tag)
		stats.TagsAdded[string(tag)]++
	}
}

func isFallbackOnly(tags []entity.PartOfSpeech) bool {
	return len(tags) == 1 && tags[0] == entity.PosOther
}

// mergeExamples applies the slot policies. Slots 1 and 2 may replace an untouched placeholder;
// the remaining slots only fill gaps unless override is set.
func mergeExamples(existing, incoming *entity.Word, override bool) {
	for i := 0; i < entity.MaxExampleSlots; i++ {
		cur, in := &existing.Examples[i], incoming.Examples[i]

		inSentence := strings.TrimSpace(in.Sentence)
		if isPlaceholderSentence(inSentence, incoming.Headword, incoming.POSTags) {
			inSentence = ""
		}
		inTranslation := strings.TrimSpace(in.Translation)
		if isPlaceholderTranslation(inTranslation, incoming.Headword, incoming.POSTags) {
			inTranslation = ""
		}

		replaceable := func(value string, isPlaceholder func(string, string, []entity.PartOfSpeech) bool) bool {
			if override || strings.TrimSpace(value) == "" {
				return true
			}
			return i < 2 && isPlaceholder(value, existing.Headword, existing.POSTags)
		}

		if inSentence != "" && replaceable(cur.Sentence, isPlaceholderSentence) {
			cur.Sentence = inSentence
		}
		if inTranslation != "" && replaceable(cur.Translation, isPlaceholderTranslation) {
			cur.Translation = inTranslation
		}
	}
}

func mergeAffix(existing, incoming *entity.AffixInfo) *entity.AffixInfo {
	if incoming.IsEmpty() {
		return existing
	}
	out := &entity.AffixInfo{}
	if existing != nil {
		*out = *existing
	}
	fill(&out.Prefix, incoming.Prefix)
	fill(&out.Root, incoming.Root)
	fill(&out.Suffix, incoming.Suffix)
	fill(&out.Meaning, incoming.Meaning)
	fill(&out.Example, incoming.Example)
	return out
}
