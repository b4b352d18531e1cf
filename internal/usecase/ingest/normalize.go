package ingest

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/wordgym/internal/entity"
)

// FallbackTheme is used when neither the row nor the primary POS yields a theme.
const FallbackTheme = "general"

var rangePattern = regexp.MustCompile(`^\d+$`)

// NormalizeOptions tunes candidate construction.
type NormalizeOptions struct {
	// AutoExamples fills an empty slot 1 with the deterministic placeholder sentence.
	AutoExamples bool
	// DefaultThemes apply when the row carries no theme of its own.
	DefaultThemes []string
}

// ExtractHeadword returns the display form of the English word with POS annotations removed,
// plus the POS tokens those annotations carried.
func ExtractHeadword(row RawRow) (string, []string) {
	return extractHeadword(indexRow(row))
}

func extractHeadword(idx fieldIndex) (string, []string) {
	raw := idx.firstNonEmpty(colEnglishWord...)
	if raw == "" {
		return "", nil
	}
	return stripPOSAnnotations(raw), extractPOSAnnotations(raw)
}

// Normalize builds an unsaved candidate word from a raw row. It reports false when the row has no
// usable headword.
func Normalize(row RawRow, opts NormalizeOptions) (*entity.Word, bool) {
	idx := indexRow(row)
	display, headwordPOS := extractHeadword(idx)
	if display == "" {
		return nil, false
	}

	w := &entity.Word{
		Headword:    entity.NormalizeWordToken(display),
		DisplayForm: display,
		Definition:  idx.firstNonEmpty(colDefinition...),
		Stage:       entity.ParseStage(idx.firstNonEmpty(colStage...)),
		Level:       idx.firstNonEmpty(colLevel...),

		KKPhonetic:                idx.firstNonEmpty(colKKPhonetic...),
		GrammarMainCategory:       idx.firstNonEmpty(colGrammarMain...),
		GrammarSubCategory:        idx.firstNonEmpty(colGrammarSub...),
		GrammarFunction:           idx.firstNonEmpty(colGrammarFunction...),
		ApplicableSentencePattern: idx.firstNonEmpty(colSentencePattern...),

		Synonyms:    uniqueFold(idx.tokens(colSynonyms...)),
		Antonyms:    uniqueFold(idx.tokens(colAntonyms...)),
		Confusables: uniqueFold(idx.tokens(colConfusables...)),
		Derivatives: uniqueFold(idx.tokens(colDerivatives...)),
		Phrases:     uniqueFold(idx.tokens(colPhrases...)),

		WordForms: idx.firstNonEmpty(colWordForms...),
		VideoURL:  idx.firstNonEmpty(colVideoURL...),
	}

	posSources := append(idx.tokens(colPOS...), headwordPOS...)
	posSources = append(posSources, extractPOSAnnotations(w.Definition)...)
	w.POSTags = finalizePOS(posSources)

	w.Themes, w.Theme = resolveThemes(idx, opts.DefaultThemes, w.PrimaryPOS())
	w.ThemeOrder = parseThemeOrder(idx.firstValue(colThemeOrder...))

	w.TextbookIndex = parseTextbookIndex(idx.firstValue(colTextbookIndex...))
	w.ExamTags = parseExamTags(idx.firstValue(colExamTags...))
	if w.Stage == entity.StageJunior {
		w.ThemeIndex = parseThemeIndex(idx.firstValue(colThemeIndex...))
	}

	var forms []string
	forms = append(forms, MultiSplit(w.WordForms)...)
	forms = append(forms, wordFormTokens(idx.firstValue(colWordFormsDetail...))...)
	w.WordFormsDetail = CategorizeWordForms(w.Headword, forms)

	w.Affix = parseAffix(idx)

	exported := parseExamples(idx.firstValue(colExamples...))
	for slot := 1; slot <= entity.MaxExampleSlots; slot++ {
		w.Examples[slot-1] = entity.ExampleSentence{
			Sentence:    idx.firstNonEmpty(colExampleSentence(slot)...),
			Translation: idx.firstNonEmpty(colExampleTranslation(slot)...),
		}
		if w.Examples[slot-1].IsEmpty() {
			w.Examples[slot-1] = exported[slot-1]
		}
	}
	if opts.AutoExamples && w.Examples[0].IsEmpty() {
		w.Examples[0] = PlaceholderExample(w.Headword, w.PrimaryPOS())
	}
	return w, true
}

func resolveThemes(idx fieldIndex, defaults []string, primary entity.PartOfSpeech) ([]string, string) {
	var themes []string
	for _, cols := range [][]string{colThemes, colTheme, colCategory} {
		themes = append(themes, idx.tokens(cols...)...)
	}
	themes = lo.Uniq(themes)
	if len(themes) == 0 {
		themes = lo.Uniq(trimAll(defaults))
	}
	if len(themes) == 0 {
		if primary.IsReal() {
			themes = []string{string(primary)}
		} else {
			themes = []string{FallbackTheme}
		}
	}
	label := idx.firstNonEmpty(colTheme...)
	if label == "" || strings.ContainsAny(label, ",;，、/\n\r") {
		label = themes[0]
	}
	return themes, label
}

func parseThemeOrder(v any) map[string]int {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]int, len(m))
	for theme, raw := range m {
		switch n := raw.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				out[theme] = int(i)
			} else if f, err := n.Float64(); err == nil {
				out[theme] = int(f)
			}
		case float64:
			out[theme] = int(n)
		case int:
			out[theme] = n
		case int64:
			out[theme] = int(n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseTextbookIndex(v any) []entity.TextbookRef {
	var out []entity.TextbookRef
	add := func(ref entity.TextbookRef) {
		if ref == (entity.TextbookRef{}) {
			return
		}
		out = unionExact(out, []entity.TextbookRef{ref})
	}
	switch t := v.(type) {
	case string:
		for _, item := range splitOn(t, ';', '；') {
			if ref, ok := parseTextbookRef(item); ok {
				add(ref)
			}
		}
	case []any:
		for _, item := range t {
			switch e := item.(type) {
			case string:
				if ref, ok := parseTextbookRef(e); ok {
					add(ref)
				}
			case map[string]any:
				add(entity.TextbookRef{
					Version: stringOf(e["version"]),
					Volume:  stringOf(e["volume"]),
					Lesson:  stringOf(e["lesson"]),
				})
			}
		}
	}
	return out
}

func parseTextbookRef(item string) (entity.TextbookRef, bool) {
	parts := strings.Split(strings.TrimSpace(item), "-")
	if len(parts) < 3 {
		return entity.TextbookRef{}, false
	}
	return entity.TextbookRef{
		Version: strings.TrimSpace(parts[0]),
		Volume:  strings.TrimSpace(parts[1]),
		Lesson:  strings.TrimSpace(parts[2]),
	}, true
}

func parseExamTags(v any) []string {
	var tags []string
	switch t := v.(type) {
	case string:
		tags = splitOn(t, ';', '；')
	case []any:
		for _, item := range t {
			if s := stringOf(item); s != "" {
				tags = append(tags, s)
			}
		}
	case []string:
		tags = trimAll(t)
	}
	if len(tags) == 0 {
		return nil
	}
	return lo.Uniq(tags)
}

func parseThemeIndex(v any) []entity.ThemeIndexEntry {
	var out []entity.ThemeIndexEntry
	add := func(e entity.ThemeIndexEntry, ok bool) {
		if ok {
			out = unionExact(out, []entity.ThemeIndexEntry{e})
		}
	}
	switch t := v.(type) {
	case string:
		for _, item := range splitOn(t, ';', '|') {
			add(parseThemeIndexEntry(item))
		}
	case []any:
		for _, item := range t {
			switch e := item.(type) {
			case string:
				add(parseThemeIndexEntry(e))
			case map[string]any:
				r, theme := stringOf(e["range"]), stringOf(e["theme"])
				add(entity.ThemeIndexEntry{Range: r, Theme: theme}, rangePattern.MatchString(r) && theme != "")
			}
		}
	}
	return out
}

func parseThemeIndexEntry(item string) (entity.ThemeIndexEntry, bool) {
	parts := strings.Split(strings.TrimSpace(item), "-")
	if len(parts) < 2 {
		return entity.ThemeIndexEntry{}, false
	}
	r := strings.TrimSpace(parts[0])
	theme := strings.TrimSpace(strings.Join(parts[1:], "-"))
	if !rangePattern.MatchString(r) || theme == "" {
		return entity.ThemeIndexEntry{}, false
	}
	return entity.ThemeIndexEntry{Range: r, Theme: theme}, true
}

func parseAffix(idx fieldIndex) *entity.AffixInfo {
	affix := &entity.AffixInfo{}
	if nested, ok := idx.firstValue(colAffixInfo...).(map[string]any); ok {
		affix.Prefix = stringOf(nested["prefix"])
		affix.Root = stringOf(nested["root"])
		affix.Suffix = stringOf(nested["suffix"])
		affix.Meaning = stringOf(nested["meaning"])
		affix.Example = stringOf(nested["example"])
	}
	fill(&affix.Prefix, idx.firstNonEmpty(colPrefix...))
	fill(&affix.Root, idx.firstNonEmpty(colRoot...))
	fill(&affix.Suffix, idx.firstNonEmpty(colSuffix...))
	fill(&affix.Meaning, idx.firstNonEmpty(colAffixMeaning...))
	fill(&affix.Example, idx.firstNonEmpty(colAffixExample...))
	if affix.IsEmpty() {
		return nil
	}
	return affix
}

// fill sets dst to v only when dst is empty.
func fill(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" && v != "" {
		*dst = v
	}
}

// parseExamples reads the slot array of an exported word. Slots past the last one are dropped.
func parseExamples(v any) [entity.MaxExampleSlots]entity.ExampleSentence {
	var out [entity.MaxExampleSlots]entity.ExampleSentence
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for i, item := range items {
		if i >= len(out) {
			break
		}
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		slot := indexRow(m)
		out[i] = entity.ExampleSentence{
			Sentence:    slot.firstNonEmpty("sentence"),
			Translation: slot.firstNonEmpty("translation"),
		}
	}
	return out
}
