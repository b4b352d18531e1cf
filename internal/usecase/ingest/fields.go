// Package ingest turns loosely-typed spreadsheet rows into normalized words and merges them into an
// in-memory dataset keyed by (headword, stage).
package ingest

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// RawRow is one incoming row as decoded from JSON or a parsed sheet.
type RawRow map[string]any

// Candidate column names per semantic field, in priority order. Lookup is case-insensitive.
var (
	colEnglishWord = []string{"english_word", "word", "english", "英文", "英文單字", "單字", "display_form", "headword"}
	colDefinition  = []string{"chinese_definition", "definition", "translation", "中文", "中文解釋", "中文意思", "中文翻譯"}
	colPOS         = []string{"part_of_speech", "pos", "pos_tags", "posTags", "詞性"}
	colStage       = []string{"stage", "學制", "階段"}
	colLevel       = []string{"level", "等級", "級數", "難度"}
	colThemes      = []string{"themes"}
	colTheme       = []string{"theme", "主題"}
	colCategory    = []string{"category", "分類"}
	colThemeOrder  = []string{"theme_order"}

	colKKPhonetic      = []string{"kk_phonetic", "kk", "音標", "kk音標"}
	colGrammarMain     = []string{"grammar_main_category", "文法大類"}
	colGrammarSub      = []string{"grammar_sub_category", "文法細類", "文法小類"}
	colGrammarFunction = []string{"grammar_function", "文法功能"}
	colSentencePattern = []string{"applicable_sentence_pattern", "適用句型"}

	colTextbookIndex = []string{"textbook_index", "課本索引", "課本出處"}
	colExamTags      = []string{"exam_tags", "考試標籤", "大考出處"}
	colThemeIndex    = []string{"theme_index", "主題索引"}

	colSynonyms    = []string{"synonyms", "同義字", "同義詞"}
	colAntonyms    = []string{"antonyms", "反義字", "反義詞"}
	colConfusables = []string{"confusables", "易混淆字", "易混淆"}
	colDerivatives = []string{"derivatives", "衍生字", "衍生詞"}
	colPhrases     = []string{"phrases", "片語"}

	colWordForms       = []string{"word_forms", "詞形變化", "字形變化"}
	colWordFormsDetail = []string{"word_forms_detail"}

	colAffixInfo    = []string{"affix_info", "affix"}
	colPrefix       = []string{"prefix", "字首"}
	colRoot         = []string{"root", "字根"}
	colSuffix       = []string{"suffix", "字尾"}
	colAffixMeaning = []string{"affix_meaning", "字根意思", "字根意義"}
	colAffixExample = []string{"affix_example", "字根例字"}

	colVideoURL = []string{"video_url", "video", "影片", "影片連結"}
	colExamples = []string{"examples"}
)

func colExampleSentence(slot int) []string {
	if slot == 1 {
		return []string{"example_sentence", "example_sentence_1", "example_sentence1", "例句", "例句1"}
	}
	return []string{
		fmt.Sprintf("example_sentence_%d", slot),
		fmt.Sprintf("example_sentence%d", slot),
		fmt.Sprintf("例句%d", slot),
	}
}

func colExampleTranslation(slot int) []string {
	if slot == 1 {
		return []string{"example_translation", "example_translation_1", "example_translation1", "例句翻譯", "例句翻譯1", "例句中譯"}
	}
	return []string{
		fmt.Sprintf("example_translation_%d", slot),
		fmt.Sprintf("example_translation%d", slot),
		fmt.Sprintf("例句翻譯%d", slot),
	}
}

// fieldIndex is a row keyed by folded column name.
type fieldIndex map[string]any

// indexRow folds column names. When several columns fold to the same name, the first non-empty
// one wins, taking already-folded names first and then names in descending byte order, so "word"
// beats "Word" beats "WORD".
func indexRow(row RawRow) fieldIndex {
	keys := lo.Keys(row)
	slices.SortFunc(keys, func(a, b string) int {
		if af, bf := a == foldKey(a), b == foldKey(b); af != bf {
			if af {
				return -1
			}
			return 1
		}
		return strings.Compare(b, a)
	})
	idx := make(fieldIndex, len(row))
	for _, k := range keys {
		key := foldKey(k)
		if key == "" {
			continue
		}
		if existing, ok := idx[key]; ok && !isEmptyValue(existing) {
			continue
		}
		idx[key] = row[k]
	}
	return idx
}

func foldKey(k string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(k, "\ufeff")))
}

// firstNonEmpty returns the first candidate column holding a non-empty scalar.
func (f fieldIndex) firstNonEmpty(candidates ...string) string {
	for _, name := range candidates {
		if s := stringOf(f[foldKey(name)]); s != "" {
			return s
		}
	}
	return ""
}

// firstValue returns the first candidate column holding any non-empty value.
func (f fieldIndex) firstValue(candidates ...string) any {
	for _, name := range candidates {
		if v, ok := f[foldKey(name)]; ok && !isEmptyValue(v) {
			return v
		}
	}
	return nil
}

// tokens gathers multi-valued tokens from every candidate column in order.
func (f fieldIndex) tokens(candidates ...string) []string {
	var out []string
	for _, name := range candidates {
		out = append(out, tokensOf(f[foldKey(name)])...)
	}
	return out
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []string:
		return strings.Join(trimAll(t), ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringOf(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func tokensOf(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return MultiSplit(t)
	case []string:
		var out []string
		for _, item := range t {
			out = append(out, MultiSplit(item)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, tokensOf(item)...)
		}
		return out
	case map[string]any:
		return nil
	default:
		if s := stringOf(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		for _, item := range t {
			if !isEmptyValue(item) {
				return false
			}
		}
		return true
	case []string:
		for _, item := range t {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	case map[string]any:
		for _, item := range t {
			if !isEmptyValue(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isEmptyRow(row RawRow) bool {
	if len(row) == 0 {
		return true
	}
	for _, v := range row {
		if !isEmptyValue(v) {
			return false
		}
	}
	return true
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
