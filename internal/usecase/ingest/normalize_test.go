package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordgym/internal/entity"
)

func TestMultiSplit(t *testing.T) {
	got := MultiSplit("a, b;c，d、e/f\ng\r\nh ,, ")
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, got)
	assert.Empty(t, MultiSplit(" ,;/ "))
}

func TestNormalizePOS(t *testing.T) {
	cases := []struct {
		in   string
		want entity.PartOfSpeech
	}{
		{"Adj.", entity.PosAdjective},
		{"(n.)", entity.PosNoun},
		{"（adv.）", entity.PosAdverb},
		{"動詞", entity.PosVerb},
		{"prep", entity.PosPreposition},
		{"CONJ.", entity.PosConjunction},
		{"代名詞", entity.PosPronoun},
		{"vt.", entity.PosVerb},
		{" noun . ", entity.PosNoun},
		{"xyz", entity.PosOther},
		{"", entity.PosOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePOS(tc.in), "input %q", tc.in)
	}
}

func TestNormalize_ChineseAliasesAndAnnotations(t *testing.T) {
	row := RawRow{}
	row["英文單字"] = "Happy (adj.)"
	row["中文"] = "快樂的"
	row["學制"] = "國中"
	row["主題"] = "情緒、感受"

	w, ok := Normalize(row, NormalizeOptions{})
	require.True(t, ok)
	assert.Equal(t, "happy", w.Headword)
	assert.Equal(t, "Happy", w.DisplayForm)
	assert.Equal(t, "快樂的", w.Definition)
	assert.Equal(t, entity.StageJunior, w.Stage)
	assert.Equal(t, []entity.PartOfSpeech{entity.PosAdjective}, w.POSTags)
	assert.Equal(t, []string{"情緒", "感受"}, w.Themes)
	assert.Equal(t, "情緒", w.Theme)
	assert.Zero(t, w.ID)
}

func TestNormalize_DefinitionAnnotationAddsPOS(t *testing.T) {
	w, ok := Normalize(RawRow{"word": "light", "pos": "n.", "definition": "光；(adj.) 輕的"}, NormalizeOptions{})
	require.True(t, ok)
	assert.Equal(t, []entity.PartOfSpeech{entity.PosNoun, entity.PosAdjective}, w.POSTags)
}

func TestNormalize_POSFallbackAndDropsOther(t *testing.T) {
	w, _ := Normalize(RawRow{"word": "zzz"}, NormalizeOptions{})
	assert.Equal(t, []entity.PartOfSpeech{entity.PosOther}, w.POSTags)
	assert.Equal(t, []string{FallbackTheme}, w.Themes)

	w, _ = Normalize(RawRow{"word": "quickly", "part_of_speech": "xyz/adv."}, NormalizeOptions{})
	assert.Equal(t, []entity.PartOfSpeech{entity.PosAdverb}, w.POSTags)
	assert.Equal(t, []string{"adverb"}, w.Themes)

	w, _ = Normalize(RawRow{"word": "core"}, NormalizeOptions{DefaultThemes: []string{"basics"}})
	assert.Equal(t, []string{"basics"}, w.Themes)
}

func TestNormalize_StructuredFields(t *testing.T) {
	row := RawRow{
		"english_word":   "apple",
		"stage":          "junior",
		"textbook_index": "康軒-B1-L2; 翰林-B3-L5-extra;bad-entry;康軒-B1-L2",
		"exam_tags":      "106學測;107指考;106學測",
		"theme_index":    "12-food-drink|x-bad|3-animals",
	}
	w, ok := Normalize(row, NormalizeOptions{})
	require.True(t, ok)
	assert.Equal(t, []entity.TextbookRef{
		{Version: "康軒", Volume: "B1", Lesson: "L2"},
		{Version: "翰林", Volume: "B3", Lesson: "L5"},
	}, w.TextbookIndex)
	assert.Equal(t, []string{"106學測", "107指考"}, w.ExamTags)
	assert.Equal(t, []entity.ThemeIndexEntry{
		{Range: "12", Theme: "food-drink"},
		{Range: "3", Theme: "animals"},
	}, w.ThemeIndex)

	row["stage"] = "高中"
	w, _ = Normalize(row, NormalizeOptions{})
	assert.Equal(t, entity.StageSenior, w.Stage)
	assert.Empty(t, w.ThemeIndex)
}

func TestNormalize_JSONValues(t *testing.T) {
	row := RawRow{
		"word":     "cat",
		"pos_tags": []any{"noun"},
		"synonyms": []any{"kitty", "Kitty", "puss"},
		"level":    float64(2),
		"textbook_index": []any{
			map[string]any{"version": "南一", "volume": "1", "lesson": "3"},
			"康軒-2-4",
		},
		"affix_info": map[string]any{"root": "cat"},
		"prefix":     "",
	}
	w, ok := Normalize(row, NormalizeOptions{})
	require.True(t, ok)
	assert.Equal(t, []entity.PartOfSpeech{entity.PosNoun}, w.POSTags)
	assert.Equal(t, []string{"kitty", "puss"}, w.Synonyms)
	assert.Equal(t, "2", w.Level)
	assert.Len(t, w.TextbookIndex, 2)
	require.NotNil(t, w.Affix)
	assert.Equal(t, "cat", w.Affix.Root)
	assert.Equal(t, entity.StageUnknown, w.Stage)
}

func TestNormalize_Examples(t *testing.T) {
	row := RawRow{
		"word":               "run",
		"pos":                "v.",
		"example_sentence_2": "They run home.",
		"example_sentence5":  "Run!",
	}
	row["例句翻譯2"] = "他們跑回家。"
	w, _ := Normalize(row, NormalizeOptions{AutoExamples: true})
	assert.Equal(t, PlaceholderExample("run", entity.PosVerb), w.Examples[0])
	assert.Equal(t, "They run home.", w.Examples[1].Sentence)
	assert.Equal(t, "他們跑回家。", w.Examples[1].Translation)
	assert.Equal(t, "Run!", w.Examples[4].Sentence)

	w, _ = Normalize(row, NormalizeOptions{})
	assert.True(t, w.Examples[0].IsEmpty())
}

func TestNormalize_ExamplesArray(t *testing.T) {
	row := RawRow{
		"headword": "apple",
		"pos_tags": []any{"noun"},
		"examples": []any{
			map[string]any{"sentence": "I ate an apple.", "translation": "我吃了蘋果。"},
			map[string]any{},
			map[string]any{"sentence": "Apples are red."},
		},
		"example_sentence_3": "An apple a day.",
	}
	w, ok := Normalize(row, NormalizeOptions{AutoExamples: true})
	require.True(t, ok)
	assert.Equal(t, entity.ExampleSentence{Sentence: "I ate an apple.", Translation: "我吃了蘋果。"}, w.Examples[0])
	assert.True(t, w.Examples[1].IsEmpty())
	assert.Equal(t, "An apple a day.", w.Examples[2].Sentence)
}

func TestNormalize_CaseVariantColumnsAreDeterministic(t *testing.T) {
	row := RawRow{"Word": "Pear", "word": "apple", "WORD": "plum", "Stage": "senior", "STAGE": "junior"}
	for range 50 {
		w, ok := Normalize(row, NormalizeOptions{})
		require.True(t, ok)
		assert.Equal(t, "apple", w.Headword)
		assert.Equal(t, entity.StageSenior, w.Stage)
	}

	w, _ := Normalize(RawRow{"Word": "pear", "word": "  "}, NormalizeOptions{})
	assert.Equal(t, "pear", w.Headword)
}

func TestNormalize_NoHeadword(t *testing.T) {
	_, ok := Normalize(RawRow{"chinese_definition": "無"}, NormalizeOptions{})
	assert.False(t, ok)

	_, ok = Normalize(RawRow{"english_word": "(adj.)"}, NormalizeOptions{})
	assert.False(t, ok)
}

func TestNormalize_KeepsNonPOSParentheses(t *testing.T) {
	w, ok := Normalize(RawRow{"word": "bear (animal) (n.)"}, NormalizeOptions{})
	require.True(t, ok)
	assert.Equal(t, "bear (animal)", w.DisplayForm)
	assert.Equal(t, []entity.PartOfSpeech{entity.PosNoun}, w.POSTags)
}

func TestCategorizeWordForms(t *testing.T) {
	got := CategorizeWordForms("run", []string{"runs", "running", "run out", "run-down", "rerun", "ran", "Runs", ""})
	assert.Equal(t, []string{"runs", "running"}, got.Base)
	assert.Equal(t, []string{"run out"}, got.Idiom)
	assert.Equal(t, []string{"run-down", "rerun"}, got.Compound)
	assert.Equal(t, []string{"ran"}, got.Derivation)
	assert.Equal(t, 6, got.Len())
}

func TestNormalize_WordFormsDetailEntries(t *testing.T) {
	row := RawRow{
		"word":       "go",
		"word_forms": "goes/went",
		"word_forms_detail": []any{
			map[string]any{"pos": "v", "details": "gone, going"},
			"go ahead",
		},
	}
	w, _ := Normalize(row, NormalizeOptions{})
	assert.Equal(t, "goes/went", w.WordForms)
	assert.Equal(t, []string{"goes", "going"}, w.WordFormsDetail.Base)
	assert.Equal(t, []string{"go ahead"}, w.WordFormsDetail.Idiom)
	assert.Equal(t, []string{"gone"}, w.WordFormsDetail.Compound)
	assert.Equal(t, []string{"went"}, w.WordFormsDetail.Derivation)
}
