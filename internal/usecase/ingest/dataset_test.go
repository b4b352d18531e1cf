package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordgym/internal/entity"
)

func TestImportRows_ApplesAndBooks(t *testing.T) {
	d := NewDataset()
	stats := d.ImportRows([]RawRow{
		{"english_word": "apple", "chinese_definition": "蘋果", "stage": "junior"},
		{"english_word": "book", "chinese_definition": "書", "stage": "senior"},
	}, ImportOptions{})

	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, 0, stats.Merged)
	assert.Equal(t, 0, stats.TotalBefore)
	assert.Equal(t, 2, stats.TotalAfter)

	all := d.All()
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, "apple", all[0].Headword)
	assert.Equal(t, "蘋果", all[0].Definition)
	assert.Equal(t, entity.StageJunior, all[0].Stage)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, "book", all[1].Headword)
	assert.Equal(t, "書", all[1].Definition)
	assert.Equal(t, entity.StageSenior, all[1].Stage)
}

func TestImportRows_CompositeKeyIsolation(t *testing.T) {
	d := NewDataset()
	d.ImportRows([]RawRow{{"english_word": "hello", "chinese_definition": "你好", "stage": "junior", "synonyms": "hi"}}, ImportOptions{})

	stats := d.ImportRows([]RawRow{
		{"english_word": "hello", "chinese_definition": "哈囉", "stage": "junior", "synonyms": []any{"hi", "hey"}},
	}, ImportOptions{})
	assert.Equal(t, 1, stats.Merged)
	assert.Equal(t, 0, stats.Added)

	junior, ok := d.Lookup("hello", entity.StageJunior)
	require.True(t, ok)
	assert.Equal(t, []string{"hi", "hey"}, junior.Synonyms)

	stats = d.ImportRows([]RawRow{
		{"english_word": "Hello", "chinese_definition": "哈囉", "stage": "senior", "synonyms": []any{"hi", "hey"}},
	}, ImportOptions{})
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 0, stats.Merged)

	senior, ok := d.Lookup("hello", entity.StageSenior)
	require.True(t, ok)
	assert.NotEqual(t, junior.ID, senior.ID)
	assert.Equal(t, 2, d.Len())
}

func TestImportRows_UnknownStageIsOwnPartition(t *testing.T) {
	d := NewDataset()
	d.ImportRows([]RawRow{
		{"english_word": "tree", "stage": "小學"},
		{"english_word": "tree", "stage": "junior"},
		{"english_word": "tree"},
	}, ImportOptions{})
	assert.Equal(t, 2, d.Len())

	w, ok := d.Lookup("TREE", entity.StageUnknown)
	require.True(t, ok)
	assert.Equal(t, entity.StageUnknown, w.Stage)
}

func TestImportRows_Idempotent(t *testing.T) {
	rows := []RawRow{
		{
			"english_word":   "light",
			"pos":            "n./adj.",
			"definition":     "光；輕的",
			"themes":         "nature, physics",
			"synonyms":       "lamp;Lamp",
			"textbook_index": "康軒-1-2",
			"exam_tags":      "108學測",
			"word_forms":     "lights, lighter, light up",
			"prefix":         "",
			"stage":          "junior",
			"theme_index":    "4-nature",
		},
		{"english_word": "run", "stage": "junior", "example_sentence": "I run."},
	}
	d := NewDataset()
	d.ImportRows(rows, ImportOptions{Normalize: NormalizeOptions{AutoExamples: true}})
	before := d.All()

	stats := d.ImportRows(rows, ImportOptions{Normalize: NormalizeOptions{AutoExamples: true}})
	assert.Equal(t, 2, stats.Merged)
	assert.Equal(t, 0, stats.Added)
	assert.Equal(t, stats.TotalBefore, stats.TotalAfter)
	assert.Empty(t, stats.TagsAdded)
	assert.Equal(t, before, d.All())
}

func TestImportRows_IDsAreMonotonic(t *testing.T) {
	d := NewDataset()
	d.ImportRows([]RawRow{{"word": "a1"}, {"word": "b1"}, {"word": "c1"}}, ImportOptions{})
	assert.Equal(t, []int64{1, 2, 3}, ids(d.All()))

	stats := d.ImportRows([]RawRow{{"word": "d1"}}, ImportOptions{Replace: true})
	assert.Equal(t, 3, stats.Replaced)
	assert.Equal(t, 1, stats.TotalAfter)
	assert.Equal(t, []int64{4}, ids(d.All()))

	d.ImportRows([]RawRow{{"word": "e1"}, {"word": "d1"}}, ImportOptions{})
	assert.Equal(t, []int64{4, 5}, ids(d.All()))

	d.Reset()
	assert.Equal(t, 0, d.Len())
	d.ImportRows([]RawRow{{"word": "f1"}}, ImportOptions{})
	assert.Equal(t, []int64{1}, ids(d.All()))
}

func TestImportRows_POSFallbackReplacement(t *testing.T) {
	d := NewDataset()
	d.ImportRows([]RawRow{{"word": "run", "definition": "跑"}}, ImportOptions{})
	w, _ := d.Lookup("run", entity.StageUnknown)
	require.Equal(t, []entity.PartOfSpeech{entity.PosOther}, w.POSTags)

	stats := d.ImportRows([]RawRow{{"word": "run", "pos": "verb", "definition": "跑步"}}, ImportOptions{})
	w, _ = d.Lookup("run", entity.StageUnknown)
	assert.Equal(t, []entity.PartOfSpeech{entity.PosVerb}, w.POSTags)
	assert.Empty(t, stats.TagsAdded)
	assert.Equal(t, "跑", w.Definition)

	stats = d.ImportRows([]RawRow{{"word": "run", "pos": "n./v.", "definition": "跑；賽跑"}}, ImportOptions{})
	w, _ = d.Lookup("run", entity.StageUnknown)
	assert.Equal(t, []entity.PartOfSpeech{entity.PosVerb, entity.PosNoun}, w.POSTags)
	assert.Equal(t, map[string]int{"noun": 1}, stats.TagsAdded)
	assert.Equal(t, "跑；賽跑", w.Definition)

	d.ImportRows([]RawRow{{"word": "run", "definition": "奔跑"}}, ImportOptions{})
	w, _ = d.Lookup("run", entity.StageUnknown)
	assert.Equal(t, []entity.PartOfSpeech{entity.PosVerb, entity.PosNoun}, w.POSTags)
	assert.Equal(t, "跑；賽跑", w.Definition)
}

func TestImportRows_ExampleOverrideFlag(t *testing.T) {
	d := NewDataset()
	d.ImportRows([]RawRow{{"word": "swim", "pos": "v.", "example_sentence": "I swim fast.", "example_translation": "我游得很快。"}}, ImportOptions{})

	incoming := []RawRow{{"word": "swim", "pos": "v.", "example_sentence": "We swim daily."}}
	d.ImportRows(incoming, ImportOptions{})
	w, _ := d.Lookup("swim", entity.StageUnknown)
	assert.Equal(t, "I swim fast.", w.Examples[0].Sentence)
	assert.Equal(t, "我游得很快。", w.Examples[0].Translation)

	d.ImportRows(incoming, ImportOptions{OverrideExamples: true})
	w, _ = d.Lookup("swim", entity.StageUnknown)
	assert.Equal(t, "We swim daily.", w.Examples[0].Sentence)
	assert.Equal(t, "我游得很快。", w.Examples[0].Translation)
}

func TestImportRows_PlaceholderExampleIsAlwaysReplaceable(t *testing.T) {
	d := NewDataset()
	auto := ImportOptions{Normalize: NormalizeOptions{AutoExamples: true}}
	d.ImportRows([]RawRow{{"word": "jump", "pos": "v."}}, auto)
	w, _ := d.Lookup("jump", entity.StageUnknown)
	require.Equal(t, PlaceholderExample("jump", entity.PosVerb), w.Examples[0])

	// a placeholder arriving again counts as empty
	d.ImportRows([]RawRow{{"word": "jump", "pos": "v.", "example_sentence_3": "Jump!"}}, auto)
	w, _ = d.Lookup("jump", entity.StageUnknown)
	assert.Equal(t, PlaceholderExample("jump", entity.PosVerb), w.Examples[0])
	assert.Equal(t, "Jump!", w.Examples[2].Sentence)

	d.ImportRows([]RawRow{{"word": "jump", "example_sentence": "Frogs jump.", "example_translation": "青蛙跳。"}}, ImportOptions{})
	w, _ = d.Lookup("jump", entity.StageUnknown)
	assert.Equal(t, "Frogs jump.", w.Examples[0].Sentence)
	assert.Equal(t, "青蛙跳。", w.Examples[0].Translation)
	assert.Equal(t, "Jump!", w.Examples[2].Sentence)

	d.ImportRows([]RawRow{{"word": "jump", "example_sentence_3": "Jump high!"}}, ImportOptions{})
	w, _ = d.Lookup("jump", entity.StageUnknown)
	assert.Equal(t, "Jump!", w.Examples[2].Sentence)
}

func TestImportRows_FieldPolicies(t *testing.T) {
	d := NewDataset()
	d.ImportRows([]RawRow{{
		"word":           "bright",
		"pos":            "adj.",
		"level":          "2",
		"kk_phonetic":    "[braɪt]",
		"synonyms":       "shiny",
		"textbook_index": "A-1-1",
		"exam_tags":      "106學測",
		"video_url":      "https://example.com/a",
		"prefix":         "br-",
	}}, ImportOptions{})

	stats := d.ImportRows([]RawRow{{
		"word":           "bright",
		"pos":            "adj.",
		"level":          "3",
		"kk_phonetic":    "[brait]",
		"synonyms":       "Shiny, brilliant",
		"antonyms":       "dark",
		"textbook_index": "A-1-1;B-2-3",
		"exam_tags":      "106學測;110學測",
		"video_url":      "https://example.com/b",
		"prefix":         "x-",
		"suffix":         "-ness",
	}}, ImportOptions{})
	assert.Equal(t, 1, stats.Merged)

	w, _ := d.Lookup("bright", entity.StageUnknown)
	assert.Equal(t, "3", w.Level)
	assert.Equal(t, "[braɪt]", w.KKPhonetic)
	assert.Equal(t, []string{"shiny", "brilliant"}, w.Synonyms)
	assert.Equal(t, []string{"dark"}, w.Antonyms)
	assert.Equal(t, []entity.TextbookRef{{Version: "A", Volume: "1", Lesson: "1"}, {Version: "B", Volume: "2", Lesson: "3"}}, w.TextbookIndex)
	assert.Equal(t, []string{"106學測", "110學測"}, w.ExamTags)
	assert.Equal(t, "https://example.com/a", w.VideoURL)
	require.NotNil(t, w.Affix)
	assert.Equal(t, "br-", w.Affix.Prefix)
	assert.Equal(t, "-ness", w.Affix.Suffix)
}

func TestImportRows_SkipsMalformedRows(t *testing.T) {
	d := NewDataset()
	stats := d.ImportRows([]RawRow{
		nil,
		{},
		{"english_word": "   "},
		{"chinese_definition": "沒有英文"},
		{"english_word": "(adj.)"},
		{"english_word": "ok"},
	}, ImportOptions{})

	assert.Equal(t, 3, stats.SkippedNoData)
	assert.Equal(t, 2, stats.SkippedNoHeadword)
	assert.Equal(t, 5, stats.Skipped())
	assert.Equal(t, 1, stats.Added)

	noData, noHeadword := d.Skipped()
	assert.Equal(t, 3, noData)
	assert.Equal(t, 2, noHeadword)
}

func TestImportRows_ThemeOrderStability(t *testing.T) {
	d := NewDataset()
	d.Load([]*entity.Word{
		{ID: 3, Headword: "apple", DisplayForm: "apple", POSTags: []entity.PartOfSpeech{entity.PosNoun}, Themes: []string{"food"}, ThemeOrder: map[string]int{"food": 7}},
		{ID: 9, Headword: "pear", DisplayForm: "pear", POSTags: []entity.PartOfSpeech{entity.PosNoun}, Themes: []string{"food"}, ThemeOrder: map[string]int{"food": 2}},
	})

	stats := d.ImportRows([]RawRow{
		{"word": "apple", "theme": "food, fruit"},
		{"word": "banana", "theme": "food"},
		{"word": "pear", "theme": "food", "theme_order": map[string]any{"food": float64(0)}},
	}, ImportOptions{})
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 2, stats.Merged)

	apple, _ := d.Lookup("apple", entity.StageUnknown)
	assert.Equal(t, map[string]int{"food": 7, "fruit": 0}, apple.ThemeOrder)

	pear, _ := d.Lookup("pear", entity.StageUnknown)
	assert.Equal(t, map[string]int{"food": 2}, pear.ThemeOrder)

	banana, _ := d.Lookup("banana", entity.StageUnknown)
	assert.Equal(t, int64(10), banana.ID)
	assert.Equal(t, map[string]int{"food": 8}, banana.ThemeOrder)
}

func TestThemeOrder_StampAndSeed(t *testing.T) {
	order := NewThemeOrder()
	a := &entity.Word{}
	b := &entity.Word{ThemeOrder: map[string]int{"food": 5}}

	order.Stamp(a, []string{"food", "animals"})
	assert.Equal(t, map[string]int{"food": 0, "animals": 0}, a.ThemeOrder)

	order.Stamp(b, []string{"food"})
	assert.Equal(t, 5, b.ThemeOrder["food"])
	assert.Equal(t, 6, order.Next("food"))

	order.Stamp(a, []string{"food"})
	assert.Equal(t, 0, a.ThemeOrder["food"])

	order.Reset()
	assert.Equal(t, 0, order.Next("food"))
	order.Seed(b)
	assert.Equal(t, 6, order.Next("food"))
}

func TestDataset_SnapshotIsACopy(t *testing.T) {
	d := NewDataset()
	d.ImportRows([]RawRow{{"word": "cup", "synonyms": "mug"}}, ImportOptions{})

	snapshot := d.All()
	snapshot[0].Synonyms[0] = "changed"
	snapshot[0].Definition = "changed"

	w, ok := d.Get(snapshot[0].ID)
	require.True(t, ok)
	assert.Equal(t, []string{"mug"}, w.Synonyms)
	assert.Empty(t, w.Definition)

	_, ok = d.Get(999)
	assert.False(t, ok)
}

func ids(words []*entity.Word) []int64 {
	out := make([]int64, 0, len(words))
	for _, w := range words {
		out = append(out, w.ID)
	}
	return out
}

func TestDataset_CloneIsIndependent(t *testing.T) {
	d := NewDataset()
	d.ImportRows([]RawRow{{"english_word": "apple", "theme": "food", "stage": "junior"}}, ImportOptions{})

	staged := d.Clone()
	staged.ImportRows([]RawRow{{"english_word": "pear", "theme": "food", "stage": "junior"}}, ImportOptions{})
	require.Equal(t, 2, staged.Len())
	assert.Equal(t, 1, d.Len())

	// the original keeps handing out the same positions and ids it would have before staging
	d.ImportRows([]RawRow{{"english_word": "plum", "theme": "food", "stage": "junior"}}, ImportOptions{})
	plum, ok := d.Lookup("plum", entity.StageJunior)
	require.True(t, ok)
	assert.Equal(t, int64(2), plum.ID)
	assert.Equal(t, 1, plum.ThemeOrder["food"])
}
