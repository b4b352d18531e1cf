package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/sheet"
	"github.com/eslsoft/wordgym/internal/repository"
	"github.com/eslsoft/wordgym/internal/usecase/ingest"
	"github.com/eslsoft/wordgym/pkg/rowparser"
)

func newTestDatasets(repo *memWordRepo, src SheetSource) DatasetUsecase {
	return NewDatasetUsecase(repo, src, ingest.ImportOptions{}, quietLogger(), nil)
}

func wordIDs(words []*entity.Word) []int64 {
	return lo.Map(words, func(w *entity.Word, _ int) int64 { return w.ID })
}

func TestImportText_CSV(t *testing.T) {
	repo := &memWordRepo{}
	uc := newTestDatasets(repo, nil)

	res, err := uc.ImportText(context.Background(), "english_word,chinese_definition,stage\napple,蘋果,junior\nbook,書,senior\n", ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Added)
	assert.Equal(t, 2, res.Stats.TotalAfter)
	assert.Empty(t, res.Warnings)

	require.Len(t, repo.words, 2)
	assert.Equal(t, []int64{1, 2}, wordIDs(repo.words))
	assert.Equal(t, entity.StageSenior, repo.words[1].Stage)
}

func TestImportText_JSONArrayFirst(t *testing.T) {
	uc := newTestDatasets(&memWordRepo{}, nil)
	ctx := context.Background()

	res, err := uc.ImportText(ctx, `[{"english_word":"hello","chinese_definition":"哈囉","stage":"junior","synonyms":["hi","hey"]}]`, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Added)

	res, err = uc.ImportText(ctx, `[{"english_word":"hello","stage":"junior","synonyms":["hi"]},{"english_word":"hello","stage":"senior"}]`, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Merged)
	assert.Equal(t, 1, res.Stats.Added)

	w, err := uc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"hi", "hey"}, w.Synonyms)
}

func TestImportText_Rejections(t *testing.T) {
	uc := newTestDatasets(&memWordRepo{}, nil)
	ctx := context.Background()

	_, err := uc.ImportText(ctx, "english_word,chinese_definition\n", ImportOptions{})
	assert.ErrorIs(t, err, entity.ErrNoDataRows)
	assert.Equal(t, "CSV has no data rows", err.Error())

	_, err = uc.ImportText(ctx, "[]", ImportOptions{})
	assert.ErrorIs(t, err, entity.ErrNoDataRows)

	_, err = uc.ImportText(ctx, "  \n", ImportOptions{})
	assert.ErrorIs(t, err, entity.ErrEmptyBody)

	assert.Nil(t, uc.LastStats())
}

func TestImportText_ForcedTSV(t *testing.T) {
	uc := newTestDatasets(&memWordRepo{}, nil)

	// the comma in the header would make detection pick CSV
	res, err := uc.ImportText(context.Background(), "word\tdefinition, note\nfox\t狐狸\n", ImportOptions{Mode: rowparser.ModeTSV})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Added)
	assert.Equal(t, "fox", uc.Snapshot(context.Background())[0].Headword)
}

func TestImport_PersistFailureKeepsDataset(t *testing.T) {
	repo := &memWordRepo{}
	uc := newTestDatasets(repo, nil)
	ctx := context.Background()

	_, err := uc.ImportRows(ctx, []ingest.RawRow{{"english_word": "apple", "stage": "junior"}}, ImportOptions{})
	require.NoError(t, err)

	repo.err = errors.New("disk full")
	_, err = uc.ImportRows(ctx, []ingest.RawRow{{"english_word": "pear", "stage": "junior"}}, ImportOptions{})
	require.Error(t, err)

	words, total, err := uc.List(ctx, &repository.ListWordQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "apple", words[0].Headword)
	assert.Equal(t, 1, uc.LastStats().Added)

	repo.err = nil
	_, err = uc.ImportRows(ctx, []ingest.RawRow{{"english_word": "pear", "stage": "junior"}}, ImportOptions{})
	require.NoError(t, err)
	pear, _, err := uc.List(ctx, &repository.ListWordQuery{FilterOrder: repository.FilterOrder{Filter: "word in ['pear']"}})
	require.NoError(t, err)
	require.Len(t, pear, 1)
	assert.Equal(t, int64(2), pear[0].ID)
}

func TestRefresh(t *testing.T) {
	src := &stubSheet{payload: &sheet.Payload{
		Text:      "english_word\tchinese_definition\tstage\napple\t蘋果\tjunior\n",
		Mode:      rowparser.ModeTSV,
		FromCache: true,
	}}
	uc := newTestDatasets(&memWordRepo{}, src)
	ctx := context.Background()

	res, err := uc.Refresh(ctx, false, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Added)
	assert.True(t, res.FromCache)

	src.err = &entity.FetchError{StatusCode: http.StatusBadGateway, StatusText: http.StatusText(http.StatusBadGateway)}
	_, err = uc.Refresh(ctx, true, ImportOptions{})
	var fetchErr *entity.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, []bool{false, true}, src.forced)

	// last known good dataset stays
	_, total, err := uc.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 1, uc.LastStats().Added)

	_, err = newTestDatasets(&memWordRepo{}, nil).Refresh(ctx, false, ImportOptions{})
	assert.ErrorIs(t, err, entity.ErrNoSource)
}

func TestLoad_ContinuesIDsAndThemeOrder(t *testing.T) {
	repo := &memWordRepo{words: []*entity.Word{{
		ID:         5,
		Headword:   "apple",
		Stage:      entity.StageJunior,
		POSTags:    []entity.PartOfSpeech{entity.PosNoun},
		Themes:     []string{"food"},
		ThemeOrder: map[string]int{"food": 3},
	}}}
	uc := newTestDatasets(repo, nil)
	ctx := context.Background()
	require.NoError(t, uc.Load(ctx))

	_, err := uc.ImportRows(ctx, []ingest.RawRow{{"english_word": "pear", "theme": "food", "stage": "junior"}}, ImportOptions{})
	require.NoError(t, err)

	pear, err := uc.Get(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, "pear", pear.Headword)
	assert.Equal(t, 4, pear.ThemeOrder["food"])
}

func TestImportRows_ExampleOverrideDefaults(t *testing.T) {
	uc := NewDatasetUsecase(&memWordRepo{}, nil, ingest.ImportOptions{OverrideExamples: false}, quietLogger(), nil)
	ctx := context.Background()
	row := func(sentence string) []ingest.RawRow {
		return []ingest.RawRow{{"english_word": "apple", "stage": "junior", "example_sentence": sentence}}
	}

	_, err := uc.ImportRows(ctx, row("I like apples."), ImportOptions{})
	require.NoError(t, err)
	_, err = uc.ImportRows(ctx, row("Apples are red."), ImportOptions{})
	require.NoError(t, err)
	w, err := uc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "I like apples.", w.Examples[0].Sentence)

	_, err = uc.ImportRows(ctx, row("Apples are red."), ImportOptions{OverrideExamples: lo.ToPtr(true)})
	require.NoError(t, err)
	w, err = uc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Apples are red.", w.Examples[0].Sentence)
}

func TestImportText_JSONThemeOrder(t *testing.T) {
	rows, _, err := decodeText(`[{"english_word":"apple","theme":"food","theme_order":{"food":7}}]`, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	uc := newTestDatasets(&memWordRepo{}, nil)
	ctx := context.Background()
	_, err = uc.ImportRows(ctx, rows, ImportOptions{})
	require.NoError(t, err)
	_, err = uc.ImportText(ctx, `[{"english_word":"banana","theme":"food"}]`, ImportOptions{})
	require.NoError(t, err)

	apple, err := uc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"food": 7}, apple.ThemeOrder)
	banana, err := uc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"food": 8}, banana.ThemeOrder)
}

func TestImportText_ReimportExportedSnapshot(t *testing.T) {
	uc := newTestDatasets(&memWordRepo{}, nil)
	ctx := context.Background()
	_, err := uc.ImportRows(ctx, []ingest.RawRow{
		{"english_word": "apple", "pos": "n.", "theme": "food", "example_sentence": "I ate an apple.", "example_translation": "我吃了蘋果。"},
		{"english_word": "run", "pos": "v.", "example_sentence_3": "Run home."},
	}, ImportOptions{})
	require.NoError(t, err)
	before := uc.Snapshot(ctx)

	data, err := json.Marshal(before)
	require.NoError(t, err)
	res, err := uc.ImportText(ctx, string(data), ImportOptions{Replace: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Added)

	after := uc.Snapshot(ctx)
	require.Len(t, after, 2)
	for i := range before {
		assert.Equal(t, before[i].Headword, after[i].Headword)
		assert.Equal(t, before[i].Examples, after[i].Examples)
		assert.Equal(t, before[i].ThemeOrder, after[i].ThemeOrder)
	}
	assert.Equal(t, "我吃了蘋果。", after[0].Examples[0].Translation)
	assert.Equal(t, "Run home.", after[1].Examples[2].Sentence)
}

func seedListDataset(t *testing.T) DatasetUsecase {
	t.Helper()
	uc := newTestDatasets(&memWordRepo{}, nil)
	apple := ingest.RawRow{"english_word": "apple", "part_of_speech": "n.", "theme": "food", "stage": "junior"}
	apple["exam_tags"] = "GEPT"
	apple["textbook_index"] = "康軒-1-2"
	apple["level"] = "1"
	rows := []ingest.RawRow{
		apple,
		{"english_word": "run", "part_of_speech": "v.", "theme": "sports", "stage": "junior"},
		{"english_word": "Apple", "part_of_speech": "n.", "theme": "food", "stage": "senior"},
		{"english_word": "quickly", "part_of_speech": "adv."},
	}
	_, err := uc.ImportRows(context.Background(), rows, ImportOptions{})
	require.NoError(t, err)
	return uc
}

func TestList_Filters(t *testing.T) {
	uc := seedListDataset(t)

	cases := []struct {
		filter string
		want   []int64
	}{
		{"stage == 'junior'", []int64{1, 2}},
		{"stage == 'unknown'", []int64{4}},
		{"stage == ''", []int64{4}},
		{"word.startsWith('Ap')", []int64{1, 3}},
		{"word in ['RUN', 'quickly']", []int64{2, 4}},
		{"pos in ['v.', 'adv']", []int64{2, 4}},
		{"pos == 'noun'", []int64{1, 3}},
		{"theme == 'food' && stage == 'senior'", []int64{3}},
		{"exam == 'GEPT'", []int64{1}},
		{"textbook_version == '康軒'", []int64{1}},
		{"level == '1'", []int64{1}},
		{"id >= 2 && id <= 3", []int64{2, 3}},
		{"id in [4, 1]", []int64{1, 4}},
		{"theme == 'adverb'", []int64{4}},
		{"theme == 'food' && word.startsWith('x')", []int64{}},
	}
	for _, tc := range cases {
		words, total, err := uc.List(context.Background(), &repository.ListWordQuery{FilterOrder: repository.FilterOrder{Filter: tc.filter}})
		require.NoError(t, err, tc.filter)
		assert.Equal(t, tc.want, wordIDs(words), tc.filter)
		assert.Equal(t, int64(len(tc.want)), total, tc.filter)
	}
}

func TestList_OrderAndPagination(t *testing.T) {
	uc := seedListDataset(t)
	ctx := context.Background()

	words, _, err := uc.List(ctx, &repository.ListWordQuery{FilterOrder: repository.FilterOrder{OrderBy: "headword desc"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 1, 3}, wordIDs(words))

	words, _, err = uc.List(ctx, &repository.ListWordQuery{FilterOrder: repository.FilterOrder{Filter: "theme == 'food'", OrderBy: "theme_order desc"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, wordIDs(words))

	words, total, err := uc.List(ctx, &repository.ListWordQuery{Pagination: repository.Pagination{PageNo: 2, PageSize: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, []int64{4}, wordIDs(words))

	words, total, err = uc.List(ctx, &repository.ListWordQuery{Pagination: repository.Pagination{PageNo: 3, PageSize: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Empty(t, words)
}

func TestList_InvalidQuery(t *testing.T) {
	uc := seedListDataset(t)
	for _, q := range []repository.FilterOrder{
		{Filter: "stage == 'middle'"},
		{Filter: "level >= '1'"},
		{Filter: "color == 'red'"},
		{OrderBy: "definition"},
	} {
		_, _, err := uc.List(context.Background(), &repository.ListWordQuery{FilterOrder: q})
		assert.ErrorIs(t, err, entity.ErrInvalidQuery, q)
	}
}

func TestGet_Errors(t *testing.T) {
	uc := seedListDataset(t)
	_, err := uc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, entity.ErrInvalidWordID)
	_, err = uc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, entity.ErrWordNotFound)
}

func TestReset_RestartsIDs(t *testing.T) {
	repo := &memWordRepo{}
	uc := newTestDatasets(repo, nil)
	ctx := context.Background()

	_, err := uc.ImportRows(ctx, []ingest.RawRow{{"english_word": "a"}, {"english_word": "b"}}, ImportOptions{})
	require.NoError(t, err)
	require.NoError(t, uc.Reset(ctx))
	assert.Empty(t, repo.words)
	assert.Nil(t, uc.LastStats())
	assert.Empty(t, uc.Snapshot(ctx))

	_, err = uc.ImportRows(ctx, []ingest.RawRow{{"english_word": "c"}}, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, wordIDs(uc.Snapshot(ctx)))
}
