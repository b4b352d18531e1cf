package usecase

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/repository"
	"github.com/eslsoft/wordgym/internal/usecase/ingest"
	"github.com/eslsoft/wordgym/pkg/filterexpr"
)

var listWordsSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"word": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpSW: "Keyword",
				filterexpr.OpIN: "Words",
			},
		},
		"stage": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Stage"},
		},
		"theme": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Theme"},
		},
		"pos": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ: "POS",
				filterexpr.OpIN: "POS",
			},
			Setter: appendStrings,
		},
		"exam": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Exam"},
		},
		"textbook_version": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "TextbookVersion"},
		},
		"level": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Level"},
		},
		"id": {
			Kind: filterexpr.KindNumber,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "MinID",
				filterexpr.OpLTE: "MaxID",
				filterexpr.OpIN:  "IDs",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		DefaultPrimary: "id",
		FallbackKey:    "id",
		Keys:           []string{"id", "headword", "theme_order"},
	},
}

func appendStrings(field reflect.Value, value any) error {
	switch v := value.(type) {
	case string:
		field.Set(reflect.Append(field, reflect.ValueOf(v)))
	case []string:
		for _, s := range v {
			field.Set(reflect.Append(field, reflect.ValueOf(s)))
		}
	default:
		return fmt.Errorf("unsupported value %T", value)
	}
	return nil
}

type wordFilter struct {
	entity.WordFilter
	stage entity.Stage
	pos   []entity.PartOfSpeech
}

func bindWordFilter(query *repository.ListWordQuery) (*wordFilter, error) {
	f := &wordFilter{}
	if err := filterexpr.Bind(query, &f.WordFilter, listWordsSchema); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidQuery, err)
	}
	if f.Stage != nil {
		raw := strings.TrimSpace(*f.Stage)
		f.stage = entity.ParseStage(raw)
		// the unknown partition is addressed as '' or 'unknown'
		if !f.stage.Known() && raw != "" && !strings.EqualFold(raw, "unknown") {
			return nil, fmt.Errorf("%w: unrecognized stage %q", entity.ErrInvalidQuery, raw)
		}
	}
	f.Keyword = entity.NormalizeWordToken(f.Keyword)
	f.Words = lo.Map(f.Words, func(w string, _ int) string { return entity.NormalizeWordToken(w) })
	f.pos = lo.Uniq(lo.Map(f.POS, func(p string, _ int) entity.PartOfSpeech { return ingest.NormalizePOS(p) }))
	return f, nil
}

func (f *wordFilter) matches(w *entity.Word) bool {
	headword := entity.NormalizeWordToken(w.Headword)
	switch {
	case f.Keyword != "" && !strings.HasPrefix(headword, f.Keyword):
		return false
	case len(f.Words) > 0 && !lo.Contains(f.Words, headword):
		return false
	case f.Stage != nil && w.Stage != f.stage:
		return false
	case f.Theme != "" && !lo.Contains(w.Themes, f.Theme):
		return false
	case len(f.pos) > 0 && !lo.Some(w.POSTags, f.pos):
		return false
	case f.Exam != "" && !lo.Contains(w.ExamTags, f.Exam):
		return false
	case f.TextbookVersion != "" && !lo.ContainsBy(w.TextbookIndex, func(r entity.TextbookRef) bool {
		return strings.EqualFold(r.Version, f.TextbookVersion)
	}):
		return false
	case f.Level != "" && w.Level != f.Level:
		return false
	case f.MinID != nil && w.ID < *f.MinID:
		return false
	case f.MaxID != nil && w.ID > *f.MaxID:
		return false
	case len(f.IDs) > 0 && !lo.Contains(f.IDs, w.ID):
		return false
	}
	return true
}

func (f *wordFilter) sort(words []*entity.Word) {
	sort.SliceStable(words, func(i, j int) bool {
		if c := f.compare(words[i], words[j], f.PrimaryKey); c != 0 {
			return (c < 0) != f.PrimaryDesc
		}
		if c := f.compare(words[i], words[j], f.SecondaryKey); c != 0 {
			return (c < 0) != f.SecondaryDesc
		}
		return words[i].ID < words[j].ID
	})
}

func (f *wordFilter) compare(a, b *entity.Word, key string) int {
	switch key {
	case "headword":
		return strings.Compare(entity.NormalizeWordToken(a.Headword), entity.NormalizeWordToken(b.Headword))
	case "theme_order":
		return cmp.Compare(f.themePosition(a), f.themePosition(b))
	case "id":
		return cmp.Compare(a.ID, b.ID)
	default:
		return 0
	}
}

// themePosition reads the stamp for the filtered theme, or the word's primary theme. Unstamped
// words sort last.
func (f *wordFilter) themePosition(w *entity.Word) int {
	theme := f.Theme
	if theme == "" {
		theme = w.Theme
		if theme == "" && len(w.Themes) > 0 {
			theme = w.Themes[0]
		}
	}
	if v, ok := w.ThemeOrder[theme]; ok {
		return v
	}
	return math.MaxInt
}
