package usecase

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/sheet"
	"github.com/eslsoft/wordgym/internal/repository"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memWordRepo struct {
	mu       sync.Mutex
	words    []*entity.Word
	err      error
	replaced int
}

func (m *memWordRepo) LoadAll(context.Context) ([]*entity.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Word, 0, len(m.words))
	for _, w := range m.words {
		out = append(out, w.Clone())
	}
	return out, nil
}

func (m *memWordRepo) ReplaceAll(_ context.Context, words []*entity.Word) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.replaced++
	m.words = words
	return nil
}

func (m *memWordRepo) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.words)), nil
}

type memFavoriteRepo struct {
	favs map[int64]entity.Favorite
}

func newMemFavoriteRepo() *memFavoriteRepo {
	return &memFavoriteRepo{favs: make(map[int64]entity.Favorite)}
}

func (m *memFavoriteRepo) Add(_ context.Context, wordID int64) (*entity.Favorite, error) {
	f, ok := m.favs[wordID]
	if !ok {
		f = entity.Favorite{WordID: wordID}
		m.favs[wordID] = f
	}
	return &f, nil
}

func (m *memFavoriteRepo) Remove(_ context.Context, wordID int64) error {
	if _, ok := m.favs[wordID]; !ok {
		return entity.ErrFavoriteNotFound
	}
	delete(m.favs, wordID)
	return nil
}

func (m *memFavoriteRepo) List(context.Context) ([]entity.Favorite, error) {
	out := make([]entity.Favorite, 0, len(m.favs))
	for _, f := range m.favs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WordID < out[j].WordID })
	return out, nil
}

func (m *memFavoriteRepo) ReplaceAll(_ context.Context, favs []entity.Favorite) error {
	m.favs = make(map[int64]entity.Favorite, len(favs))
	for _, f := range favs {
		m.favs[f.WordID] = f
	}
	return nil
}

type memQuizRepo struct {
	records []entity.QuizRecord
}

func (m *memQuizRepo) Create(_ context.Context, rec *entity.QuizRecord) error {
	for _, r := range m.records {
		if r.ID == rec.ID {
			return entity.ErrDuplicateRecord
		}
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *memQuizRepo) sorted() []entity.QuizRecord {
	out := append([]entity.QuizRecord(nil), m.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out
}

func (m *memQuizRepo) List(context.Context, *repository.ListQuizRecordQuery) ([]entity.QuizRecord, int64, error) {
	out := m.sorted()
	return out, int64(len(out)), nil
}

func (m *memQuizRepo) Trim(_ context.Context, keep int) (int, error) {
	out := m.sorted()
	if len(out) <= keep {
		return 0, nil
	}
	removed := len(out) - keep
	m.records = out[:keep]
	return removed, nil
}

func (m *memQuizRepo) ReplaceAll(_ context.Context, records []entity.QuizRecord) error {
	m.records = append([]entity.QuizRecord(nil), records...)
	return nil
}

type stubSheet struct {
	payload *sheet.Payload
	err     error
	forced  []bool
}

func (s *stubSheet) Fetch(_ context.Context, forceRefresh bool) (*sheet.Payload, error) {
	s.forced = append(s.forced, forceRefresh)
	if s.err != nil {
		return nil, s.err
	}
	p := *s.payload
	return &p, nil
}
