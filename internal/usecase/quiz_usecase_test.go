package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordgym/internal/entity"
)

func newTestQuizzes(repo *memQuizRepo, limit int) *quizUsecase {
	uc := NewQuizUsecase(repo, limit, quietLogger()).(*quizUsecase)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	seq := 0
	uc.clock = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	uc.newID = func() string {
		seq++
		return fmt.Sprintf("quiz-%d", seq)
	}
	return uc
}

func TestQuizUsecase_RecordCapsHistory(t *testing.T) {
	repo := &memQuizRepo{}
	uc := newTestQuizzes(repo, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.Record(ctx, &entity.QuizRecord{Total: 10, Correct: i})
		require.NoError(t, err)
	}

	records, total, err := uc.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"quiz-5", "quiz-4", "quiz-3"}, []string{records[0].ID, records[1].ID, records[2].ID})
	assert.Equal(t, "choice", records[0].Mode)
}

func TestQuizUsecase_RecordNormalizes(t *testing.T) {
	uc := newTestQuizzes(&memQuizRepo{}, 0)
	assert.Equal(t, DefaultQuizHistoryLimit, uc.limit)

	rec, err := uc.Record(context.Background(), &entity.QuizRecord{
		ID:           "given",
		Mode:         " spelling ",
		Stage:        entity.StageSenior,
		Total:        4,
		Correct:      1,
		WrongWordIDs: []int64{3, 3, 0, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "given", rec.ID)
	assert.Equal(t, "spelling", rec.Mode)
	assert.Equal(t, []int64{3, 5}, rec.WrongWordIDs)
	assert.False(t, rec.TakenAt.IsZero())
}

func TestQuizUsecase_RejectsInvalid(t *testing.T) {
	uc := newTestQuizzes(&memQuizRepo{}, 5)
	ctx := context.Background()

	_, err := uc.Record(ctx, nil)
	assert.ErrorIs(t, err, entity.ErrInvalidQuizRecord)
	_, err = uc.Record(ctx, &entity.QuizRecord{Total: 2, Correct: 3})
	assert.ErrorIs(t, err, entity.ErrInvalidQuizRecord)
	_, err = uc.Record(ctx, &entity.QuizRecord{Total: 0})
	assert.ErrorIs(t, err, entity.ErrInvalidQuizRecord)
}
