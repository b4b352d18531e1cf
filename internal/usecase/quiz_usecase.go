package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/repository"
)

// DefaultQuizHistoryLimit caps the stored quiz history when no limit is configured.
const DefaultQuizHistoryLimit = 50

// QuizUsecase records finished quizzes and lists the history newest first.
type QuizUsecase interface {
	Record(ctx context.Context, record *entity.QuizRecord) (*entity.QuizRecord, error)
	List(ctx context.Context, query *repository.ListQuizRecordQuery) ([]entity.QuizRecord, int64, error)
}

type quizUsecase struct {
	repo   repository.QuizRecordRepository
	limit  int
	logger *logrus.Logger
	clock  func() time.Time
	newID  func() string
}

func NewQuizUsecase(repo repository.QuizRecordRepository, limit int, logger *logrus.Logger) QuizUsecase {
	if limit < 1 {
		limit = DefaultQuizHistoryLimit
	}
	return &quizUsecase{
		repo:   repo,
		limit:  limit,
		logger: logger,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
}

func (u *quizUsecase) Record(ctx context.Context, record *entity.QuizRecord) (*entity.QuizRecord, error) {
	if record == nil {
		return nil, entity.ErrInvalidQuizRecord
	}
	rec := *record
	if err := rec.Normalize(u.clock().UTC()); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		rec.ID = u.newID()
	}
	rec.WrongWordIDs = lo.Uniq(lo.Filter(rec.WrongWordIDs, func(id int64, _ int) bool { return id > 0 }))

	if err := u.repo.Create(ctx, &rec); err != nil {
		return nil, err
	}
	removed, err := u.repo.Trim(ctx, u.limit)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		u.logger.WithFields(logrus.Fields{"removed": removed, "limit": u.limit}).Debug("trimmed quiz history")
	}
	return &rec, nil
}

func (u *quizUsecase) List(ctx context.Context, query *repository.ListQuizRecordQuery) ([]entity.QuizRecord, int64, error) {
	if query == nil {
		query = &repository.ListQuizRecordQuery{}
	}
	return u.repo.List(ctx, query)
}
