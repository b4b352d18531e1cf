package repository

import (
	"context"

	"github.com/eslsoft/wordgym/internal/entity"
)

// ListQuizRecordQuery holds parameters for listing quiz history.
type ListQuizRecordQuery struct {
	Pagination
	FilterOrder
}

// QuizRecordRepository stores finished quiz results.
type QuizRecordRepository interface {
	Create(ctx context.Context, record *entity.QuizRecord) error
	List(ctx context.Context, query *ListQuizRecordQuery) ([]entity.QuizRecord, int64, error)
	// Trim deletes everything but the newest keep records and reports how many were removed.
	Trim(ctx context.Context, keep int) (int, error)
	ReplaceAll(ctx context.Context, records []entity.QuizRecord) error
}
