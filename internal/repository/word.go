package repository

import (
	"context"

	"github.com/eslsoft/wordgym/internal/entity"
)

type ListWordQuery struct {
	Pagination
	FilterOrder
}

// WordRepository persists dataset snapshots. The in-memory dataset is authoritative; storage only
// mirrors it between runs.
type WordRepository interface {
	LoadAll(ctx context.Context) ([]*entity.Word, error)
	ReplaceAll(ctx context.Context, words []*entity.Word) error
	Count(ctx context.Context) (int64, error)
}
