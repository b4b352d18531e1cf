package repository

import (
	"context"

	"github.com/eslsoft/wordgym/internal/entity"
)

// FavoriteRepository stores the set of favorited word ids.
type FavoriteRepository interface {
	Add(ctx context.Context, wordID int64) (*entity.Favorite, error)
	Remove(ctx context.Context, wordID int64) error
	List(ctx context.Context) ([]entity.Favorite, error)
	ReplaceAll(ctx context.Context, favorites []entity.Favorite) error
}
