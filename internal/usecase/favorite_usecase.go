package usecase

import (
	"context"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/repository"
)

// FavoriteUsecase manages the learner's starred words.
type FavoriteUsecase interface {
	Add(ctx context.Context, wordID int64) (*entity.Favorite, error)
	Remove(ctx context.Context, wordID int64) error
	List(ctx context.Context) ([]entity.Favorite, error)
}

// WordLookup resolves a word by id.
type WordLookup interface {
	Get(ctx context.Context, id int64) (*entity.Word, error)
}

type favoriteUsecase struct {
	repo  repository.FavoriteRepository
	words WordLookup
}

func NewFavoriteUsecase(repo repository.FavoriteRepository, words WordLookup) FavoriteUsecase {
	return &favoriteUsecase{repo: repo, words: words}
}

// Add stars a word that exists in the dataset.
func (u *favoriteUsecase) Add(ctx context.Context, wordID int64) (*entity.Favorite, error) {
	if wordID <= 0 {
		return nil, entity.ErrInvalidWordID
	}
	if _, err := u.words.Get(ctx, wordID); err != nil {
		return nil, err
	}
	return u.repo.Add(ctx, wordID)
}

func (u *favoriteUsecase) Remove(ctx context.Context, wordID int64) error {
	if wordID <= 0 {
		return entity.ErrInvalidWordID
	}
	return u.repo.Remove(ctx, wordID)
}

func (u *favoriteUsecase) List(ctx context.Context) ([]entity.Favorite, error) {
	return u.repo.List(ctx)
}
