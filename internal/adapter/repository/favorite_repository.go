package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/database/migrate"
	"github.com/eslsoft/wordgym/internal/repository"
)

type favoriteRepository struct {
	drv dialect.Driver
}

func NewFavoriteRepository(drv dialect.Driver) repository.FavoriteRepository {
	return &favoriteRepository{drv: drv}
}

// Add is idempotent; re-adding keeps the original timestamp.
func (r *favoriteRepository) Add(ctx context.Context, wordID int64) (*entity.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if wordID <= 0 {
		return nil, entity.ErrInvalidWordID
	}
	d := r.drv.Dialect()
	query, args := entsql.Dialect(d).
		Insert(migrate.FavoritesTable.Name).
		Columns("word_id", "created_at").
		Values(wordID, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("word_id"), entsql.DoNothing()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return nil, fmt.Errorf("add favorite: %w", translateError(err))
	}

	query, args = entsql.Dialect(d).
		Select("word_id", "created_at").
		From(entsql.Table(migrate.FavoritesTable.Name)).
		Where(entsql.EQ("word_id", wordID)).
		Query()
	favs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return nil, entity.ErrFavoriteNotFound
	}
	return &favs[0], nil
}

func (r *favoriteRepository) Remove(ctx context.Context, wordID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	query, args := entsql.Dialect(r.drv.Dialect()).
		Delete(migrate.FavoritesTable.Name).
		Where(entsql.EQ("word_id", wordID)).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if affected == 0 {
		return entity.ErrFavoriteNotFound
	}
	return nil
}

func (r *favoriteRepository) List(ctx context.Context) ([]entity.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select("word_id", "created_at").
		From(entsql.Table(migrate.FavoritesTable.Name)).
		OrderBy("created_at", "word_id").
		Query()
	return r.query(ctx, query, args)
}

func (r *favoriteRepository) ReplaceAll(ctx context.Context, favorites []entity.Favorite) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	d := r.drv.Dialect()
	query, args := entsql.Dialect(d).Delete(migrate.FavoritesTable.Name).Query()
	if err = tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}
	if len(favorites) > 0 {
		insert := entsql.Dialect(d).Insert(migrate.FavoritesTable.Name).Columns("word_id", "created_at")
		for _, f := range favorites {
			insert.Values(f.WordID, f.CreatedAt.UTC())
		}
		query, args = insert.Query()
		if err = tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("insert favorites: %w", translateError(err))
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit favorites: %w", err)
	}
	return nil
}

func (r *favoriteRepository) query(ctx context.Context, query string, args []any) ([]entity.Favorite, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var out []entity.Favorite
	for rows.Next() {
		var f entity.Favorite
		if err := rows.Scan(&f.WordID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
