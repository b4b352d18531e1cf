package repository

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/samber/lo"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/database/migrate"
	"github.com/eslsoft/wordgym/internal/infrastructure/database/types"
	"github.com/eslsoft/wordgym/internal/repository"
)

// insertBatchSize bounds the rows per INSERT statement.
const insertBatchSize = 200

type wordRepository struct {
	drv dialect.Driver
}

func NewWordRepository(drv dialect.Driver) repository.WordRepository {
	return &wordRepository{drv: drv}
}

func (r *wordRepository) LoadAll(ctx context.Context) ([]*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select("id", "payload").
		From(entsql.Table(migrate.WordsTable.Name)).
		OrderBy("id").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	defer rows.Close()

	var words []*entity.Word
	for rows.Next() {
		var (
			id      int64
			payload types.JSON[entity.Word]
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		w := payload.V
		w.ID = id
		words = append(words, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate words: %w", err)
	}
	return words, nil
}

func (r *wordRepository) ReplaceAll(ctx context.Context, words []*entity.Word) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := r.replaceAll(ctx, tx, words); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit words: %w", err)
	}
	return nil
}

func (r *wordRepository) replaceAll(ctx context.Context, tx dialect.Tx, words []*entity.Word) error {
	d := r.drv.Dialect()
	query, args := entsql.Dialect(d).Delete(migrate.WordsTable.Name).Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}

	now := time.Now().UTC()
	for _, batch := range lo.Chunk(words, insertBatchSize) {
		insert := entsql.Dialect(d).
			Insert(migrate.WordsTable.Name).
			Columns("id", "headword", "stage", "definition", "pos_tags", "payload", "updated_at")
		for _, w := range batch {
			insert.Values(w.ID, w.Headword, string(w.Stage), w.Definition, types.NewJSON(w.POSTags), types.NewJSON(w), now)
		}
		query, args := insert.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("insert words: %w", translateError(err))
		}
	}
	return nil
}

func (r *wordRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	query, args := entsql.Dialect(r.drv.Dialect()).
		Select(entsql.Count("*")).
		From(entsql.Table(migrate.WordsTable.Name)).
		Query()
	return scanCount(ctx, r.drv, query, args)
}

func scanCount(ctx context.Context, q dialect.ExecQuerier, query string, args []any) (int64, error) {
	var rows entsql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scan count: %w", err)
		}
	}
	return n, rows.Err()
}
