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
	"github.com/eslsoft/wordgym/pkg/filterexpr"
)

var quizColumns = []string{"id", "mode", "stage", "total", "correct", "wrong_word_ids", "taken_at"}

type quizRecordRepository struct {
	drv dialect.Driver
}

func NewQuizRecordRepository(drv dialect.Driver) repository.QuizRecordRepository {
	return &quizRecordRepository{drv: drv}
}

type listQuizRecordsParams struct {
	Stage       *string
	Mode        *string
	TakenAfter  *time.Time
	TakenBefore *time.Time

	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

func (r *quizRecordRepository) Create(ctx context.Context, record *entity.QuizRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	query, args := r.insert([]entity.QuizRecord{*record}).Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("create quiz record: %w", translateError(err))
	}
	return nil
}

func (r *quizRecordRepository) insert(records []entity.QuizRecord) *entsql.InsertBuilder {
	b := entsql.Dialect(r.drv.Dialect()).Insert(migrate.QuizRecordsTable.Name).Columns(quizColumns...)
	for _, rec := range records {
		b.Values(rec.ID, rec.Mode, string(rec.Stage), rec.Total, rec.Correct, types.NewJSON(rec.WrongWordIDs), rec.TakenAt.UTC())
	}
	return b
}

func (r *quizRecordRepository) List(ctx context.Context, query *repository.ListQuizRecordQuery) ([]entity.QuizRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	var p listQuizRecordsParams
	if err := filterexpr.Bind(query, &p, listQuizRecordsSchema); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", entity.ErrInvalidQuery, err)
	}

	d := r.drv.Dialect()
	sel := entsql.Dialect(d).Select(quizColumns...).From(entsql.Table(migrate.QuizRecordsTable.Name))
	if preds := quizPredicates(p); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(orderTerm(p.PrimaryKey, p.PrimaryDesc), orderTerm(p.SecondaryKey, p.SecondaryDesc))
	if query.PageSize > 0 {
		sel.Limit(int(query.PageSize))
		if offset := query.Offset(); offset > 0 {
			sel.Offset(int(offset))
		}
	}

	q, args := sel.Query()
	records, err := r.scan(ctx, q, args)
	if err != nil {
		return nil, 0, err
	}

	count := entsql.Dialect(d).Select(entsql.Count("*")).From(entsql.Table(migrate.QuizRecordsTable.Name))
	if preds := quizPredicates(p); len(preds) > 0 {
		count.Where(entsql.And(preds...))
	}
	q, args = count.Query()
	total, err := scanCount(ctx, r.drv, q, args)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func quizPredicates(p listQuizRecordsParams) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if p.Stage != nil {
		preds = append(preds, entsql.EQ("stage", string(entity.ParseStage(*p.Stage))))
	}
	if p.Mode != nil {
		preds = append(preds, entsql.EQ("mode", *p.Mode))
	}
	if p.TakenAfter != nil {
		preds = append(preds, entsql.GTE("taken_at", p.TakenAfter.UTC()))
	}
	if p.TakenBefore != nil {
		preds = append(preds, entsql.LTE("taken_at", p.TakenBefore.UTC()))
	}
	return preds
}

func orderTerm(key string, desc bool) string {
	col, ok := quizOrderColumns[key]
	if !ok {
		col = "taken_at"
	}
	if desc {
		return entsql.Desc(col)
	}
	return entsql.Asc(col)
}

func (r *quizRecordRepository) Trim(ctx context.Context, keep int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	d := r.drv.Dialect()
	q, args := entsql.Dialect(d).
		Select("id").
		From(entsql.Table(migrate.QuizRecordsTable.Name)).
		OrderBy(entsql.Desc("taken_at"), entsql.Desc("id")).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return 0, fmt.Errorf("list quiz ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan quiz id: %w", err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if len(ids) <= keep {
		return 0, nil
	}

	stale := ids[keep:]
	for _, chunk := range lo.Chunk(stale, insertBatchSize) {
		q, args := entsql.Dialect(d).
			Delete(migrate.QuizRecordsTable.Name).
			Where(entsql.In("id", lo.ToAnySlice(chunk)...)).
			Query()
		if err := r.drv.Exec(ctx, q, args, nil); err != nil {
			return 0, fmt.Errorf("trim quiz history: %w", err)
		}
	}
	return len(stale), nil
}

func (r *quizRecordRepository) ReplaceAll(ctx context.Context, records []entity.QuizRecord) (err error) {
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

	q, args := entsql.Dialect(r.drv.Dialect()).Delete(migrate.QuizRecordsTable.Name).Query()
	if err = tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("clear quiz history: %w", err)
	}
	for _, chunk := range lo.Chunk(records, insertBatchSize) {
		q, args := r.insert(chunk).Query()
		if err = tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert quiz history: %w", translateError(err))
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit quiz history: %w", err)
	}
	return nil
}

func (r *quizRecordRepository) scan(ctx context.Context, query string, args []any) ([]entity.QuizRecord, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list quiz history: %w", err)
	}
	defer rows.Close()

	var out []entity.QuizRecord
	for rows.Next() {
		var (
			rec   entity.QuizRecord
			stage string
			wrong types.JSON[[]int64]
		)
		if err := rows.Scan(&rec.ID, &rec.Mode, &stage, &rec.Total, &rec.Correct, &wrong, &rec.TakenAt); err != nil {
			return nil, fmt.Errorf("scan quiz record: %w", err)
		}
		rec.Stage = entity.Stage(stage)
		rec.WrongWordIDs = wrong.V
		if rec.WrongWordIDs == nil {
			rec.WrongWordIDs = []int64{}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
