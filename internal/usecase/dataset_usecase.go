package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/metrics"
	"github.com/eslsoft/wordgym/internal/infrastructure/sheet"
	"github.com/eslsoft/wordgym/internal/repository"
	"github.com/eslsoft/wordgym/internal/usecase/ingest"
	"github.com/eslsoft/wordgym/pkg/rowparser"
)

// DatasetUsecase owns the vocabulary dataset: imports, refreshes from the sheet and queries.
type DatasetUsecase interface {
	Load(ctx context.Context) error
	ImportRows(ctx context.Context, rows []ingest.RawRow, opts ImportOptions) (*ImportResult, error)
	ImportText(ctx context.Context, text string, opts ImportOptions) (*ImportResult, error)
	Refresh(ctx context.Context, forceRefresh bool, opts ImportOptions) (*ImportResult, error)
	List(ctx context.Context, query *repository.ListWordQuery) ([]*entity.Word, int64, error)
	Get(ctx context.Context, id int64) (*entity.Word, error)
	Snapshot(ctx context.Context) []*entity.Word
	Reset(ctx context.Context) error
	LastStats() *entity.MergeStats
}

// SheetSource supplies the published sheet text.
type SheetSource interface {
	Fetch(ctx context.Context, forceRefresh bool) (*sheet.Payload, error)
}

// ImportOptions are per-call overrides. Nil fields fall back to the configured defaults.
type ImportOptions struct {
	OverrideExamples *bool
	Replace          bool
	// Mode forces the text dialect; empty means detect.
	Mode rowparser.Mode
}

// ImportResult reports one import call.
type ImportResult struct {
	Stats     entity.MergeStats
	Warnings  []string
	FromCache bool
}

const (
	sourceRows  = "rows"
	sourceText  = "text"
	sourceSheet = "sheet"
)

type datasetUsecase struct {
	mu   sync.Mutex
	data *ingest.Dataset
	last *entity.MergeStats

	repo     repository.WordRepository
	sheet    SheetSource
	defaults ingest.ImportOptions
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

// NewDatasetUsecase wires storage, the sheet source and the configured merge defaults. src and
// m may be nil.
func NewDatasetUsecase(repo repository.WordRepository, src SheetSource, defaults ingest.ImportOptions, logger *logrus.Logger, m *metrics.Metrics) DatasetUsecase {
	return &datasetUsecase{
		data:     ingest.NewDataset(),
		repo:     repo,
		sheet:    src,
		defaults: defaults,
		logger:   logger,
		metrics:  m,
		clock:    time.Now,
	}
}

// Load replaces the in-memory dataset with the persisted one.
func (u *datasetUsecase) Load(ctx context.Context) error {
	words, err := u.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.data.Load(words)
	u.metrics.SetDatasetWords(u.data.Len())
	u.logger.WithField("words", u.data.Len()).Info("dataset loaded")
	return nil
}

func (u *datasetUsecase) ImportRows(ctx context.Context, rows []ingest.RawRow, opts ImportOptions) (*ImportResult, error) {
	return u.apply(ctx, sourceRows, rows, opts)
}

// ImportText accepts a JSON array of row objects, or CSV/TSV text.
func (u *datasetUsecase) ImportText(ctx context.Context, text string, opts ImportOptions) (*ImportResult, error) {
	rows, warnings, err := decodeText(text, opts.Mode)
	if err != nil {
		u.metrics.RecordImport(sourceText, "error", 0)
		return nil, err
	}
	res, err := u.apply(ctx, sourceText, rows, opts)
	if err != nil {
		return nil, err
	}
	res.Warnings = warnings
	return res, nil
}

// Refresh pulls the sheet and merges it. On any failure the current dataset is left untouched.
func (u *datasetUsecase) Refresh(ctx context.Context, forceRefresh bool, opts ImportOptions) (*ImportResult, error) {
	if u.sheet == nil {
		return nil, entity.ErrNoSource
	}
	payload, err := u.sheet.Fetch(ctx, forceRefresh)
	if err != nil {
		u.metrics.RecordImport(sourceSheet, "error", 0)
		u.logger.WithError(err).Warn("sheet refresh failed, keeping current dataset")
		return nil, err
	}
	if opts.Mode == "" {
		opts.Mode = payload.Mode
	}
	rows, warnings, err := decodeText(payload.Text, opts.Mode)
	if err != nil {
		u.metrics.RecordImport(sourceSheet, "error", 0)
		u.logger.WithError(err).Warn("sheet refresh failed, keeping current dataset")
		return nil, err
	}
	res, err := u.apply(ctx, sourceSheet, rows, opts)
	if err != nil {
		return nil, err
	}
	res.Warnings = warnings
	res.FromCache = payload.FromCache
	return res, nil
}

func (u *datasetUsecase) apply(ctx context.Context, source string, rows []ingest.RawRow, opts ImportOptions) (*ImportResult, error) {
	start := u.clock()
	u.mu.Lock()
	defer u.mu.Unlock()

	staged := u.data.Clone()
	stats := staged.ImportRows(rows, u.resolve(opts))
	if err := u.repo.ReplaceAll(ctx, staged.All()); err != nil {
		u.metrics.RecordImport(source, "error", u.clock().Sub(start))
		return nil, fmt.Errorf("persist dataset: %w", err)
	}
	u.data = staged
	u.last = &stats

	u.metrics.RecordImport(source, "success", u.clock().Sub(start))
	u.metrics.RecordRows("added", stats.Added)
	u.metrics.RecordRows("merged", stats.Merged)
	u.metrics.RecordRows("replaced", stats.Replaced)
	u.metrics.RecordRows("skipped_no_data", stats.SkippedNoData)
	u.metrics.RecordRows("skipped_no_headword", stats.SkippedNoHeadword)
	u.metrics.SetDatasetWords(stats.TotalAfter)

	u.logger.WithFields(logrus.Fields{
		"source":       source,
		"added":        stats.Added,
		"merged":       stats.Merged,
		"replaced":     stats.Replaced,
		"skipped":      stats.Skipped(),
		"total_before": stats.TotalBefore,
		"total_after":  stats.TotalAfter,
	}).Info("dataset import finished")
	return &ImportResult{Stats: stats}, nil
}

func (u *datasetUsecase) resolve(opts ImportOptions) ingest.ImportOptions {
	out := u.defaults
	out.Normalize.DefaultThemes = append([]string(nil), u.defaults.Normalize.DefaultThemes...)
	if opts.OverrideExamples != nil {
		out.OverrideExamples = *opts.OverrideExamples
	}
	out.Replace = opts.Replace
	return out
}

func (u *datasetUsecase) List(ctx context.Context, query *repository.ListWordQuery) ([]*entity.Word, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if query == nil {
		query = &repository.ListWordQuery{}
	}
	filter, err := bindWordFilter(query)
	if err != nil {
		return nil, 0, err
	}

	u.mu.Lock()
	words := u.data.All()
	u.mu.Unlock()

	matched := lo.Filter(words, func(w *entity.Word, _ int) bool { return filter.matches(w) })
	filter.sort(matched)

	total := int64(len(matched))
	if query.PageSize > 0 {
		offset := int(max(query.Offset(), 0))
		if offset >= len(matched) {
			return []*entity.Word{}, total, nil
		}
		end := min(offset+int(query.PageSize), len(matched))
		matched = matched[offset:end]
	}
	return matched, total, nil
}

func (u *datasetUsecase) Get(ctx context.Context, id int64) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, entity.ErrInvalidWordID
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	w, ok := u.data.Get(id)
	if !ok {
		return nil, entity.ErrWordNotFound
	}
	return w, nil
}

// Snapshot returns a deep copy of every word ordered by id.
func (u *datasetUsecase) Snapshot(_ context.Context) []*entity.Word {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.data.All()
}

// Reset empties the dataset in memory and in storage, and restarts id allocation.
func (u *datasetUsecase) Reset(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.repo.ReplaceAll(ctx, nil); err != nil {
		return fmt.Errorf("reset dataset: %w", err)
	}
	u.data.Reset()
	u.last = nil
	u.metrics.SetDatasetWords(0)
	u.logger.Info("dataset reset")
	return nil
}

func (u *datasetUsecase) LastStats() *entity.MergeStats {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.last == nil {
		return nil
	}
	stats := *u.last
	stats.TagsAdded = make(map[string]int, len(u.last.TagsAdded))
	for k, v := range u.last.TagsAdded {
		stats.TagsAdded[k] = v
	}
	return &stats
}

// decodeText tries a JSON array of objects first and falls back to delimited text.
func decodeText(text string, mode rowparser.Mode) ([]ingest.RawRow, []string, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	if trimmed == "" {
		return nil, nil, entity.ErrEmptyBody
	}
	if strings.HasPrefix(trimmed, "[") {
		if rows, err := decodeJSONRows(trimmed); err == nil {
			if len(rows) == 0 {
				return nil, nil, entity.ErrNoDataRows
			}
			return rows, nil, nil
		}
	}

	if mode == "" {
		mode = rowparser.DetectMode(text)
	}
	parsed, err := rowparser.Parse(text, mode)
	if err != nil {
		return nil, nil, err
	}
	if len(parsed.Rows) == 0 {
		return nil, parsed.Warnings, entity.ErrNoDataRows
	}
	rows := lo.Map(parsed.Rows, func(r rowparser.Row, _ int) ingest.RawRow {
		row := make(ingest.RawRow, len(r))
		for k, v := range r {
			row[k] = v
		}
		return row
	})
	return rows, parsed.Warnings, nil
}

func decodeJSONRows(text string) ([]ingest.RawRow, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON array")
	}
	return lo.Map(rows, func(r map[string]any, _ int) ingest.RawRow { return ingest.RawRow(r) }), nil
}
