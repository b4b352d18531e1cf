package backup

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"entgo.io/ent/dialect/sql/schema"
	"github.com/samber/lo"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/database/migrate"
	"github.com/eslsoft/wordgym/internal/repository"
)

const (
	defaultBatchSize = 512
	formatVersion    = 1
	metaType         = "meta"

	// maxRecordBytes bounds a single JSONL line on restore.
	maxRecordBytes = 16 << 20
)

// Table names as they appear in backup records.
const (
	TableWords       = "words"
	TableFavorites   = "favorites"
	TableQuizRecords = "quiz_records"
)

var errNoTablesSelected = errors.New("backup: no tables selected")

type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

// Service streams the persisted dataset, favorites and quiz history to and from JSON lines.
type Service struct {
	words     repository.WordRepository
	favorites repository.FavoriteRepository
	quizzes   repository.QuizRecordRepository

	batchSize  int
	tables     []string
	schemaHash string
	clock      func() time.Time
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service over the given repositories.
func NewService(words repository.WordRepository, favorites repository.FavoriteRepository, quizzes repository.QuizRecordRepository, opts ...Option) (*Service, error) {
	if words == nil || favorites == nil || quizzes == nil {
		return nil, errors.New("backup: repositories are required")
	}
	tables, err := schema.CopyTables(migrate.Tables)
	if err != nil {
		return nil, fmt.Errorf("copy ent schema tables: %w", err)
	}
	slices.SortFunc(tables, func(a, b *schema.Table) int { return strings.Compare(a.Name, b.Name) })

	svc := &Service{
		words:      words,
		favorites:  favorites,
		quizzes:    quizzes,
		batchSize:  defaultBatchSize,
		tables:     lo.Map(tables, func(t *schema.Table, _ int) string { return t.Name }),
		schemaHash: schemaHash(tables),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithTables restricts export to the provided table names.
func WithTables(tables []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(tables) > 0 {
			cfg.tables = slices.Clone(tables)
		}
	}
}

func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables []string
}

// WithImportTables restricts import to the provided table names.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		if len(tables) > 0 {
			cfg.tables = slices.Clone(tables)
		}
	}
}

type record struct {
	Type          string         `json:"type"`
	Version       int            `json:"version,omitempty"`
	ExportedAt    *time.Time     `json:"exported_at,omitempty"`
	EntSchemaHash string         `json:"ent_schema_hash,omitempty"`
	Tables        []string       `json:"tables,omitempty"`
	RowCounts     map[string]int `json:"row_counts,omitempty"`
	Payload       any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type          string          `json:"type"`
	Version       int             `json:"version"`
	ExportedAt    *time.Time      `json:"exported_at"`
	EntSchemaHash string          `json:"ent_schema_hash"`
	Tables        []string        `json:"tables"`
	RowCounts     map[string]int  `json:"row_counts"`
	Payload       json.RawMessage `json:"payload"`
}

// tableRows moves one table between its repository and backup records.
type tableRows interface {
	dump(ctx context.Context) ([]any, error)
	add(payload json.RawMessage) error
	size() int
	restore(ctx context.Context) error
}

// rowsOf adapts a repository whose rows are of type T. Decoded rows collect in pending until
// restore.
type rowsOf[T any] struct {
	load    func(context.Context) ([]T, error)
	save    func(context.Context, []T) error
	pending []T
}

func (r *rowsOf[T]) dump(ctx context.Context) ([]any, error) {
	rows, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return lo.ToAnySlice(rows), nil
}

func (r *rowsOf[T]) add(payload json.RawMessage) error {
	var row T
	if err := json.Unmarshal(payload, &row); err != nil {
		return err
	}
	r.pending = append(r.pending, row)
	return nil
}

func (r *rowsOf[T]) size() int { return len(r.pending) }

func (r *rowsOf[T]) restore(ctx context.Context) error { return r.save(ctx, r.pending) }

// bind returns fresh adapters for every known table.
func (s *Service) bind() map[string]tableRows {
	return map[string]tableRows{
		TableWords: &rowsOf[*entity.Word]{
			load: s.words.LoadAll,
			save: s.words.ReplaceAll,
		},
		TableFavorites: &rowsOf[entity.Favorite]{
			load: s.favorites.List,
			save: s.favorites.ReplaceAll,
		},
		TableQuizRecords: &rowsOf[entity.QuizRecord]{
			load: func(ctx context.Context) ([]entity.QuizRecord, error) {
				records, _, err := s.quizzes.List(ctx, &repository.ListQuizRecordQuery{
					FilterOrder: repository.FilterOrder{OrderBy: "taken_at asc"},
				})
				return records, err
			},
			save: s.quizzes.ReplaceAll,
		},
	}
}

// Export writes a meta record followed by one record per row, table by table in name order.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{reporter: noopProgress{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.reporter == nil {
		cfg.reporter = noopProgress{}
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}

	adapters := s.bind()
	rows := make(map[string][]any, len(tables))
	counts := make(map[string]int, len(tables))
	for _, name := range tables {
		if rows[name], err = adapters[name].dump(ctx); err != nil {
			return fmt.Errorf("read table %s: %w", name, err)
		}
		counts[name] = len(rows[name])
	}

	bw := bufio.NewWriter(w)
	now := s.clock().UTC()
	if err := writeRecord(bw, record{
		Type:          metaType,
		Version:       formatVersion,
		ExportedAt:    &now,
		EntSchemaHash: s.schemaHash,
		Tables:        tables,
		RowCounts:     counts,
	}); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	for _, name := range tables {
		cfg.reporter.StartTable(name, counts[name])
		for _, batch := range lo.Chunk(rows[name], s.batchSize) {
			for _, row := range batch {
				if err := writeRecord(bw, record{Type: name, Payload: row}); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
			}
			if err := bw.Flush(); err != nil {
				return fmt.Errorf("flush %s: %w", name, err)
			}
			cfg.reporter.Increment(name, len(batch))
		}
		cfg.reporter.FinishTable(name)
	}
	return bw.Flush()
}

// Import replaces every selected table that the backup lists in its meta record. Tables the
// backup does not carry are left untouched.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) error {
	var cfg importConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}

	adapters := s.bind()
	var meta *rawRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec rawRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		if rec.Type == metaType {
			meta = &rec
			continue
		}
		if !slices.Contains(tables, rec.Type) {
			continue
		}
		if len(rec.Payload) == 0 {
			return fmt.Errorf("backup: missing payload for table %s", rec.Type)
		}
		if err := adapters[rec.Type].add(rec.Payload); err != nil {
			return fmt.Errorf("decode payload for %s: %w", rec.Type, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	if meta == nil {
		return errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}

	for _, name := range tables {
		if !slices.Contains(meta.Tables, name) {
			continue
		}
		got := adapters[name].size()
		if want, ok := meta.RowCounts[name]; ok && want != got {
			return fmt.Errorf("backup: table %s has %d rows, meta declares %d", name, got, want)
		}
		if err := adapters[name].restore(ctx); err != nil {
			return fmt.Errorf("restore table %s: %w", name, err)
		}
	}
	return nil
}

// selectTables validates requested names and returns them in name order. No request selects
// every table.
func (s *Service) selectTables(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return slices.Clone(s.tables), nil
	}
	var out []string
	for _, raw := range requested {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if !slices.Contains(s.tables, name) {
			return nil, fmt.Errorf("backup: unsupported table %q", raw)
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, errNoTablesSelected
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// schemaHash fingerprints table layouts so a restore can be traced to the schema that wrote it.
func schemaHash(tables []*schema.Table) string {
	colName := func(c *schema.Column, _ int) string { return c.Name }
	h := sha256.New()
	for _, t := range tables {
		cols := lo.Map(t.Columns, func(c *schema.Column, _ int) string {
			return fmt.Sprintf("%s:%d:%t:%t", c.Name, c.Type, c.Nullable, c.Unique)
		})
		slices.Sort(cols)
		indexes := lo.Map(t.Indexes, func(idx *schema.Index, _ int) string {
			return fmt.Sprintf("%s:%t:%s", idx.Name, idx.Unique, strings.Join(lo.Map(idx.Columns, colName), ","))
		})
		slices.Sort(indexes)
		fmt.Fprintf(h, "%s|cols:%s|pk:%s|idx:%s\n", t.Name,
			strings.Join(cols, ";"),
			strings.Join(lo.Map(t.PrimaryKey, colName), ","),
			strings.Join(indexes, ";"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
