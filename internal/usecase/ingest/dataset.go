package ingest

import (
	"sort"

	"github.com/eslsoft/wordgym/internal/entity"
)

// Dataset is the in-memory word collection. It performs no I/O and no locking.
type Dataset struct {
	words map[int64]*entity.Word
	keys  map[entity.WordKey]int64
	order *ThemeOrder

	// highWater is the largest id ever handed out since the last Reset.
	highWater int64

	skippedNoData     int
	skippedNoHeadword int
}

func NewDataset() *Dataset {
	return &Dataset{
		words: make(map[int64]*entity.Word),
		keys:  make(map[entity.WordKey]int64),
		order: NewThemeOrder(),
	}
}

// ImportRows normalizes and merges rows into the dataset. Malformed rows are counted, never
// reported as errors.
func (d *Dataset) ImportRows(rows []RawRow, opts ImportOptions) entity.MergeStats {
	stats := entity.MergeStats{
		TagsAdded:   make(map[string]int),
		TotalBefore: len(d.words),
	}

	if opts.Replace {
		stats.Replaced = len(d.words)
		d.words = make(map[int64]*entity.Word)
		d.keys = make(map[entity.WordKey]int64)
		d.order.Reset()
	}

	for _, row := range rows {
		if isEmptyRow(row) {
			stats.SkippedNoData++
			continue
		}
		candidate, ok := Normalize(row, opts.Normalize)
		if !ok {
			stats.SkippedNoHeadword++
			continue
		}

		if id, found := d.keys[candidate.Key()]; found {
			d.mergeInto(d.words[id], candidate, opts, &stats)
			stats.Merged++
			continue
		}
		d.insert(candidate)
		stats.Added++
	}

	d.skippedNoData += stats.SkippedNoData
	d.skippedNoHeadword += stats.SkippedNoHeadword
	stats.TotalAfter = len(d.words)
	return stats
}

func (d *Dataset) insert(w *entity.Word) {
	w.ID = d.nextID()
	d.order.Stamp(w, w.Themes)
	d.words[w.ID] = w
	d.keys[w.Key()] = w.ID
}

func (d *Dataset) nextID() int64 {
	next := d.highWater
	for id := range d.words {
		if id > next {
			next = id
		}
	}
	next++
	d.highWater = next
	return next
}

// Load installs previously persisted words, keeping their ids and theme stamps. Records sharing
// a composite key collapse into the first one by id.
func (d *Dataset) Load(words []*entity.Word) {
	d.words = make(map[int64]*entity.Word, len(words))
	d.keys = make(map[entity.WordKey]int64, len(words))
	d.order.Reset()

	sorted := make([]*entity.Word, 0, len(words))
	for _, w := range words {
		if w != nil && w.ID > 0 {
			sorted = append(sorted, w.Clone())
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, w := range sorted {
		if _, dup := d.keys[w.Key()]; dup {
			continue
		}
		if _, dup := d.words[w.ID]; dup {
			continue
		}
		d.words[w.ID] = w
		d.keys[w.Key()] = w.ID
		if w.ID > d.highWater {
			d.highWater = w.ID
		}
		d.order.Seed(w)
	}
}

// Clone returns an independent copy, so a caller can stage an import and discard it on failure.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		words:             make(map[int64]*entity.Word, len(d.words)),
		keys:              make(map[entity.WordKey]int64, len(d.keys)),
		order:             d.order.Clone(),
		highWater:         d.highWater,
		skippedNoData:     d.skippedNoData,
		skippedNoHeadword: d.skippedNoHeadword,
	}
	for id, w := range d.words {
		out.words[id] = w.Clone()
	}
	for k, id := range d.keys {
		out.keys[k] = id
	}
	return out
}

// Reset clears records, theme counters and the id high-water mark.
func (d *Dataset) Reset() {
	d.words = make(map[int64]*entity.Word)
	d.keys = make(map[entity.WordKey]int64)
	d.order.Reset()
	d.highWater = 0
}

// All returns a deep-copied snapshot ordered by id.
func (d *Dataset) All() []*entity.Word {
	out := make([]*entity.Word, 0, len(d.words))
	for _, w := range d.words {
		out = append(out, w.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *Dataset) Get(id int64) (*entity.Word, bool) {
	w, ok := d.words[id]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// Lookup finds a word by headword and stage.
func (d *Dataset) Lookup(headword string, stage entity.Stage) (*entity.Word, bool) {
	id, ok := d.keys[entity.WordKey{Headword: entity.NormalizeWordToken(headword), Stage: stage}]
	if !ok {
		return nil, false
	}
	return d.Get(id)
}

func (d *Dataset) Len() int { return len(d.words) }

// Skipped returns the cumulative number of rows dropped for lacking data or a headword.
func (d *Dataset) Skipped() (noData, noHeadword int) {
	return d.skippedNoData, d.skippedNoHeadword
}
