package ingest

import "github.com/eslsoft/wordgym/internal/entity"

// ThemeOrder hands out per-theme listing positions. A stamp, once on a record, never changes.
type ThemeOrder struct {
	next map[string]int
}

func NewThemeOrder() *ThemeOrder {
	return &ThemeOrder{next: make(map[string]int)}
}

// Stamp assigns the next position for every theme the word is not yet ordered under.
func (t *ThemeOrder) Stamp(w *entity.Word, themes []string) {
	if w.ThemeOrder == nil {
		w.ThemeOrder = make(map[string]int, len(themes))
	}
	for _, theme := range themes {
		if v, ok := w.ThemeOrder[theme]; ok {
			t.observe(theme, v)
			continue
		}
		w.ThemeOrder[theme] = t.next[theme]
		t.next[theme]++
	}
}

// Seed raises counters past every stamp already carried by words.
func (t *ThemeOrder) Seed(words ...*entity.Word) {
	for _, w := range words {
		for theme, v := range w.ThemeOrder {
			t.observe(theme, v)
		}
	}
}

// Next is the position the next new record in theme would receive.
func (t *ThemeOrder) Next(theme string) int { return t.next[theme] }

func (t *ThemeOrder) Reset() {
	t.next = make(map[string]int)
}

func (t *ThemeOrder) observe(theme string, v int) {
	if v+1 > t.next[theme] {
		t.next[theme] = v + 1
	}
}

// Clone returns an independent copy of the counters.
func (t *ThemeOrder) Clone() *ThemeOrder {
	out := &ThemeOrder{next: make(map[string]int, len(t.next))}
	for k, v := range t.next {
		out.next[k] = v
	}
	return out
}
