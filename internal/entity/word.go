package entity

import (
	"encoding/json"
	"strings"
)

// MaxExampleSlots is the number of numbered example sentence slots a word carries.
const MaxExampleSlots = 5

// Stage is the academic level partition a word is tracked under.
type Stage string

const (
	StageUnknown Stage = ""
	StageJunior  Stage = "junior"
	StageSenior  Stage = "senior"
)

// ParseStage normalizes Chinese and English stage labels. Anything unrecognized is StageUnknown.
func ParseStage(raw string) Stage {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "junior", "國中":
		return StageJunior
	case "senior", "高中":
		return StageSenior
	default:
		return StageUnknown
	}
}

// Known reports whether the stage is junior or senior.
func (s Stage) Known() bool { return s == StageJunior || s == StageSenior }

// MarshalJSON renders the unknown stage as null.
func (s Stage) MarshalJSON() ([]byte, error) {
	if !s.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts null, English and Chinese stage labels.
func (s *Stage) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = StageUnknown
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStage(raw)
	return nil
}

// Word is the normalized vocabulary record.
type Word struct {
	ID          int64          `json:"id"`
	Headword    string         `json:"headword"`     // lowercase lookup text
	DisplayForm string         `json:"display_form"` // original casing
	Definition  string         `json:"definition"`
	POSTags     []PartOfSpeech `json:"pos_tags"`
	Stage       Stage          `json:"stage"`
	Level       string         `json:"level,omitempty"`

	Theme      string         `json:"theme,omitempty"` // primary label
	Themes     []string       `json:"themes"`
	ThemeOrder map[string]int `json:"theme_order"`

	KKPhonetic                string `json:"kk_phonetic,omitempty"`
	GrammarMainCategory       string `json:"grammar_main_category,omitempty"`
	GrammarSubCategory        string `json:"grammar_sub_category,omitempty"`
	GrammarFunction           string `json:"grammar_function,omitempty"`
	ApplicableSentencePattern string `json:"applicable_sentence_pattern,omitempty"`

	TextbookIndex []TextbookRef                    `json:"textbook_index,omitempty"`
	ExamTags      []string                         `json:"exam_tags,omitempty"`
	ThemeIndex    []ThemeIndexEntry                `json:"theme_index,omitempty"`
	Synonyms      []string                         `json:"synonyms,omitempty"`
	Antonyms      []string                         `json:"antonyms,omitempty"`
	Confusables   []string                         `json:"confusables,omitempty"`
	Derivatives   []string                         `json:"derivatives,omitempty"`
	Phrases       []string                         `json:"phrases,omitempty"`
	Examples      [MaxExampleSlots]ExampleSentence `json:"examples"`

	WordForms       string     `json:"word_forms,omitempty"`
	WordFormsDetail WordForms  `json:"word_forms_detail"`
	Affix           *AffixInfo `json:"affix_info,omitempty"`
	VideoURL        string     `json:"video_url,omitempty"`
}

// Key returns the composite identity of the word.
func (w *Word) Key() WordKey {
	return WordKey{Headword: NormalizeWordToken(w.Headword), Stage: w.Stage}
}

// PrimaryPOS returns the first tag, or PosOther when the word carries none.
func (w *Word) PrimaryPOS() PartOfSpeech {
	if len(w.POSTags) == 0 {
		return PosOther
	}
	return w.POSTags[0]
}

// Clone returns a deep copy.
func (w *Word) Clone() *Word {
	if w == nil {
		return nil
	}
	out := *w
	out.POSTags = append([]PartOfSpeech(nil), w.POSTags...)
	out.Themes = append([]string(nil), w.Themes...)
	if w.ThemeOrder != nil {
		out.ThemeOrder = make(map[string]int, len(w.ThemeOrder))
		for k, v := range w.ThemeOrder {
			out.ThemeOrder[k] = v
		}
	}
	out.TextbookIndex = append([]TextbookRef(nil), w.TextbookIndex...)
	out.ExamTags = append([]string(nil), w.ExamTags...)
	out.ThemeIndex = append([]ThemeIndexEntry(nil), w.ThemeIndex...)
	out.Synonyms = append([]string(nil), w.Synonyms...)
	out.Antonyms = append([]string(nil), w.Antonyms...)
	out.Confusables = append([]string(nil), w.Confusables...)
	out.Derivatives = append([]string(nil), w.Derivatives...)
	out.Phrases = append([]string(nil), w.Phrases...)
	out.WordFormsDetail = w.WordFormsDetail.Clone()
	if w.Affix != nil {
		affix := *w.Affix
		out.Affix = &affix
	}
	return &out
}

// WordKey is the (headword, stage) composite identity.
type WordKey struct {
	Headword string
	Stage    Stage
}

// TextbookRef locates a word in a textbook edition.
type TextbookRef struct {
	Version string `json:"version"`
	Volume  string `json:"volume"`
	Lesson  string `json:"lesson"`
}

// String renders the ref in its spreadsheet form, version-volume-lesson.
func (t TextbookRef) String() string {
	return t.Version + "-" + t.Volume + "-" + t.Lesson
}

// ThemeIndexEntry is a junior-stage theme listing position.
type ThemeIndexEntry struct {
	Range string `json:"range"`
	Theme string `json:"theme"`
}

// ExampleSentence is one numbered example slot.
type ExampleSentence struct {
	Sentence    string `json:"sentence,omitempty"`
	Translation string `json:"translation,omitempty"`
}

// IsEmpty reports whether both halves are blank.
func (e ExampleSentence) IsEmpty() bool {
	return strings.TrimSpace(e.Sentence) == "" && strings.TrimSpace(e.Translation) == ""
}

// WordForms buckets inflected and related forms.
type WordForms struct {
	Base       []string `json:"base"`
	Idiom      []string `json:"idiom"`
	Compound   []string `json:"compound"`
	Derivation []string `json:"derivation"`
}

// Clone returns a deep copy.
func (f WordForms) Clone() WordForms {
	return WordForms{
		Base:       append([]string(nil), f.Base...),
		Idiom:      append([]string(nil), f.Idiom...),
		Compound:   append([]string(nil), f.Compound...),
		Derivation: append([]string(nil), f.Derivation...),
	}
}

// Len counts forms across all buckets.
func (f WordForms) Len() int {
	return len(f.Base) + len(f.Idiom) + len(f.Compound) + len(f.Derivation)
}

// AffixInfo describes the morphology of a word.
type AffixInfo struct {
	Prefix  string `json:"prefix,omitempty"`
	Root    string `json:"root,omitempty"`
	Suffix  string `json:"suffix,omitempty"`
	Meaning string `json:"meaning,omitempty"`
	Example string `json:"example,omitempty"`
}

// IsEmpty reports whether every sub-field is blank.
func (a *AffixInfo) IsEmpty() bool {
	return a == nil || (a.Prefix == "" && a.Root == "" && a.Suffix == "" && a.Meaning == "" && a.Example == "")
}

// WordFilter defines filtering options when listing vocabulary entries.
type WordFilter struct {
	Keyword         string
	Words           []string
	Stage           *string
	Theme           string
	POS             []string
	Exam            string
	TextbookVersion string
	Level           string
	MinID           *int64
	MaxID           *int64
	IDs             []int64

	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}
