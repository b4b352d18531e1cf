package entity

// PartOfSpeech is a canonical part-of-speech tag.
type PartOfSpeech string

const (
	PosNoun        PartOfSpeech = "noun"
	PosVerb        PartOfSpeech = "verb"
	PosAdjective   PartOfSpeech = "adjective"
	PosAdverb      PartOfSpeech = "adverb"
	PosPreposition PartOfSpeech = "preposition"
	PosConjunction PartOfSpeech = "conjunction"
	PosPronoun     PartOfSpeech = "pronoun"
	PosOther       PartOfSpeech = "other"
)

// AllPartsOfSpeech lists the canonical tags in display order.
var AllPartsOfSpeech = []PartOfSpeech{
	PosNoun, PosVerb, PosAdjective, PosAdverb, PosPreposition, PosConjunction, PosPronoun, PosOther,
}

// IsReal reports whether the tag is anything but the fallback.
func (p PartOfSpeech) IsReal() bool { return p != "" && p != PosOther }
