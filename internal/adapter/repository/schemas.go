package repository

import "github.com/eslsoft/wordgym/pkg/filterexpr"

var listQuizRecordsSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"stage": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Stage"},
		},
		"mode": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Mode"},
		},
		"taken_at": {
			Kind: filterexpr.KindTimestamp,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "TakenAfter",
				filterexpr.OpLTE: "TakenBefore",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		DefaultPrimary:     "taken_at",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		FallbackDesc:       true,
		Keys:               []string{"taken_at", "id", "correct"},
	},
}

// quizOrderColumns maps order keys to columns.
var quizOrderColumns = map[string]string{
	"taken_at": "taken_at",
	"id":       "id",
	"correct":  "correct",
}
