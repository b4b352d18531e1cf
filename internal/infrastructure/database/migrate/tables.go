// Package migrate declares the relational schema and applies it with ent's migration engine.
package migrate

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// WordsColumns holds the columns for the "words" table. The full record lives in payload; the
	// remaining columns exist for uniqueness and inspection.
	WordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64},
		{Name: "headword", Type: field.TypeString, Size: 255},
		{Name: "stage", Type: field.TypeString, Size: 16, Default: ""},
		{Name: "definition", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "pos_tags", Type: field.TypeJSON},
		{Name: "payload", Type: field.TypeJSON},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// WordsTable holds the schema information for the "words" table.
	WordsTable = &schema.Table{
		Name:       "words",
		Columns:    WordsColumns,
		PrimaryKey: []*schema.Column{WordsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "words_headword_stage",
				Unique:  true,
				Columns: []*schema.Column{WordsColumns[1], WordsColumns[2]},
			},
		},
	}

	FavoritesColumns = []*schema.Column{
		{Name: "word_id", Type: field.TypeInt64},
		{Name: "created_at", Type: field.TypeTime},
	}
	FavoritesTable = &schema.Table{
		Name:       "favorites",
		Columns:    FavoritesColumns,
		PrimaryKey: []*schema.Column{FavoritesColumns[0]},
	}

	QuizRecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "mode", Type: field.TypeString, Size: 32},
		{Name: "stage", Type: field.TypeString, Size: 16, Default: ""},
		{Name: "total", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeInt},
		{Name: "wrong_word_ids", Type: field.TypeJSON},
		{Name: "taken_at", Type: field.TypeTime},
	}
	QuizRecordsTable = &schema.Table{
		Name:       "quiz_records",
		Columns:    QuizRecordsColumns,
		PrimaryKey: []*schema.Column{QuizRecordsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "quiz_records_taken_at",
				Columns: []*schema.Column{QuizRecordsColumns[6]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		WordsTable,
		FavoritesTable,
		QuizRecordsTable,
	}
)
