package entity

import "time"

// Favorite marks a word the learner starred.
type Favorite struct {
	WordID    int64     `json:"word_id"`
	CreatedAt time.Time `json:"created_at"`
}
