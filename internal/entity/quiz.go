package entity

import (
	"strings"
	"time"
)

// QuizRecord is one finished quiz in the learner's history.
type QuizRecord struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Stage        Stage     `json:"stage"`
	Total        int       `json:"total"`
	Correct      int       `json:"correct"`
	WrongWordIDs []int64   `json:"wrong_word_ids"`
	TakenAt      time.Time `json:"taken_at"`
}

// Normalize ensures defaults & constraints before persistence.
func (q *QuizRecord) Normalize(now time.Time) error {
	q.Mode = strings.TrimSpace(q.Mode)
	if q.Mode == "" {
		q.Mode = "choice"
	}
	if q.Total <= 0 || q.Correct < 0 || q.Correct > q.Total {
		return ErrInvalidQuizRecord
	}
	if q.TakenAt.IsZero() {
		q.TakenAt = now
	}
	if q.WrongWordIDs == nil {
		q.WrongWordIDs = []int64{}
	}
	return nil
}
