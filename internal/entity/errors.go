package entity

import (
	"errors"
	"fmt"
)

// Domain errors for the vocabulary dataset and its collaborators.
var (
	ErrWordNotFound      = errors.New("word not found")
	ErrInvalidWordID     = errors.New("invalid word ID")
	ErrNoDataRows        = errors.New("CSV has no data rows")
	ErrEmptyBody         = errors.New("CSV response body is empty")
	ErrNoSource          = errors.New("no dataset source configured")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrFavoriteNotFound  = errors.New("favorite not found")
	ErrInvalidQuizRecord = errors.New("invalid quiz record")
	ErrDuplicateRecord   = errors.New("record already exists")
)

// FetchError reports a non-2xx response from the sheet endpoint.
type FetchError struct {
	StatusCode int
	StatusText string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Failed to fetch CSV: %d %s", e.StatusCode, e.StatusText)
}
