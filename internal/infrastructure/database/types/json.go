package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores V as a JSON text column.
type JSON[V any] struct {
	V V
}

func NewJSON[V any](v V) JSON[V] { return JSON[V]{V: v} }

// Scan implements sql.Scanner
func (j *JSON[V]) Scan(src any) error {
	var zero V
	switch data := src.(type) {
	case nil:
		j.V = zero
		return nil
	case []byte:
		if len(data) == 0 {
			j.V = zero
			return nil
		}
		return json.Unmarshal(data, &j.V)
	case string:
		if data == "" {
			j.V = zero
			return nil
		}
		return json.Unmarshal([]byte(data), &j.V)
	default:
		return fmt.Errorf("json column: unsupported src type %T", src)
	}
}

// Value implements driver.Valuer. Values are sent as text so that both json and jsonb columns
// accept them.
func (j JSON[V]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
