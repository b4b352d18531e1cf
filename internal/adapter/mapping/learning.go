package mapping

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/eslsoft/wordgym/internal/entity"
)

type FavoriteRequest struct {
	WordID int64 `json:"word_id"`
}

func ToFavorite(f *entity.Favorite) (*structpb.Struct, error) {
	return ToStruct(f)
}

// FromQuizStruct reads a finished quiz. Any client supplied id is discarded.
func FromQuizStruct(s *structpb.Struct) (*entity.QuizRecord, error) {
	var rec entity.QuizRecord
	if err := Decode(s, &rec); err != nil {
		return nil, err
	}
	rec.ID = ""
	return &rec, nil
}

func ToQuizRecord(rec *entity.QuizRecord) (*structpb.Struct, error) {
	return ToStruct(rec)
}
