package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct renders v through its JSON encoding. v must encode to a JSON object.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("convert payload: %w", err)
	}
	return out, nil
}

// Decode fills dst from the JSON form of s. A nil struct leaves dst untouched. Numbers landing in
// untyped fields decode as json.Number.
func Decode(s *structpb.Struct, dst any) error {
	if s == nil {
		return nil
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("read request: %w", err))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("decode request: %w", err))
	}
	return nil
}
