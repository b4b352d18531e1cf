package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

type orderTerm struct {
	key  string
	desc bool
}

// parseOrderBy returns the primary and secondary sort terms. A secondary equal to the primary is
// swapped for the first other schema key so results stay stable.
func parseOrderBy(raw string, schema OrderSchema) ([2]orderTerm, error) {
	var out [2]orderTerm
	if err := schema.validate(); err != nil {
		return out, err
	}
	terms, err := splitOrderTerms(raw, schema.Keys)
	if err != nil {
		return out, err
	}
	if len(terms) > len(out) {
		return out, errors.New("order_by supports at most two keys")
	}

	out[0] = orderTerm{key: schema.DefaultPrimary, desc: schema.DefaultPrimaryDesc}
	out[1] = orderTerm{key: schema.FallbackKey, desc: schema.FallbackDesc}
	copy(out[:], terms)

	if out[1].key == out[0].key {
		i := slices.IndexFunc(schema.Keys, func(k string) bool { return k != out[0].key })
		if i < 0 {
			return out, errors.New("order schema needs two distinct keys")
		}
		out[1] = orderTerm{key: schema.Keys[i]}
	}
	return out, nil
}

func (s OrderSchema) validate() error {
	for _, key := range []string{s.DefaultPrimary, s.FallbackKey} {
		if key == "" {
			return errors.New("order schema needs a default primary and a fallback key")
		}
		if !slices.Contains(s.Keys, key) {
			return fmt.Errorf("order key %q missing from schema keys", key)
		}
	}
	return nil
}

// splitOrderTerms parses "key [asc|desc], ..." and skips empty segments.
func splitOrderTerms(raw string, keys []string) ([]orderTerm, error) {
	var terms []orderTerm
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}

		term := orderTerm{key: parts[0]}
		if !slices.Contains(keys, term.key) {
			return nil, fmt.Errorf("field %q cannot be used for ordering", term.key)
		}
		if slices.ContainsFunc(terms, func(t orderTerm) bool { return t.key == term.key }) {
			return nil, fmt.Errorf("duplicate order key %q", term.key)
		}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				term.desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], term.key)
			}
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func bindOrder(dest reflect.Value, terms [2]orderTerm) error {
	values := []struct {
		name  string
		value any
	}{
		{"PrimaryKey", terms[0].key},
		{"PrimaryDesc", terms[0].desc},
		{"SecondaryKey", terms[1].key},
		{"SecondaryDesc", terms[1].desc},
	}
	for _, v := range values {
		field, err := settableField(dest, v.name)
		if err != nil {
			return err
		}
		if err := assign(field, v.value); err != nil {
			return fmt.Errorf("field %q: %w", v.name, err)
		}
	}
	return nil
}
