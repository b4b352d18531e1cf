package ingest

import (
	"strings"

	"github.com/samber/lo"
)

// MultiSplit splits on any of , ; ， 、 / and line breaks, trims each token and drops empties.
func MultiSplit(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', ';', '，', '、', '/', '\n', '\r':
			return true
		}
		return false
	})
	return trimAll(parts)
}

func splitOn(s string, seps ...rune) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return lo.Contains(seps, r)
	})
	return trimAll(parts)
}

// uniqueFold keeps the first spelling of each case-insensitively distinct token.
func uniqueFold(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return lo.UniqBy(trimAll(in), strings.ToLower)
}

// unionFold appends the tokens of extra that dst does not already hold.
func unionFold(dst []string, extra []string) []string {
	return uniqueFold(append(append([]string(nil), dst...), extra...))
}

func unionExact[T comparable](dst []T, extra []T) []T {
	for _, item := range extra {
		if !lo.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}
