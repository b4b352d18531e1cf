package mapping

import (
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/usecase"
	"github.com/eslsoft/wordgym/internal/usecase/ingest"
	"github.com/eslsoft/wordgym/pkg/rowparser"
)

// ImportRequest covers ImportRows, ImportText and Refresh. Each procedure reads the fields it needs.
type ImportRequest struct {
	Rows             []ingest.RawRow `json:"rows"`
	Text             string          `json:"text"`
	Mode             string          `json:"mode"`
	ForceRefresh     bool            `json:"force_refresh"`
	OverrideExamples *bool           `json:"override_examples"`
	Replace          bool            `json:"replace"`
}

// Options converts the request into per-call import options.
func (r *ImportRequest) Options() usecase.ImportOptions {
	opts := usecase.ImportOptions{
		OverrideExamples: r.OverrideExamples,
		Replace:          r.Replace,
	}
	if mode := strings.TrimSpace(r.Mode); mode != "" {
		opts.Mode = rowparser.ModeFromFormat(mode)
	}
	return opts
}

type importResponse struct {
	Stats     entity.MergeStats `json:"stats"`
	Warnings  []string          `json:"warnings"`
	FromCache bool              `json:"from_cache"`
}

func ToImportResult(res *usecase.ImportResult) (*structpb.Struct, error) {
	out := importResponse{Warnings: []string{}}
	if res != nil {
		out.Stats = res.Stats
		out.FromCache = res.FromCache
		if len(res.Warnings) > 0 {
			out.Warnings = res.Warnings
		}
	}
	if out.Stats.TagsAdded == nil {
		out.Stats.TagsAdded = map[string]int{}
	}
	return ToStruct(out)
}

// IDRequest addresses a single word.
type IDRequest struct {
	ID int64 `json:"id"`
}

// PageRequest mirrors the pagination block of list requests.
type PageRequest struct {
	PageNo   int64 `json:"page_no"`
	PageSize int64 `json:"page_size"`
}

type ListRequest struct {
	Filter     string       `json:"filter"`
	OrderBy    string       `json:"order_by"`
	Pagination *PageRequest `json:"pagination"`
}

type pageResponse struct {
	PageNo   int32 `json:"page_no"`
	PageSize int32 `json:"page_size"`
	Total    int64 `json:"total"`
}

type listResponse[T any] struct {
	Items      []T          `json:"items"`
	Pagination pageResponse `json:"pagination"`
}

// ToList renders a page of items with its pagination block.
func ToList[T any](items []T, pageNo, pageSize int32, total int64) (*structpb.Struct, error) {
	if items == nil {
		items = []T{}
	}
	return ToStruct(listResponse[T]{
		Items:      items,
		Pagination: pageResponse{PageNo: pageNo, PageSize: pageSize, Total: total},
	})
}

func ToWord(w *entity.Word) (*structpb.Struct, error) {
	return ToStruct(w)
}
