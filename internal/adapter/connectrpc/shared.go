package connectrpc

import (
	"net/http"

	"github.com/eslsoft/wordgym/internal/adapter/mapping"
	"github.com/eslsoft/wordgym/internal/repository"
)

const (
	_defaultPageSize = 20
	_maxPageSize     = 10000
)

// convertPagination normalizes a pagination block. An absent block disables paging.
func convertPagination(p *mapping.PageRequest) (repository.Pagination, error) {
	if p == nil {
		return repository.Pagination{}, nil
	}
	pageNo, err := safeInt32("page_no", p.PageNo)
	if err != nil {
		return repository.Pagination{}, err
	}
	pageSize, err := safeInt32("page_size", p.PageSize)
	if err != nil {
		return repository.Pagination{}, err
	}
	if pageNo <= 0 {
		pageNo = 1
	}
	if pageSize <= 0 {
		pageSize = _defaultPageSize
	}
	if pageSize > _maxPageSize {
		pageSize = _maxPageSize
	}

	return repository.Pagination{PageNo: pageNo, PageSize: pageSize}, nil
}

// procedures routes a service's requests by full procedure path.
type procedures map[string]http.Handler

func (p procedures) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := p[r.URL.Path]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}
