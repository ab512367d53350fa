package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/yamdb/internal/common"
)

const defaultPageSize = 5

// pageReply is one page of a list endpoint. Next and Previous are links to
// the neighbouring pages, null at the ends.
type pageReply[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

var errInvalidPage = fmt.Errorf("%w: %s", common.ErrorNotFound, msgInvalidPage)

// paginate slices items by the "page" query parameter (1-based). An empty
// list still has a first page.
func paginate[T any](r *http.Request, items []T, size int) (*pageReply[T], error) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, errInvalidPage
		}
		page = n
	}

	pages := (len(items) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page > pages {
		return nil, errInvalidPage
	}

	lo := (page - 1) * size
	hi := min(lo+size, len(items))

	out := &pageReply[T]{Count: len(items), Results: items[lo:hi]}
	if out.Results == nil {
		out.Results = []T{}
	}
	if page < pages {
		out.Next = pageLink(r, page+1)
	}
	if page > 1 {
		out.Previous = pageLink(r, page-1)
	}
	return out, nil
}

func pageLink(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	link := scheme + "://" + r.Host + u.RequestURI()
	return &link
}

// respondPage writes one page of items, converted with conv.
func respondPage[M any, T any](s *Server, w http.ResponseWriter, r *http.Request, items []M, conv func(M) T) {
	out := make([]T, 0, len(items))
	for _, m := range items {
		out = append(out, conv(m))
	}
	page, err := paginate(r, out, s.pageSize)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}
