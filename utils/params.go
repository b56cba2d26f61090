package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const maxJSONBody = 1 << 20

// ListQuery carries the view filters a page accepts on its list endpoint.
type ListQuery struct {
	Search   string
	Category string
	Status   string
	Type     string
	Sort     string
	Desc     bool
	Limit    int
}

func ParseListQuery(r *http.Request) ListQuery {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 0 {
		limit = 0
	}

	return ListQuery{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Type:     q.Get("type"),
		Sort:     q.Get("sort"),
		Desc:     strings.EqualFold(q.Get("order"), "desc"),
		Limit:    limit,
	}
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// Truncate keeps the first limit items of list. A limit of zero keeps everything.
func Truncate[T any](list []T, limit int) []T {
	if limit <= 0 || len(list) <= limit {
		return list
	}
	return list[:limit]
}
