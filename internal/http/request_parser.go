package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// parseListOptions reads skip, limit, and category_id query parameters.
// Absent limit defaults to 100; limit=0 is rejected rather than unbounded.
func parseListOptions(r *http.Request) (store.ListOptions, error) {
	opts := store.ListOptions{Limit: defaultListLimit}
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return opts, fmt.Errorf("invalid skip %q", raw)
		}
		opts.Skip = skip
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			return opts, fmt.Errorf("invalid limit %q: must be 1-%d", raw, maxListLimit)
		}
		opts.Limit = limit
	}
	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return opts, fmt.Errorf("invalid category_id %q", raw)
		}
		opts.CategoryID = &id
	}
	return opts, nil
}

// parseKeywords splits a comma-separated keyword string, dropping blanks.
func parseKeywords(raw string) []string {
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
