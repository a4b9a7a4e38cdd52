package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
)

const (
	maxPage         = 1000
	defaultPageSize = 20
	maxPageSize     = 100
)

// ParseQueryInt reads an optional integer query parameter bounded to [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, invalidQuery(key, "query parameter must be numeric", nil)
	case value < min || value > max:
		return 0, invalidQuery(key, "query parameter out of range", map[string]any{"min": min, "max": max})
	}
	return value, nil
}

// ParsePage reads page (1-based) and limit with the listing defaults.
func ParsePage(r *http.Request) (page, limit int, err error) {
	if page, err = ParseQueryInt(r, "page", 1, 1, maxPage); err != nil {
		return 0, 0, err
	}
	if limit, err = ParseQueryInt(r, "limit", defaultPageSize, 1, maxPageSize); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// QueryString returns a sanitized query parameter capped at maxLen bytes.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}

func invalidQuery(key, msg string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}
