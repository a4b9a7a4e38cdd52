package validators

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		name      string
		target    string
		page      int
		limit     int
		wantError bool
	}{
		{name: "defaults", target: "/products", page: 1, limit: 20},
		{name: "explicit", target: "/products?page=3&limit=50", page: 3, limit: 50},
		{name: "whitespace", target: "/products?page=%202%20", page: 2, limit: 20},
		{name: "zero page", target: "/products?page=0", wantError: true},
		{name: "limit too big", target: "/products?limit=101", wantError: true},
		{name: "not numeric", target: "/products?limit=ten", wantError: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit, err := ParsePage(httptest.NewRequest("GET", tc.target, nil))
			if tc.wantError {
				require.Error(t, err)
				assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.page, page)
			assert.Equal(t, tc.limit, limit)
		})
	}
}

func TestParseQueryIntRangeDetails(t *testing.T) {
	_, err := ParseQueryInt(httptest.NewRequest("GET", "/x?limit=99", nil), "limit", 8, 1, 50)
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, map[string]any{"field": "limit", "min": 1, "max": 50}, typed.Details())
}

func TestQueryStringSanitizes(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?search=%20mawar%00merah%20", nil)
	assert.Equal(t, "mawarmerah", QueryString(r, "search", 100))
}
