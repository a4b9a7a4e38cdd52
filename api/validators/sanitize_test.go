package validators

import "testing"

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"trims", "  roses  ", 0, "roses"},
		{"drops control chars", "ro\x00ses\n", 0, "roses"},
		{"caps length", "peonies", 3, "peo"},
		{"keeps runes whole", "mawar é", 7, "mawar "},
		{"no cap", "lilies", -1, "lilies"},
	}
	for _, tc := range tests {
		if got := SanitizeString(tc.input, tc.maxLen); got != tc.want {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.want, got)
		}
	}
}
