package strings

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string untouched", "abc", 10, "abc"},
		{"exact length untouched", "abcde", 5, "abcde"},
		{"long string cut with ellipsis", "abcdefghij", 8, "abcde..."},
		{"tiny maxLen clamped", "abcdefghij", 1, "a..."},
		{"empty string", "", 10, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Truncate(test.input, test.maxLen)
			if result != test.expected {
				t.Errorf("Truncate(%q, %d) = %q, expected %q", test.input, test.maxLen, result, test.expected)
			}
		})
	}
}

func TestTruncate_Unicode(t *testing.T) {
	result := Truncate("héllo wörld éxtra", 10)
	if result != "héllo w..." {
		t.Errorf("expected rune-safe truncation, got %q", result)
	}
}
