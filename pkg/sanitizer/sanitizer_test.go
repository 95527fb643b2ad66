package sanitizer

import (
	"slices"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Pista Central  ", want: "Pista Central"},
		{name: "multiple spaces between words", input: "Pista    3", want: "Pista 3"},
		{name: "tabs and newlines", input: "Pista\t\nCubierta", want: "Pista Cubierta"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Pádel & Tenis ", want: "Pádel & Tenis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jóvenes 18-25", "jóvenes_18_25"},
		{"  SENIOR  ", "senior"},
		{"--student--", "student"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeSegment(tt.input); got != tt.want {
			t.Errorf("SanitizeSegment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizePromoCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" summer-10 ", "SUMMER10"},
		{"welcome", "WELCOME"},
		{"***", ""},
	}

	for _, tt := range tests {
		if got := SanitizePromoCode(tt.input); got != tt.want {
			t.Errorf("SanitizePromoCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeIDs(t *testing.T) {
	got := SanitizeIDs([]string{" ABC ", "abc", "", "def"})
	want := []string{"abc", "def"}
	if !slices.Equal(got, want) {
		t.Errorf("SanitizeIDs() = %v, want %v", got, want)
	}

	if got := SanitizeIDs(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
