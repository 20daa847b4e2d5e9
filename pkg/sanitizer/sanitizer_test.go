package sanitizer

import (
	"reflect"
	"testing"
)

func TestSanitizeCity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spaces become underscores",
			input: "Tel Aviv",
			want:  "tel_aviv",
		},
		{
			name:  "hyphens become underscores",
			input: "Tel-Aviv",
			want:  "tel_aviv",
		},
		{
			name:  "trim and lowercase",
			input: "  NEW YORK  ",
			want:  "new_york",
		},
		{
			name:  "digits stripped",
			input: "Paris 75000",
			want:  "paris",
		},
		{
			name:  "idempotent",
			input: "tel_aviv",
			want:  "tel_aviv",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "---",
			want:  "",
		},
		{
			name:  "hebrew characters",
			input: " תל אביב ",
			want:  "תל_אביב",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeCity(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeCity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameOrAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "street address keeps digits",
			input: "12 Main St.",
			want:  "12_main_st",
		},
		{
			name:  "collapse repeated separators",
			input: "Herzl  --  5",
			want:  "herzl_5",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNameOrAddress(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeNameOrAddress(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "deduplicates after normalization",
			input: []string{"Tel Aviv", "tel-aviv", "TEL AVIV"},
			want:  []string{"tel_aviv"},
		},
		{
			name:  "drops empties",
			input: []string{"", "  ", "Paris"},
			want:  []string{"paris"},
		},
		{
			name:  "preserves order",
			input: []string{"Berlin", "Amsterdam", "Berlin"},
			want:  []string{"berlin", "amsterdam"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSlice(tt.input, SanitizeCity)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SanitizeSlice(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	if got := NormalizeCurrency(" usd "); got != "USD" {
		t.Errorf("NormalizeCurrency(\" usd \") = %q, want %q", got, "USD")
	}
}

func TestClampWeight(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		want   float64
	}{
		{"below min", -1, 0},
		{"above max", 150, 100},
		{"in range", 42.5, 42.5},
		{"at max", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampWeight(tt.weight, 0, 100)
			if got != tt.want {
				t.Errorf("ClampWeight(%v, 0, 100) = %v, want %v", tt.weight, got, tt.want)
			}
		})
	}
}
