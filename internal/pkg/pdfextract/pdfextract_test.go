package pdfextract

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"hyphenated line break rejoined", "concur-\nrency", "concurrency"},
		{"hyphen break with trailing spaces", "data-  \n  base", "database"},
		{"blank lines collapsed", "first\n\n\n\nsecond", "first\nsecond"},
		{"space runs collapsed", "too   many\tspaces", "too many spaces"},
		{"surrounding whitespace trimmed", "  padded  \n", "padded"},
		{
			"combined artifacts",
			"intro-\nduction\n\n\nbody   text  ",
			"introduction\nbody text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractTextEmptyInput(t *testing.T) {
	text, err := ExtractText(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestExtractTextInvalidPDF(t *testing.T) {
	if _, err := ExtractText([]byte("this is not a pdf")); err == nil {
		t.Error("expected an error for non-PDF bytes")
	}
}
